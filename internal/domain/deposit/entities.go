package deposit

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MoneyScale is the number of decimal places money is stored with.
const MoneyScale = 2

// MaxAmount is the largest amount a decimal(18,2) column holds.
var MaxAmount = decimal.New(1, 16).Sub(decimal.New(1, -MoneyScale))

// ValidAmount reports whether d is a positive amount storable without rounding.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Truncate(MoneyScale)) && d.LessThanOrEqual(MaxAmount)
}

// Type is the refill/withdraw capability variant chosen at opening.
type Type string

const (
	TypeRefillWithdraw Type = "DEPOSITS_AND_WITHDRAWALS"
	TypeRefillOnly     Type = "DEPOSITS_AND_NO_WITHDRAWALS"
	TypeFixed          Type = "NO_DEPOSITS_AND_WITHDRAWALS"
)

func (t Type) Valid() bool {
	switch t {
	case TypeRefillWithdraw, TypeRefillOnly, TypeFixed:
		return true
	}
	return false
}

// Capabilities returns the refill and withdraw flags implied by t.
func (t Type) Capabilities() (refill, withdraw bool) {
	switch t {
	case TypeRefillWithdraw:
		return true, true
	case TypeRefillOnly:
		return true, false
	}
	return false, false
}

type Duration string

const (
	Duration3Months Duration = "MONTH_3"
	Duration6Months Duration = "MONTH_6"
	DurationYear    Duration = "YEAR"
)

func (d Duration) Valid() bool {
	switch d {
	case Duration3Months, Duration6Months, DurationYear:
		return true
	}
	return false
}

func (d Duration) Months() int {
	switch d {
	case Duration3Months:
		return 3
	case Duration6Months:
		return 6
	case DurationYear:
		return 12
	}
	return 0
}

// DurationFromMonths is the inverse of Duration.Months.
func DurationFromMonths(m int) Duration {
	switch m {
	case 3:
		return Duration3Months
	case 6:
		return Duration6Months
	case 12:
		return DurationYear
	}
	return ""
}

// PayoutType is the interest payout schedule of a non-capitalized deposit.
type PayoutType string

const (
	PayoutMonthly   PayoutType = "MONTHLY"
	PayoutEndOfTerm PayoutType = "END_OF_TERM"
)

func (p PayoutType) Valid() bool {
	return p == PayoutMonthly || p == PayoutEndOfTerm
}

// Terms are the customer-chosen conditions of a deposit.
type Terms struct {
	Type        Type            `json:"deposit_type"`
	Duration    Duration        `json:"duration"`
	Amount      decimal.Decimal `json:"amount"`
	Capitalized bool            `json:"is_capitalized"`
	PayoutType  PayoutType      `json:"percent_payment_type,omitempty"`
}

// AccountRoles maps each money-movement role of a deposit to an account.
type AccountRoles struct {
	Funding int64
	Payout  int64
	Refund  int64
}

// SingleAccountRoles uses one account for funding, payout and refund.
func SingleAccountRoles(accountID int64) AccountRoles {
	return AccountRoles{Funding: accountID, Payout: accountID, Refund: accountID}
}

type Deposit struct {
	ID               uint64          `gorm:"primaryKey;column:id" json:"id"`
	CustomerID       int64           `gorm:"column:customer_id;not null;index:idx_deposits_customer" json:"customer_id"`
	Type             Type            `gorm:"column:deposit_type;size:32;not null" json:"deposit_type"`
	DurationMonths   int             `gorm:"column:duration_months;not null" json:"duration_months"`
	Refill           bool            `gorm:"column:deposit_refill" json:"deposit_refill"`
	Withdraw         bool            `gorm:"column:deposit_withdraw" json:"deposit_withdraw"`
	Capitalization   bool            `gorm:"column:capitalization" json:"capitalization"`
	Amount           decimal.Decimal `gorm:"column:deposit_amount;type:decimal(18,2);not null" json:"amount"`
	Rate             decimal.Decimal `gorm:"column:deposit_rate;type:decimal(6,2);not null" json:"rate"`
	StartDate        time.Time       `gorm:"column:start_date;not null" json:"start_date"`
	EndDate          time.Time       `gorm:"column:end_date;not null" json:"end_date"`
	PayoutType       *PayoutType     `gorm:"column:percent_payment_type;size:16" json:"percent_payment_type,omitempty"`
	PayoutDate       *time.Time      `gorm:"column:percent_payment_date" json:"percent_payment_date,omitempty"`
	FundingAccountID int64           `gorm:"column:deposit_account_id;not null" json:"deposit_account_id"`
	PayoutAccountID  *int64          `gorm:"column:percent_payment_account_id" json:"percent_payment_account_id,omitempty"`
	RefundAccountID  int64           `gorm:"column:deposit_refund_account_id;not null" json:"deposit_refund_account_id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"-"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (Deposit) TableName() string { return "deposits" }
