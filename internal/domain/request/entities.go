package request

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusConfirming Status = "CONFIRMING"
	StatusConfirmed  Status = "CONFIRMED"
	StatusApproved   Status = "APPROVED"
	StatusRejected   Status = "REJECTED"
	StatusClosed     Status = "CLOSED"
)

// MinOpenAmount is the inclusive floor for opening a deposit.
var MinOpenAmount = decimal.NewFromInt(10_000)

// transitions is the legal status graph. The empty status is "no history yet".
var transitions = map[Status][]Status{
	"":               {StatusConfirming},
	StatusConfirming: {StatusConfirmed},
	StatusConfirmed:  {StatusApproved, StatusRejected},
	StatusApproved:   {StatusClosed},
}

// CanTransition reports whether a request may move from -> to.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Request is a customer's intent to open a deposit. Amount and CustomerID are
// fixed at creation; DepositID is set once the request is approved.
type Request struct {
	ID          uint64          `gorm:"primaryKey;column:id" json:"-"`
	RequestID   string          `gorm:"column:request_id;size:32;uniqueIndex:ux_requests_request_id" json:"request_id"`
	CustomerID  int64           `gorm:"column:customer_id;not null;index:idx_requests_customer" json:"customer_id"`
	Amount      decimal.Decimal `gorm:"column:deposit_amount;type:decimal(18,2);not null" json:"amount"`
	RequestDate time.Time       `gorm:"column:request_date;not null" json:"request_date"`
	DepositID   *uint64         `gorm:"column:deposit_id" json:"deposit_id,omitempty"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"-"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"-"`
}

func (Request) TableName() string { return "requests" }

// StatusEntry is one append-only row of a request's status history. Version is
// 1-based and unique per request; the highest version is the current status.
type StatusEntry struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	RequestID uint64    `gorm:"column:request_id;not null;uniqueIndex:ux_request_statuses_version,priority:1" json:"-"`
	Version   int       `gorm:"column:version;not null;uniqueIndex:ux_request_statuses_version,priority:2" json:"version"`
	Status    Status    `gorm:"column:status;size:16;not null;index" json:"status"`
	ChangedAt time.Time `gorm:"column:change_datetime;not null" json:"changed_at"`
}

func (StatusEntry) TableName() string { return "request_statuses" }
