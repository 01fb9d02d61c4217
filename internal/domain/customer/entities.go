package customer

import (
	"context"

	"github.com/shopspring/decimal"
)

// Account is the single bank account linked to a customer.
type Account struct {
	ID     int64           `json:"id"`
	Number string          `json:"bank_account_number"`
	Amount decimal.Decimal `json:"amount"`
}

type Customer struct {
	ID      int64   `json:"id"`
	Phone   string  `json:"phone"`
	Account Account `json:"bank_account"`
}

// AccountGateway moves money on the external account ledger.
type AccountGateway interface {
	CheckEnoughMoney(ctx context.Context, accountID int64, amount decimal.Decimal) (bool, error)
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) error
	Refill(ctx context.Context, accountID int64, amount decimal.Decimal) error
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
}

type Gateway interface {
	FindCustomer(ctx context.Context, customerID int64) (*Customer, error)
}
