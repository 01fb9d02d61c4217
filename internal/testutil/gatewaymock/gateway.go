package gatewaymock

import (
	"context"
	"errors"
	"sync"

	"github.com/d1ma11/deposit-service/internal/domain/apperr"
	"github.com/d1ma11/deposit-service/internal/domain/customer"

	"github.com/shopspring/decimal"
)

var (
	_ customer.AccountGateway = (*Accounts)(nil)
	_ customer.Gateway        = (*Customers)(nil)
)

var errUnimplemented = errors.New("gatewaymock: method not implemented")

// Call is one recorded account operation.
type Call struct {
	Op        string
	AccountID int64
	Amount    decimal.Decimal
}

// Accounts is a function-backed AccountGateway that records every call.
// Unset functions return errUnimplemented.
type Accounts struct {
	CheckEnoughMoneyFn func(ctx context.Context, accountID int64, amount decimal.Decimal) (bool, error)
	WithdrawFn         func(ctx context.Context, accountID int64, amount decimal.Decimal) error
	RefillFn           func(ctx context.Context, accountID int64, amount decimal.Decimal) error
	GetBalanceFn       func(ctx context.Context, accountID int64) (decimal.Decimal, error)

	mu    sync.Mutex
	calls []Call
}

func (m *Accounts) record(op string, accountID int64, amount decimal.Decimal) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Op: op, AccountID: accountID, Amount: amount})
	m.mu.Unlock()
}

// Calls returns the recorded calls of op, or all calls when op is empty.
func (m *Accounts) Calls(op string) []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Call
	for _, c := range m.calls {
		if op == "" || c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

func (m *Accounts) CheckEnoughMoney(ctx context.Context, accountID int64, amount decimal.Decimal) (bool, error) {
	m.record("check", accountID, amount)
	if m.CheckEnoughMoneyFn != nil {
		return m.CheckEnoughMoneyFn(ctx, accountID, amount)
	}
	return false, errUnimplemented
}

func (m *Accounts) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	m.record("withdraw", accountID, amount)
	if m.WithdrawFn != nil {
		return m.WithdrawFn(ctx, accountID, amount)
	}
	return errUnimplemented
}

func (m *Accounts) Refill(ctx context.Context, accountID int64, amount decimal.Decimal) error {
	m.record("refill", accountID, amount)
	if m.RefillFn != nil {
		return m.RefillFn(ctx, accountID, amount)
	}
	return errUnimplemented
}

func (m *Accounts) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	m.record("balance", accountID, decimal.Zero)
	if m.GetBalanceFn != nil {
		return m.GetBalanceFn(ctx, accountID)
	}
	return decimal.Zero, errUnimplemented
}

// Customers is a function-backed customer.Gateway.
type Customers struct {
	FindCustomerFn func(ctx context.Context, customerID int64) (*customer.Customer, error)
}

func (m *Customers) FindCustomer(ctx context.Context, customerID int64) (*customer.Customer, error) {
	if m.FindCustomerFn != nil {
		return m.FindCustomerFn(ctx, customerID)
	}
	return nil, errUnimplemented
}

// Fixed returns a Customers mock that knows only c.
func Fixed(c customer.Customer) *Customers {
	return &Customers{FindCustomerFn: func(_ context.Context, id int64) (*customer.Customer, error) {
		if id != c.ID {
			return nil, apperr.ErrCustomerNotFound.Withf("customer %d not found", id)
		}
		cc := c
		return &cc, nil
	}}
}
