package deposit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/apperr"
	"github.com/d1ma11/deposit-service/internal/domain/customer"
	domain "github.com/d1ma11/deposit-service/internal/domain/deposit"
	"github.com/d1ma11/deposit-service/internal/domain/request"
	"github.com/d1ma11/deposit-service/internal/domain/uow"
	"github.com/d1ma11/deposit-service/internal/usecase/rate"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoleMapper picks the funding, payout and refund accounts of a new deposit.
type RoleMapper func(c customer.Customer) domain.AccountRoles

// PrimaryAccount uses the customer's only account for every role.
func PrimaryAccount(c customer.Customer) domain.AccountRoles {
	return domain.SingleAccountRoles(c.Account.ID)
}

// Ledger applies the monetary effect of approved requests. Every method runs
// against repos bound to the caller's transaction.
type Ledger struct {
	accounts customer.AccountGateway
	rates    *rate.Calculator
	refill   rate.RefillPolicy
	roles    RoleMapper
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Ledger)

func WithRefillPolicy(p rate.RefillPolicy) Option { return func(l *Ledger) { l.refill = p } }
func WithRoleMapper(m RoleMapper) Option          { return func(l *Ledger) { l.roles = m } }
func WithClock(now func() time.Time) Option       { return func(l *Ledger) { l.now = now } }

func NewLedger(accounts customer.AccountGateway, rates *rate.Calculator, log *zap.Logger, opts ...Option) *Ledger {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Ledger{
		accounts: accounts,
		rates:    rates,
		refill:   rates.CompoundOnRefill,
		roles:    PrimaryAccount,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Roles returns the accounts a new deposit of c would use.
func (l *Ledger) Roles(c customer.Customer) domain.AccountRoles { return l.roles(c) }

// Linked returns the live deposit of req, or ErrDepositNotFound.
func (l *Ledger) Linked(ctx context.Context, r uow.Repos, req *request.Request) (*domain.Deposit, error) {
	return loadLinked(ctx, r, req)
}

// OpenDeposit creates the deposit for an approved request, links it to the
// request and moves the request amount out of the funding account.
func (l *Ledger) OpenDeposit(ctx context.Context, r uow.Repos, req *request.Request, c customer.Customer, terms domain.Terms) (*domain.Deposit, error) {
	terms.Amount = req.Amount
	refill, withdraw := terms.Type.Capabilities()
	roles := l.roles(c)

	start := l.now()
	end := start.AddDate(0, terms.Duration.Months(), 0)

	d := &domain.Deposit{
		CustomerID:       req.CustomerID,
		Type:             terms.Type,
		DurationMonths:   terms.Duration.Months(),
		Refill:           refill,
		Withdraw:         withdraw,
		Capitalization:   terms.Capitalized,
		Amount:           req.Amount,
		Rate:             l.rates.Calculate(terms),
		StartDate:        start,
		EndDate:          end,
		FundingAccountID: roles.Funding,
		RefundAccountID:  roles.Refund,
	}
	if !terms.Capitalized {
		pt := terms.PayoutType
		payAt := payoutDate(pt, start, end)
		payout := roles.Payout
		d.PayoutType = &pt
		d.PayoutDate = &payAt
		d.PayoutAccountID = &payout
	}

	if err := r.Deposits.Create(ctx, d); err != nil {
		return nil, fmt.Errorf("create deposit: %w", err)
	}
	req.DepositID = &d.ID
	if err := r.Requests.Save(ctx, req); err != nil {
		return nil, fmt.Errorf("link deposit to request: %w", err)
	}
	if err := l.accounts.Withdraw(ctx, roles.Funding, req.Amount); err != nil {
		l.log.Warn("funding withdraw failed", zap.String("request_id", req.RequestID), zap.Error(err))
		return nil, err
	}

	l.log.Info("deposit opened",
		zap.String("request_id", req.RequestID),
		zap.Uint64("deposit_id", d.ID),
		zap.String("amount", d.Amount.String()),
		zap.String("rate", d.Rate.String()),
	)
	return d, nil
}

// payoutDate panics on a payout type outside the enum; terms are validated upstream.
func payoutDate(pt domain.PayoutType, start, end time.Time) time.Time {
	switch pt {
	case domain.PayoutMonthly:
		return start.AddDate(0, 1, 0)
	case domain.PayoutEndOfTerm:
		return end
	}
	panic(fmt.Sprintf("deposit: unknown payout type %q", pt))
}

func loadLinked(ctx context.Context, r uow.Repos, req *request.Request) (*domain.Deposit, error) {
	if req == nil || req.DepositID == nil {
		return nil, apperr.ErrDepositNotFound
	}
	d, err := r.Deposits.GetByID(ctx, *req.DepositID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrDepositNotFound.Withf("deposit %d not found", *req.DepositID)
	}
	if err != nil {
		return nil, fmt.Errorf("load deposit: %w", err)
	}
	return d, nil
}

// RefillDeposit adds amount to the deposit linked to req and reprices it with
// the refill policy.
func (l *Ledger) RefillDeposit(ctx context.Context, r uow.Repos, req *request.Request, amount decimal.Decimal) (*domain.Deposit, error) {
	d, err := loadLinked(ctx, r, req)
	if err != nil {
		return nil, err
	}
	if !d.Refill {
		return nil, apperr.ErrRefillNotAllowed
	}

	total := d.Amount.Add(amount)
	d.Rate = l.refill(*d, total)
	d.Amount = total
	if err := r.Deposits.Save(ctx, d); err != nil {
		return nil, fmt.Errorf("save deposit: %w", err)
	}
	if err := l.accounts.Withdraw(ctx, d.FundingAccountID, amount); err != nil {
		l.log.Warn("refill withdraw failed", zap.Uint64("deposit_id", d.ID), zap.Error(err))
		return nil, err
	}

	l.log.Info("deposit refilled",
		zap.Uint64("deposit_id", d.ID),
		zap.String("added", amount.String()),
		zap.String("amount", d.Amount.String()),
		zap.String("rate", d.Rate.String()),
	)
	return d, nil
}

// CloseDeposit returns the full deposit amount to the refund account and
// then removes the deposit.
func (l *Ledger) CloseDeposit(ctx context.Context, r uow.Repos, req *request.Request) (*domain.Deposit, error) {
	d, err := loadLinked(ctx, r, req)
	if err != nil {
		return nil, err
	}
	if err := l.accounts.Refill(ctx, d.RefundAccountID, d.Amount); err != nil {
		l.log.Warn("refund failed", zap.Uint64("deposit_id", d.ID), zap.Error(err))
		return nil, err
	}
	if err := r.Deposits.Delete(ctx, d); err != nil {
		return nil, fmt.Errorf("delete deposit: %w", err)
	}

	l.log.Info("deposit closed", zap.Uint64("deposit_id", d.ID), zap.String("refunded", d.Amount.String()))
	return d, nil
}

func (l *Ledger) FindOpenedDeposits(ctx context.Context, deposits domain.Repository, customerID int64) ([]domain.Deposit, error) {
	out, err := deposits.FindByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("find deposits: %w", err)
	}
	return out, nil
}
