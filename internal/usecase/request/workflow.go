package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/apperr"
	"github.com/d1ma11/deposit-service/internal/domain/confirmation"
	"github.com/d1ma11/deposit-service/internal/domain/customer"
	"github.com/d1ma11/deposit-service/internal/domain/deposit"
	domainRequest "github.com/d1ma11/deposit-service/internal/domain/request"
	"github.com/d1ma11/deposit-service/internal/domain/uow"
	codes "github.com/d1ma11/deposit-service/internal/usecase/confirmation"
	ledger "github.com/d1ma11/deposit-service/internal/usecase/deposit"
	"github.com/d1ma11/deposit-service/internal/usecase/rate"
	"github.com/d1ma11/deposit-service/internal/usecase/status"
	"github.com/d1ma11/deposit-service/pkg/id"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Deps struct {
	UoW       uow.UnitOfWork
	Requests  domainRequest.Repository
	Statuses  domainRequest.StatusRepository
	Deposits  deposit.Repository
	Customers customer.Gateway
	Accounts  customer.AccountGateway
	Issuer    *codes.Issuer
	Tracker   *status.Tracker
	Ledger    *ledger.Ledger
	Rates     *rate.Calculator
	Log       *zap.Logger
}

// Workflow drives requests from creation through code confirmation to their
// monetary effect.
type Workflow struct {
	Deps
	now   func() time.Time
	newID func() string
}

func NewWorkflow(d Deps) *Workflow {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &Workflow{
		Deps:  d,
		now:   func() time.Time { return time.Now().UTC() },
		newID: id.NewRequestID,
	}
}

// WithClock pins the workflow clock.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

func validateTerms(t deposit.Terms) error {
	switch {
	case !t.Type.Valid():
		return apperr.ErrValidation.Withf("unknown deposit type %q", t.Type)
	case !t.Duration.Valid():
		return apperr.ErrValidation.Withf("unknown deposit duration %q", t.Duration)
	case !t.Capitalized && !t.PayoutType.Valid():
		return apperr.ErrValidation.Withf("payout type is required for a non-capitalized deposit, got %q", t.PayoutType)
	}
	return nil
}

func invalidAmount(d decimal.Decimal) error {
	return apperr.ErrValidation.Withf("amount %s must be positive with at most %d decimal places and not above %s",
		d, deposit.MoneyScale, deposit.MaxAmount.StringFixed(deposit.MoneyScale))
}

// CheckTerms prices terms without side effects.
func (w *Workflow) CheckTerms(t deposit.Terms) (decimal.Decimal, error) {
	if err := validateTerms(t); err != nil {
		return decimal.Zero, err
	}
	if !deposit.ValidAmount(t.Amount) {
		return decimal.Zero, invalidAmount(t.Amount)
	}
	return w.Rates.Calculate(t), nil
}

// OpenRequest records a new open request in CONFIRMING and issues its code.
func (w *Workflow) OpenRequest(ctx context.Context, in OpenInput) (*OpenResult, error) {
	if err := validateTerms(in.Terms); err != nil {
		return nil, err
	}
	if !deposit.ValidAmount(in.Terms.Amount) {
		return nil, invalidAmount(in.Terms.Amount)
	}
	if in.Terms.Amount.LessThan(domainRequest.MinOpenAmount) {
		return nil, apperr.ErrMinDepositAmount
	}
	if _, err := w.Customers.FindCustomer(ctx, in.CustomerID); err != nil {
		return nil, err
	}

	req := &domainRequest.Request{
		RequestID:   w.newID(),
		CustomerID:  in.CustomerID,
		Amount:      in.Terms.Amount,
		RequestDate: w.now(),
	}
	var entry *domainRequest.StatusEntry
	err := w.UoW.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Requests.Create(ctx, req); err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		var err error
		if entry, err = w.Tracker.Advance(ctx, r.Statuses, req, domainRequest.StatusConfirming); err != nil {
			return err
		}
		_, err = w.Issuer.Issue(ctx, confirmation.KindOpen, req.RequestID)
		return err
	})
	if err != nil {
		return nil, err
	}

	w.Log.Info("open request created",
		zap.String("request_id", req.RequestID),
		zap.Int64("customer_id", req.CustomerID),
		zap.String("amount", req.Amount.String()),
	)
	return &OpenResult{RequestID: req.RequestID, RequestDate: req.RequestDate, Status: entry.Status}, nil
}

// ConfirmOpenRequest checks the open code and settles the request as APPROVED
// with a new deposit, or REJECTED when the account cannot fund it.
func (w *Workflow) ConfirmOpenRequest(ctx context.Context, in ConfirmOpenInput) (Response, error) {
	if err := validateTerms(in.Terms); err != nil {
		return nil, err
	}

	var resp Response
	err := w.UoW.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domainRequest.Request) error {
		in.Terms.Amount = req.Amount

		if err := w.Issuer.Verify(ctx, confirmation.KindOpen, req.RequestID, in.Code); err != nil {
			return err
		}
		if _, err := w.Tracker.Advance(ctx, r.Statuses, req, domainRequest.StatusConfirmed); err != nil {
			return err
		}

		c, err := w.Customers.FindCustomer(ctx, req.CustomerID)
		if err != nil {
			return err
		}
		funding := w.Ledger.Roles(*c).Funding
		enough, err := w.Accounts.CheckEnoughMoney(ctx, funding, req.Amount)
		if err != nil {
			return err
		}

		if !enough {
			if _, err := w.Tracker.Advance(ctx, r.Statuses, req, domainRequest.StatusRejected); err != nil {
				return err
			}
			balance, err := w.Accounts.GetBalance(ctx, funding)
			if err != nil {
				return err
			}
			w.Log.Info("open request rejected",
				zap.String("request_id", req.RequestID),
				zap.String("amount", req.Amount.String()),
				zap.String("balance", balance.String()),
			)
			resp = RejectedOpen{Amount: balance, RequestDate: req.RequestDate, Reason: RejectionReason}
			return nil
		}

		if _, err := w.Tracker.Advance(ctx, r.Statuses, req, domainRequest.StatusApproved); err != nil {
			return err
		}
		d, err := w.Ledger.OpenDeposit(ctx, r, req, *c, in.Terms)
		if err != nil {
			return err
		}
		resp = ApprovedOpen{
			RequestID:   req.RequestID,
			DepositType: d.Type,
			Amount:      d.Amount,
			RequestDate: req.RequestDate,
			Rate:        d.Rate,
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrRequestNotFound.Withf("request %s not found", in.RequestID)
	}
	if err != nil {
		return nil, err
	}

	w.revoke(ctx, confirmation.KindOpen, in.RequestID)
	return resp, nil
}

// RefillRequest issues a refill code for the deposit opened by requestID.
func (w *Workflow) RefillRequest(ctx context.Context, requestID string) error {
	return w.issueForDeposit(ctx, confirmation.KindRefill, requestID)
}

// CloseRequest issues a close code for the deposit opened by requestID.
func (w *Workflow) CloseRequest(ctx context.Context, requestID string) error {
	return w.issueForDeposit(ctx, confirmation.KindClose, requestID)
}

func (w *Workflow) issueForDeposit(ctx context.Context, kind confirmation.Kind, requestID string) error {
	req, err := w.Requests.GetByRequestID(ctx, requestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrDepositNotFound.Withf("no deposit for request %s", requestID)
	}
	if err != nil {
		return fmt.Errorf("load request: %w", err)
	}
	if req.DepositID == nil {
		return apperr.ErrDepositNotFound.Withf("no deposit for request %s", requestID)
	}
	// closed deposits are soft-deleted and no longer found
	if _, err := w.Deposits.GetByID(ctx, *req.DepositID); errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrDepositNotFound.Withf("deposit of request %s is closed", requestID)
	} else if err != nil {
		return fmt.Errorf("load deposit: %w", err)
	}
	_, err = w.Issuer.Issue(ctx, kind, requestID)
	return err
}

// ConfirmRefillDeposit checks the refill code and adds in.Amount to the
// deposit when the funding account covers it. A shortfall is a RejectedRefill
// and leaves the request history untouched.
func (w *Workflow) ConfirmRefillDeposit(ctx context.Context, in RefillInput) (Response, error) {
	if !deposit.ValidAmount(in.Amount) {
		return nil, invalidAmount(in.Amount)
	}
	if err := w.Issuer.Verify(ctx, confirmation.KindRefill, in.RequestID, in.Code); err != nil {
		return nil, err
	}

	var resp Response
	err := w.UoW.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domainRequest.Request) error {
		d, err := w.Ledger.Linked(ctx, r, req)
		if err != nil {
			return err
		}
		enough, err := w.Accounts.CheckEnoughMoney(ctx, d.FundingAccountID, in.Amount)
		if err != nil {
			return err
		}
		if !enough {
			w.Log.Info("refill rejected", zap.String("request_id", req.RequestID), zap.String("amount", in.Amount.String()))
			resp = RejectedRefill{Amount: in.Amount, At: w.now(), Reason: RejectionReason}
			return nil
		}
		d, err = w.Ledger.RefillDeposit(ctx, r, req, in.Amount)
		if err != nil {
			return err
		}
		resp = ApprovedRefill{Amount: d.Amount, At: w.now()}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrDepositNotFound.Withf("no deposit for request %s", in.RequestID)
	}
	if err != nil {
		return nil, err
	}

	w.revoke(ctx, confirmation.KindRefill, in.RequestID)
	return resp, nil
}

// ConfirmCloseDeposit checks the close code, refunds the whole deposit and
// marks the request CLOSED.
func (w *Workflow) ConfirmCloseDeposit(ctx context.Context, in CloseInput) error {
	if err := w.Issuer.Verify(ctx, confirmation.KindClose, in.RequestID, in.Code); err != nil {
		return err
	}

	err := w.UoW.WithinRequestTx(ctx, in.RequestID, func(r uow.Repos, req *domainRequest.Request) error {
		if _, err := w.Ledger.Linked(ctx, r, req); err != nil {
			return err
		}
		if _, err := w.Tracker.Advance(ctx, r.Statuses, req, domainRequest.StatusClosed); err != nil {
			return err
		}
		_, err := w.Ledger.CloseDeposit(ctx, r, req)
		return err
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrDepositNotFound.Withf("no deposit for request %s", in.RequestID)
	}
	if err != nil {
		return err
	}

	w.revoke(ctx, confirmation.KindClose, in.RequestID)
	return nil
}

// revoke runs after commit; a failure only leaves the code to its TTL.
func (w *Workflow) revoke(ctx context.Context, kind confirmation.Kind, requestID string) {
	if err := w.Issuer.Revoke(ctx, kind, requestID); err != nil {
		w.Log.Warn("revoke confirmation code", zap.String("kind", string(kind)), zap.String("request_id", requestID), zap.Error(err))
	}
}

func (w *Workflow) FindRejectedRequests(ctx context.Context, customerID int64) ([]domainRequest.Request, error) {
	out, err := w.Requests.FindRejectedByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("find rejected requests: %w", err)
	}
	return out, nil
}

// FindOpenedDeposits lists live deposits of a customer known to the customer service.
func (w *Workflow) FindOpenedDeposits(ctx context.Context, customerID int64) ([]deposit.Deposit, error) {
	if _, err := w.Customers.FindCustomer(ctx, customerID); err != nil {
		return nil, err
	}
	return w.Ledger.FindOpenedDeposits(ctx, w.Deposits, customerID)
}

// Summary loads opened deposits and rejected requests concurrently.
func (w *Workflow) Summary(ctx context.Context, customerID int64) (*Summary, error) {
	var s Summary
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		s.Deposits, err = w.FindOpenedDeposits(gctx, customerID)
		return err
	})
	g.Go(func() error {
		var err error
		s.Rejected, err = w.FindRejectedRequests(gctx, customerID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if s.Deposits == nil {
		s.Deposits = []deposit.Deposit{}
	}
	if s.Rejected == nil {
		s.Rejected = []domainRequest.Request{}
	}
	return &s, nil
}

// History returns a request and its status trail.
func (w *Workflow) History(ctx context.Context, requestID string) (*History, error) {
	req, err := w.Requests.GetByRequestID(ctx, requestID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrRequestNotFound.Withf("request %s not found", requestID)
	}
	if err != nil {
		return nil, fmt.Errorf("load request: %w", err)
	}
	entries, err := w.Statuses.History(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	h := &History{Request: *req, Entries: entries}
	if n := len(entries); n > 0 {
		h.Current = entries[n-1].Status
	}
	return h, nil
}
