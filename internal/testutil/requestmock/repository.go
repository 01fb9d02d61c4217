package requestmock

import (
	"context"

	domain "github.com/d1ma11/deposit-service/internal/domain/request"
)

var (
	_ domain.Repository       = (*Repo)(nil)
	_ domain.StatusRepository = (*StatusRepo)(nil)
)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error, reads to context.Canceled.
type Repo struct {
	CreateFn                  func(ctx context.Context, r *domain.Request) error
	GetByRequestIDFn          func(ctx context.Context, requestID string) (*domain.Request, error)
	GetByRequestIDForUpdateFn func(ctx context.Context, requestID string) (*domain.Request, error)
	SaveFn                    func(ctx context.Context, r *domain.Request) error
	FindRejectedByCustomerFn  func(ctx context.Context, customerID int64) ([]domain.Request, error)
}

func (m *Repo) Create(ctx context.Context, r *domain.Request) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Repo) GetByRequestID(ctx context.Context, requestID string) (*domain.Request, error) {
	if m.GetByRequestIDFn != nil {
		return m.GetByRequestIDFn(ctx, requestID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*domain.Request, error) {
	if m.GetByRequestIDForUpdateFn != nil {
		return m.GetByRequestIDForUpdateFn(ctx, requestID)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, r *domain.Request) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, r)
	}
	return nil
}

func (m *Repo) FindRejectedByCustomer(ctx context.Context, customerID int64) ([]domain.Request, error) {
	if m.FindRejectedByCustomerFn != nil {
		return m.FindRejectedByCustomerFn(ctx, customerID)
	}
	return nil, context.Canceled
}

// StatusRepo is a function-backed mock that satisfies domain.StatusRepository.
type StatusRepo struct {
	AppendFn  func(ctx context.Context, e *domain.StatusEntry) error
	LatestFn  func(ctx context.Context, requestPK uint64) (*domain.StatusEntry, error)
	HistoryFn func(ctx context.Context, requestPK uint64) ([]domain.StatusEntry, error)
}

func (m *StatusRepo) Append(ctx context.Context, e *domain.StatusEntry) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, e)
	}
	return nil
}

func (m *StatusRepo) Latest(ctx context.Context, requestPK uint64) (*domain.StatusEntry, error) {
	if m.LatestFn != nil {
		return m.LatestFn(ctx, requestPK)
	}
	return nil, context.Canceled
}

func (m *StatusRepo) History(ctx context.Context, requestPK uint64) ([]domain.StatusEntry, error) {
	if m.HistoryFn != nil {
		return m.HistoryFn(ctx, requestPK)
	}
	return nil, context.Canceled
}
