package depositmock

import (
	"context"

	domain "github.com/d1ma11/deposit-service/internal/domain/deposit"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn         func(ctx context.Context, d *domain.Deposit) error
	GetByIDFn        func(ctx context.Context, id uint64) (*domain.Deposit, error)
	SaveFn           func(ctx context.Context, d *domain.Deposit) error
	DeleteFn         func(ctx context.Context, d *domain.Deposit) error
	FindByCustomerFn func(ctx context.Context, customerID int64) ([]domain.Deposit, error)
}

func (m *Repo) Create(ctx context.Context, d *domain.Deposit) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Deposit, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) Save(ctx context.Context, d *domain.Deposit) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, d)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, d *domain.Deposit) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, d)
	}
	return nil
}

func (m *Repo) FindByCustomer(ctx context.Context, customerID int64) ([]domain.Deposit, error) {
	if m.FindByCustomerFn != nil {
		return m.FindByCustomerFn(ctx, customerID)
	}
	return nil, context.Canceled
}
