package deposit

import "context"

type Repository interface {
	Create(ctx context.Context, d *Deposit) error
	// GetByID ignores closed (soft-deleted) deposits.
	GetByID(ctx context.Context, id uint64) (*Deposit, error)
	Save(ctx context.Context, d *Deposit) error
	Delete(ctx context.Context, d *Deposit) error
	FindByCustomer(ctx context.Context, customerID int64) ([]Deposit, error)
}
