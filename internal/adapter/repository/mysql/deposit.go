package mysql

import (
	"context"

	depositDomain "github.com/d1ma11/deposit-service/internal/domain/deposit"

	"gorm.io/gorm"
)

// DepositRepository soft-deletes on Delete; reads skip closed deposits.
type DepositRepository struct{ db *gorm.DB }

func NewDepositRepository(db *gorm.DB) *DepositRepository { return &DepositRepository{db: db} }

func (r *DepositRepository) Create(ctx context.Context, d *depositDomain.Deposit) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DepositRepository) GetByID(ctx context.Context, id uint64) (*depositDomain.Deposit, error) {
	var out depositDomain.Deposit
	res := r.db.WithContext(ctx).First(&out, id)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *DepositRepository) Save(ctx context.Context, d *depositDomain.Deposit) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *DepositRepository) Delete(ctx context.Context, d *depositDomain.Deposit) error {
	res := r.db.WithContext(ctx).Delete(d)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *DepositRepository) FindByCustomer(ctx context.Context, customerID int64) ([]depositDomain.Deposit, error) {
	var out []depositDomain.Deposit
	res := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("start_date DESC, id DESC").
		Find(&out)
	return out, res.Error
}
