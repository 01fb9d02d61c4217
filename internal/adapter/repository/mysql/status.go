package mysql

import (
	"context"

	requestDomain "github.com/d1ma11/deposit-service/internal/domain/request"

	"gorm.io/gorm"
)

// StatusRepository is append-only. A duplicate (request_id, version) surfaces
// as gorm.ErrDuplicatedKey when the connection has TranslateError enabled.
type StatusRepository struct{ db *gorm.DB }

func NewStatusRepository(db *gorm.DB) *StatusRepository { return &StatusRepository{db: db} }

func (r *StatusRepository) Append(ctx context.Context, e *requestDomain.StatusEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *StatusRepository) Latest(ctx context.Context, requestPK uint64) (*requestDomain.StatusEntry, error) {
	var out requestDomain.StatusEntry
	res := r.db.WithContext(ctx).
		Where("request_id = ?", requestPK).
		Order("version DESC").
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *StatusRepository) History(ctx context.Context, requestPK uint64) ([]requestDomain.StatusEntry, error) {
	var out []requestDomain.StatusEntry
	res := r.db.WithContext(ctx).
		Where("request_id = ?", requestPK).
		Order("version ASC").
		Find(&out)
	return out, res.Error
}
