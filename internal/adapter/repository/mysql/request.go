package mysql

import (
	"context"

	requestDomain "github.com/d1ma11/deposit-service/internal/domain/request"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequestRepository struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) *RequestRepository { return &RequestRepository{db: db} }

func (r *RequestRepository) Create(ctx context.Context, req *requestDomain.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) Save(ctx context.Context, req *requestDomain.Request) error {
	return r.db.WithContext(ctx).Save(req).Error
}

func (r *RequestRepository) GetByRequestID(ctx context.Context, requestID string) (*requestDomain.Request, error) {
	var out requestDomain.Request
	res := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

// GetByRequestIDForUpdate issues SELECT ... FOR UPDATE; sqlite drops the clause.
func (r *RequestRepository) GetByRequestIDForUpdate(ctx context.Context, requestID string) (*requestDomain.Request, error) {
	var out requestDomain.Request
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", requestID).
		First(&out)
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

func (r *RequestRepository) FindRejectedByCustomer(ctx context.Context, customerID int64) ([]requestDomain.Request, error) {
	var out []requestDomain.Request
	res := r.db.WithContext(ctx).
		Model(&requestDomain.Request{}).
		Select("requests.*").
		Joins("JOIN request_statuses s ON s.request_id = requests.id").
		Where("requests.customer_id = ? AND s.status = ?", customerID, requestDomain.StatusRejected).
		Where("s.version = (SELECT MAX(s2.version) FROM request_statuses s2 WHERE s2.request_id = requests.id)").
		Order("requests.id").
		Find(&out)
	return out, res.Error
}
