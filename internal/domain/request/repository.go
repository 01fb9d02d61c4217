package request

import "context"

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByRequestID(ctx context.Context, requestID string) (*Request, error)
	// Locks the row for the rest of the surrounding transaction.
	GetByRequestIDForUpdate(ctx context.Context, requestID string) (*Request, error)
	Save(ctx context.Context, r *Request) error
	// Requests of a customer whose current status is REJECTED.
	FindRejectedByCustomer(ctx context.Context, customerID int64) ([]Request, error)
}

type StatusRepository interface {
	// Append inserts e; a taken (request_id, version) pair yields gorm.ErrDuplicatedKey.
	Append(ctx context.Context, e *StatusEntry) error
	// Latest returns gorm.ErrRecordNotFound when the request has no history.
	Latest(ctx context.Context, requestPK uint64) (*StatusEntry, error)
	History(ctx context.Context, requestPK uint64) ([]StatusEntry, error)
}
