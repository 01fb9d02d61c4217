package uow

import (
	"context"

	"github.com/d1ma11/deposit-service/internal/domain/deposit"
	"github.com/d1ma11/deposit-service/internal/domain/request"
)

// Repos are bound to the same transaction.
type Repos struct {
	Requests request.Repository
	Statuses request.StatusRepository
	Deposits deposit.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// lock the request row first, then pass it in
	WithinRequestTx(ctx context.Context, requestID string, fn func(r Repos, req *request.Request) error) error
}
