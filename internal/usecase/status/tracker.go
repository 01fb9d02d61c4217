package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/apperr"
	"github.com/d1ma11/deposit-service/internal/domain/request"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Tracker appends status history entries, enforcing the transition table and
// a per-request version sequence.
type Tracker struct {
	log *zap.Logger
	now func() time.Time
}

func NewTracker(log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{log: log, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock is used by tests to pin entry timestamps.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// Current returns the latest status and its version; a request without
// history reports ("", 0).
func (t *Tracker) Current(ctx context.Context, repo request.StatusRepository, requestPK uint64) (request.Status, int, error) {
	e, err := repo.Latest(ctx, requestPK)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", 0, nil
	}
	if err != nil {
		return "", 0, fmt.Errorf("load status: %w", err)
	}
	return e.Status, e.Version, nil
}

// Advance records req moving to next.
func (t *Tracker) Advance(ctx context.Context, repo request.StatusRepository, req *request.Request, next request.Status) (*request.StatusEntry, error) {
	cur, version, err := t.Current(ctx, repo, req.ID)
	if err != nil {
		return nil, err
	}
	if !request.CanTransition(cur, next) {
		return nil, apperr.ErrIllegalTransition.Withf("request %s cannot move from %q to %q", req.RequestID, cur, next)
	}

	e := &request.StatusEntry{
		RequestID: req.ID,
		Version:   version + 1,
		Status:    next,
		ChangedAt: t.now(),
	}
	if err := repo.Append(ctx, e); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.ErrConcurrentModification.Withf("request %s status changed while moving to %s", req.RequestID, next)
		}
		return nil, fmt.Errorf("append status: %w", err)
	}

	t.log.Info("request status changed",
		zap.String("request_id", req.RequestID),
		zap.String("from", string(cur)),
		zap.String("to", string(next)),
		zap.Int("version", e.Version),
	)
	return e, nil
}
