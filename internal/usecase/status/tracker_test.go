package status

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/apperr"
	"github.com/d1ma11/deposit-service/internal/domain/request"
	"github.com/d1ma11/deposit-service/internal/testutil/memrepo"
	"github.com/d1ma11/deposit-service/internal/testutil/requestmock"

	"gorm.io/gorm"
)

func TestTracker_AdvanceFollowsTable(t *testing.T) {
	ctx := context.Background()
	store := memrepo.New()
	req := &request.Request{RequestID: "r1", CustomerID: 1}
	_ = store.Requests.Create(ctx, req)

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	tr := NewTracker(nil).WithClock(func() time.Time { return at })

	for i, next := range []request.Status{request.StatusConfirming, request.StatusConfirmed, request.StatusApproved, request.StatusClosed} {
		e, err := tr.Advance(ctx, store.Statuses, req, next)
		if err != nil {
			t.Fatalf("Advance(%s): %v", next, err)
		}
		if e.Version != i+1 || e.Status != next || !e.ChangedAt.Equal(at) {
			t.Fatalf("entry = %+v", e)
		}
	}

	cur, v, err := tr.Current(ctx, store.Statuses, req.ID)
	if err != nil || cur != request.StatusClosed || v != 4 {
		t.Fatalf("Current = %s, %d, %v", cur, v, err)
	}
}

func TestTracker_RejectsIllegalTransitions(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		trail []request.Status
		next  request.Status
	}{
		{"no history must start at CONFIRMING", nil, request.StatusConfirmed},
		{"skip CONFIRMED", []request.Status{request.StatusConfirming}, request.StatusApproved},
		{"regress from APPROVED", []request.Status{request.StatusConfirming, request.StatusConfirmed, request.StatusApproved}, request.StatusConfirming},
		{"APPROVED back to CONFIRMED", []request.Status{request.StatusConfirming, request.StatusConfirmed, request.StatusApproved}, request.StatusConfirmed},
		{"REJECTED is terminal", []request.Status{request.StatusConfirming, request.StatusConfirmed, request.StatusRejected}, request.StatusApproved},
		{"double CONFIRMING", []request.Status{request.StatusConfirming}, request.StatusConfirming},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := memrepo.New()
			req := &request.Request{RequestID: "r", CustomerID: 1}
			_ = store.Requests.Create(ctx, req)
			tr := NewTracker(nil)
			for _, s := range tt.trail {
				if _, err := tr.Advance(ctx, store.Statuses, req, s); err != nil {
					t.Fatalf("seed %s: %v", s, err)
				}
			}
			before := len(store.Statuses.Trail(req.ID))

			_, err := tr.Advance(ctx, store.Statuses, req, tt.next)
			if !errors.Is(err, apperr.ErrIllegalTransition) {
				t.Fatalf("want ErrIllegalTransition, got %v", err)
			}
			if after := len(store.Statuses.Trail(req.ID)); after != before {
				t.Fatalf("history changed on illegal move: %d -> %d", before, after)
			}
		})
	}
}

func TestTracker_VersionConflict(t *testing.T) {
	repo := &requestmock.StatusRepo{
		LatestFn: func(context.Context, uint64) (*request.StatusEntry, error) {
			return &request.StatusEntry{Version: 1, Status: request.StatusConfirming}, nil
		},
		AppendFn: func(_ context.Context, e *request.StatusEntry) error {
			if e.Version != 2 {
				t.Fatalf("version = %d, want 2", e.Version)
			}
			return gorm.ErrDuplicatedKey
		},
	}
	_, err := NewTracker(nil).Advance(context.Background(), repo, &request.Request{ID: 1, RequestID: "r"}, request.StatusConfirmed)
	if !errors.Is(err, apperr.ErrConcurrentModification) {
		t.Fatalf("want ErrConcurrentModification, got %v", err)
	}
}

func TestTracker_StoreErrorsPropagate(t *testing.T) {
	boom := errors.New("db down")
	repo := &requestmock.StatusRepo{
		LatestFn: func(context.Context, uint64) (*request.StatusEntry, error) { return nil, boom },
	}
	_, err := NewTracker(nil).Advance(context.Background(), repo, &request.Request{ID: 1}, request.StatusConfirming)
	if !errors.Is(err, boom) {
		t.Fatalf("want %v, got %v", boom, err)
	}
}
