package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	requestDomain "github.com/d1ma11/deposit-service/internal/domain/request"
	"github.com/d1ma11/deposit-service/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func makeRequest(customerID int64, amount string) *requestDomain.Request {
	return &requestDomain.Request{
		RequestID:   id.NewRequestID(),
		CustomerID:  customerID,
		Amount:      decimal.RequireFromString(amount),
		RequestDate: time.Now().UTC().Truncate(time.Second),
	}
}

func TestRequestRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	r := makeRequest(5, "150000.50")
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByRequestID(ctx, r.RequestID)
	if err != nil {
		t.Fatalf("GetByRequestID: %v", err)
	}
	if got.CustomerID != 5 || !got.Amount.Equal(decimal.RequireFromString("150000.50")) || got.DepositID != nil {
		t.Fatalf("unexpected request: %+v", got)
	}

	locked, err := repo.GetByRequestIDForUpdate(ctx, r.RequestID)
	if err != nil || locked.ID != r.ID {
		t.Fatalf("GetByRequestIDForUpdate = %+v, %v", locked, err)
	}

	if _, err := repo.GetByRequestID(ctx, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("missing: want ErrRecordNotFound, got %v", err)
	}
}

func TestRequestRepository_DuplicateRequestID(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	r := makeRequest(1, "10000")
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := makeRequest(2, "20000")
	dup.RequestID = r.RequestID
	if err := repo.Create(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("want ErrDuplicatedKey, got %v", err)
	}
}

func TestRequestRepository_SaveLinksDeposit(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	r := makeRequest(1, "10000")
	_ = repo.Create(ctx, r)
	depID := uint64(77)
	r.DepositID = &depID
	if err := repo.Save(ctx, r); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, _ := repo.GetByRequestID(ctx, r.RequestID)
	if got.DepositID == nil || *got.DepositID != 77 {
		t.Fatalf("deposit link not persisted: %+v", got.DepositID)
	}
}

func TestRequestRepository_FindRejectedByCustomer(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	statuses := NewStatusRepository(db)
	ctx := context.Background()

	appendTrail := func(r *requestDomain.Request, trail ...requestDomain.Status) {
		for i, s := range trail {
			e := &requestDomain.StatusEntry{RequestID: r.ID, Version: i + 1, Status: s, ChangedAt: time.Now().UTC()}
			if err := statuses.Append(ctx, e); err != nil {
				t.Fatalf("append: %v", err)
			}
		}
	}

	rejected := makeRequest(9, "500000")
	approved := makeRequest(9, "20000")
	pending := makeRequest(9, "30000")
	otherCustomer := makeRequest(10, "40000")
	for _, r := range []*requestDomain.Request{rejected, approved, pending, otherCustomer} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	appendTrail(rejected, requestDomain.StatusConfirming, requestDomain.StatusConfirmed, requestDomain.StatusRejected)
	appendTrail(approved, requestDomain.StatusConfirming, requestDomain.StatusConfirmed, requestDomain.StatusApproved)
	appendTrail(pending, requestDomain.StatusConfirming)
	appendTrail(otherCustomer, requestDomain.StatusConfirming, requestDomain.StatusConfirmed, requestDomain.StatusRejected)

	got, err := repo.FindRejectedByCustomer(ctx, 9)
	if err != nil {
		t.Fatalf("FindRejectedByCustomer: %v", err)
	}
	if len(got) != 1 || got[0].RequestID != rejected.RequestID {
		t.Fatalf("rejected = %+v", got)
	}

	none, err := repo.FindRejectedByCustomer(ctx, 404)
	if err != nil || len(none) != 0 {
		t.Fatalf("unknown customer = %+v, %v", none, err)
	}
}
