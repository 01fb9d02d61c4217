package codestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/confirmation"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), s
}

func exerciseStore(t *testing.T, st confirmation.Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := st.Get(ctx, confirmation.KindOpen, "r1"); !errors.Is(err, confirmation.ErrNoCode) {
		t.Fatalf("empty slot: want ErrNoCode, got %v", err)
	}
	if err := st.Put(ctx, confirmation.KindOpen, "r1", "1234", time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := st.Put(ctx, confirmation.KindOpen, "r1", "4321", time.Minute); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, err := st.Get(ctx, confirmation.KindOpen, "r1")
	if err != nil || got != "4321" {
		t.Fatalf("Get = %q, %v; want 4321", got, err)
	}

	// other kinds and scopes are separate slots
	if _, err := st.Get(ctx, confirmation.KindRefill, "r1"); !errors.Is(err, confirmation.ErrNoCode) {
		t.Fatalf("refill slot should be empty, got %v", err)
	}
	if _, err := st.Get(ctx, confirmation.KindOpen, "r2"); !errors.Is(err, confirmation.ErrNoCode) {
		t.Fatalf("r2 slot should be empty, got %v", err)
	}

	if err := st.Delete(ctx, confirmation.KindOpen, "r1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Get(ctx, confirmation.KindOpen, "r1"); !errors.Is(err, confirmation.ErrNoCode) {
		t.Fatalf("after delete: want ErrNoCode, got %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	st, _ := newRedisStore(t)
	exerciseStore(t, st)
}

func TestRedisStore_Expiry(t *testing.T) {
	st, mr := newRedisStore(t)
	ctx := context.Background()

	if err := st.Put(ctx, confirmation.KindClose, "abc", "0007", 5*time.Minute); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if ttl := mr.TTL("deposit:code:close:abc"); ttl != 5*time.Minute {
		t.Fatalf("ttl = %v, want 5m", ttl)
	}
	mr.FastForward(5 * time.Minute)
	if _, err := st.Get(ctx, confirmation.KindClose, "abc"); !errors.Is(err, confirmation.ErrNoCode) {
		t.Fatalf("expired: want ErrNoCode, got %v", err)
	}
}

func TestRedisStore_ConnectionError(t *testing.T) {
	st, mr := newRedisStore(t)
	mr.Close()
	if _, err := st.Get(context.Background(), confirmation.KindOpen, "x"); err == nil || errors.Is(err, confirmation.ErrNoCode) {
		t.Fatalf("want transport error, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	st := NewMemoryStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	_ = st.Put(ctx, confirmation.KindRefill, "r", "9999", time.Minute)
	now = now.Add(59 * time.Second)
	if got, err := st.Get(ctx, confirmation.KindRefill, "r"); err != nil || got != "9999" {
		t.Fatalf("before expiry: %q, %v", got, err)
	}
	now = now.Add(time.Second)
	if _, err := st.Get(ctx, confirmation.KindRefill, "r"); !errors.Is(err, confirmation.ErrNoCode) {
		t.Fatalf("at expiry: want ErrNoCode, got %v", err)
	}
}
