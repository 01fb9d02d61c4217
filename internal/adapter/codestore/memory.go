package codestore

import (
	"context"
	"sync"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/confirmation"
)

var _ confirmation.Store = (*MemoryStore)(nil)

type slot struct {
	kind  confirmation.Kind
	scope string
}

type memEntry struct {
	code      string
	expiresAt time.Time // zero means no expiry
}

// MemoryStore is a process-local store for single-instance runs and tests.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[slot]memEntry
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: make(map[slot]memEntry), now: time.Now}
}

// WithClock swaps the time source, for expiry tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Put(_ context.Context, kind confirmation.Kind, scope, code string, ttl time.Duration) error {
	e := memEntry{code: code}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.slots[slot{kind, scope}] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, kind confirmation.Kind, scope string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := slot{kind, scope}
	e, ok := s.slots[k]
	if !ok {
		return "", confirmation.ErrNoCode
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.slots, k)
		return "", confirmation.ErrNoCode
	}
	return e.code, nil
}

func (s *MemoryStore) Delete(_ context.Context, kind confirmation.Kind, scope string) error {
	s.mu.Lock()
	delete(s.slots, slot{kind, scope})
	s.mu.Unlock()
	return nil
}
