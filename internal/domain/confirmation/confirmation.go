package confirmation

import (
	"context"
	"errors"
	"time"
)

// Kind is the operation a code confirms.
type Kind string

const (
	KindOpen   Kind = "open"
	KindRefill Kind = "refill"
	KindClose  Kind = "close"
)

// ErrNoCode is returned by Store.Get when the slot is empty or expired.
var ErrNoCode = errors.New("confirmation: no code issued")

// Store holds one code per (kind, scope) slot. Put overwrites.
type Store interface {
	Put(ctx context.Context, kind Kind, scope, code string, ttl time.Duration) error
	Get(ctx context.Context, kind Kind, scope string) (string, error)
	Delete(ctx context.Context, kind Kind, scope string) error
}

// Sender delivers an issued code to the customer out of band.
type Sender interface {
	Send(ctx context.Context, kind Kind, scope, code string) error
}
