package confirmation

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/apperr"
	domain "github.com/d1ma11/deposit-service/internal/domain/confirmation"

	"go.uber.org/zap"
)

const codeSpace = 10_000

// Issuer hands out 4-digit codes, one live code per (kind, scope) slot.
// Codes are an OTP surrogate and are not cryptographically strong.
type Issuer struct {
	store  domain.Store
	sender domain.Sender
	ttl    time.Duration
	log    *zap.Logger
	intn   func(n int) int
}

type Option func(*Issuer)

// WithRand replaces the uniform source used for code generation.
func WithRand(intn func(n int) int) Option {
	return func(i *Issuer) { i.intn = intn }
}

func NewIssuer(store domain.Store, sender domain.Sender, ttl time.Duration, log *zap.Logger, opts ...Option) *Issuer {
	if log == nil {
		log = zap.NewNop()
	}
	i := &Issuer{store: store, sender: sender, ttl: ttl, log: log, intn: rand.IntN}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Generate returns a zero-padded code drawn uniformly from [0000, 9999].
func (i *Issuer) Generate() string {
	return fmt.Sprintf("%04d", i.intn(codeSpace))
}

// Issue stores a fresh code for the slot, replacing any previous one, and
// hands it to the sender.
func (i *Issuer) Issue(ctx context.Context, kind domain.Kind, scope string) (string, error) {
	code := i.Generate()
	if err := i.store.Put(ctx, kind, scope, code, i.ttl); err != nil {
		return "", fmt.Errorf("store %s code: %w", kind, err)
	}
	if i.sender != nil {
		if err := i.sender.Send(ctx, kind, scope, code); err != nil {
			return "", fmt.Errorf("send %s code: %w", kind, err)
		}
	}
	i.log.Info("confirmation code issued", zap.String("kind", string(kind)), zap.String("scope", scope))
	return code, nil
}

// Current returns the live code of the slot.
func (i *Issuer) Current(ctx context.Context, kind domain.Kind, scope string) (string, error) {
	return i.store.Get(ctx, kind, scope)
}

// Verify fails with ErrInvalidConfirmationCode when code does not match the
// live code, or when none is live. A match does not consume the code.
func (i *Issuer) Verify(ctx context.Context, kind domain.Kind, scope, code string) error {
	current, err := i.store.Get(ctx, kind, scope)
	if errors.Is(err, domain.ErrNoCode) {
		return apperr.ErrInvalidConfirmationCode.Withf("no %s code issued for request %s", kind, scope)
	}
	if err != nil {
		return fmt.Errorf("load %s code: %w", kind, err)
	}
	if current != code {
		return apperr.ErrInvalidConfirmationCode
	}
	return nil
}

// Revoke empties the slot once the confirmed operation has completed.
func (i *Issuer) Revoke(ctx context.Context, kind domain.Kind, scope string) error {
	if err := i.store.Delete(ctx, kind, scope); err != nil {
		return fmt.Errorf("revoke %s code: %w", kind, err)
	}
	return nil
}
