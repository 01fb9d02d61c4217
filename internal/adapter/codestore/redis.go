package codestore

import (
	"context"
	"errors"
	"time"

	"github.com/d1ma11/deposit-service/internal/domain/confirmation"

	"github.com/redis/go-redis/v9"
)

var _ confirmation.Store = (*RedisStore)(nil)

// RedisStore keeps each confirmation slot in its own key with a TTL.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func slotKey(kind confirmation.Kind, scope string) string {
	return "deposit:code:" + string(kind) + ":" + scope
}

func (s *RedisStore) Put(ctx context.Context, kind confirmation.Kind, scope, code string, ttl time.Duration) error {
	return s.rdb.Set(ctx, slotKey(kind, scope), code, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, kind confirmation.Kind, scope string) (string, error) {
	v, err := s.rdb.Get(ctx, slotKey(kind, scope)).Result()
	if errors.Is(err, redis.Nil) {
		return "", confirmation.ErrNoCode
	}
	return v, err
}

func (s *RedisStore) Delete(ctx context.Context, kind confirmation.Kind, scope string) error {
	return s.rdb.Del(ctx, slotKey(kind, scope)).Err()
}
