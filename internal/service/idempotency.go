package service

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// IdempotencyStore remembers successful responses per (tenant, key) so a
// retried request returns the first response instead of sending twice.
type IdempotencyStore interface {
	// Lookup returns a stored response body, if any.
	Lookup(ctx context.Context, tenantID, key string) ([]byte, bool, error)
	// Reserve takes the in-flight lock. False means another request with the
	// same key is being processed right now.
	Reserve(ctx context.Context, tenantID, key string) (bool, error)
	// Complete stores body and drops the lock in one step, so a request that
	// wins the lock afterwards always finds the stored body.
	Complete(ctx context.Context, tenantID, key string, body []byte) error
	// Release drops the lock without storing anything, so the key can be retried.
	Release(ctx context.Context, tenantID, key string) error
}

// lockTTL bounds how long a crashed request can hold a key.
const lockTTL = 60 * time.Second

type redisIdempotencyStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb redis.Cmdable, ttl time.Duration) IdempotencyStore {
	return &redisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func resultKey(tenantID, key string) string { return "idempotency:" + tenantID + ":" + key }
func lockKey(tenantID, key string) string   { return "idempotency:lock:" + tenantID + ":" + key }

func (s *redisIdempotencyStore) Lookup(ctx context.Context, tenantID, key string) ([]byte, bool, error) {
	body, err := s.rdb.Get(ctx, resultKey(tenantID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return body, true, nil
}

func (s *redisIdempotencyStore) Reserve(ctx context.Context, tenantID, key string) (bool, error) {
	return s.rdb.SetNX(ctx, lockKey(tenantID, key), "1", lockTTL).Result()
}

func (s *redisIdempotencyStore) Complete(ctx context.Context, tenantID, key string, body []byte) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, resultKey(tenantID, key), body, s.ttl)
		p.Del(ctx, lockKey(tenantID, key))
		return nil
	})
	return err
}

func (s *redisIdempotencyStore) Release(ctx context.Context, tenantID, key string) error {
	return s.rdb.Del(ctx, lockKey(tenantID, key)).Err()
}
