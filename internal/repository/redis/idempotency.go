package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	lockValue    = "LOCK"
	resultPrefix = "RES:"
)

// IdemState is what Begin found under an idempotency key.
type IdemState int

const (
	// IdemAcquired means the caller now owns the key and must either
	// SaveResult or Release it.
	IdemAcquired IdemState = iota
	// IdemInFlight means another request with the same key is running.
	IdemInFlight
	// IdemReplay means a previous request finished; its result is returned.
	IdemReplay
)

type IdempotencyStore struct {
	rdb     *redis.Client
	ttl     time.Duration
	lockTTL time.Duration
}

func NewIdempotencyStore(rdb *redis.Client, ttl, lockTTL time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl, lockTTL: lockTTL}
}

// Begin tries to take key for a new request.
//
// Returns:
//   - IdemState: whether the key was acquired, is busy, or holds a result.
//   - string: the stored JSON payload when the state is IdemReplay.
//   - error: any redis failure.
func (s *IdempotencyStore) Begin(ctx context.Context, key string) (IdemState, string, error) {
	const op = "redis.IdempotencyStore.Begin"

	ok, err := s.rdb.SetNX(ctx, key, lockValue, s.lockTTL).Result()
	if err != nil {
		return 0, "", fmt.Errorf("%s:%w", op, err)
	}
	if ok {
		return IdemAcquired, "", nil
	}

	v, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// lock expired between SETNX and GET
		return IdemInFlight, "", nil
	}
	if err != nil {
		return 0, "", fmt.Errorf("%s:%w", op, err)
	}

	if payload, ok := strings.CutPrefix(v, resultPrefix); ok {
		return IdemReplay, payload, nil
	}

	return IdemInFlight, "", nil
}

func (s *IdempotencyStore) SaveResult(ctx context.Context, key string, jsonPayload string) error {
	return s.rdb.Set(ctx, key, resultPrefix+jsonPayload, s.ttl).Err()
}

// Release gives up a key taken by Begin without recording a result, so a
// retry with the same key runs again.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
