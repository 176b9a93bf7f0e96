// Package redis holds the redis-backed pieces of the store layer: the
// read-through cache, idempotency records, the sliding-window limiter and
// the cross-instance event channel.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

type Cache struct {
	rdb *redis.Client
	sf  singleflight.Group
}

func NewCache(client *redis.Client) *Cache {
	return &Cache{rdb: client}
}

func (c *Cache) getString(ctx context.Context, key string) (string, bool, error) {
	s, err := c.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	return s, true, nil
}

func (c *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	return c.rdb.Del(ctx, keys...).Err()
}

func GetJSON[T any](ctx context.Context, c *Cache, key string) (T, bool, error) {
	var zero T

	s, ok, err := c.getString(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}

	var out T
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return zero, false, err
	}

	return out, true, nil
}

func SetJSON(ctx context.Context, c *Cache, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, key, b, ttl).Err()
}

// GetOrSetJSON returns the cached value under key, calling loader on a miss.
// Concurrent misses on the same key share one loader call. A failed cache
// write is not reported; the loaded value is still returned.
func GetOrSetJSON[T any](
	ctx context.Context,
	c *Cache,
	key string,
	ttl time.Duration,
	loader func(ctx context.Context) (T, error),
) (T, error) {
	const op = "redis.GetOrSetJSON"

	var zero T

	if v, ok, err := GetJSON[T](ctx, c, key); err != nil {
		return zero, fmt.Errorf("%s:%w", op, err)
	} else if ok {
		return v, nil
	}

	vAny, err, _ := c.sf.Do(key, func() (any, error) {
		if v, ok, err := GetJSON[T](ctx, c, key); err != nil || ok {
			return v, err
		}
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		_ = SetJSON(ctx, c, key, v, ttl)
		return v, nil
	})
	if err != nil {
		return zero, fmt.Errorf("%s:%w", op, err)
	}

	v, ok := vAny.(T)
	if !ok {
		return zero, fmt.Errorf("%s: unexpected cached type %T", op, vAny)
	}

	return v, nil
}

// InvalidateGroup drops every cached view of a group.
func (c *Cache) InvalidateGroup(ctx context.Context, group domain.GroupID) error {
	return c.Del(ctx, KeyGroupSummary(group))
}

// GroupSummary returns the cached status counts of a group, computing them
// with load on a miss.
func (c *Cache) GroupSummary(
	ctx context.Context,
	group domain.GroupID,
	ttl time.Duration,
	load func(ctx context.Context) (domain.GroupSummary, error),
) (domain.GroupSummary, error) {
	return GetOrSetJSON(ctx, c, KeyGroupSummary(group), ttl, load)
}
