package ratelimit

import (
	"context"
	"time"

	"github.com/zengarv/StockInsightAPI/pkg/cache"
)

// RedisStore is the CounterStore backed by Redis INCR. The expiry is set
// server-side on the first increment of the day (EXPIREAT next midnight),
// so the server drops stale counters on its own and the limiter survives
// process restarts.
type RedisStore struct {
	redis *cache.RedisCache
}

// NewRedisStore creates a Redis-backed counter store.
func NewRedisStore(redis *cache.RedisCache) *RedisStore {
	return &RedisStore{redis: redis}
}

func (s *RedisStore) Incr(ctx context.Context, key string, expireAt time.Time) (int64, error) {
	count, err := s.redis.Incr(ctx, key)
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := s.redis.ExpireAt(ctx, key, expireAt); err != nil {
			return 0, err
		}
	}
	return count, nil
}

func (s *RedisStore) Peek(ctx context.Context, key string) (int64, error) {
	return s.redis.GetInt64(ctx, key)
}
