package ratelimit

import (
	"context"
	"time"

	"github.com/zengarv/StockInsightAPI/pkg/logger"
)

// FallbackStore counts against primary and degrades to the in-process
// store when primary fails, so a Redis outage slows nobody down. Counts
// taken during an outage live only in this process; that is the accepted
// trade-off for failing open.
type FallbackStore struct {
	primary  CounterStore
	fallback *MemoryStore
	log      *logger.Logger
}

// NewFallbackStore wraps primary with an in-memory fallback.
func NewFallbackStore(primary CounterStore, fallback *MemoryStore, log *logger.Logger) *FallbackStore {
	return &FallbackStore{primary: primary, fallback: fallback, log: log}
}

func (s *FallbackStore) Incr(ctx context.Context, key string, expireAt time.Time) (int64, error) {
	count, err := s.primary.Incr(ctx, key, expireAt)
	if err == nil {
		return count, nil
	}
	if s.log != nil {
		s.log.Warn("rate counter backend failed, counting in memory", logger.Error(err))
	}
	return s.fallback.Incr(ctx, key, expireAt)
}

func (s *FallbackStore) Peek(ctx context.Context, key string) (int64, error) {
	count, err := s.primary.Peek(ctx, key)
	if err == nil {
		return count, nil
	}
	if s.log != nil {
		s.log.Warn("rate counter backend failed, reading memory counter", logger.Error(err))
	}
	return s.fallback.Peek(ctx, key)
}
