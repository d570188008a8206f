// Package cache caches computed indicator responses. Every store failure
// degrades to a miss: a broken cache backend slows the API down but never
// breaks a request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zengarv/StockInsightAPI/internal/domain/repository"
	"github.com/zengarv/StockInsightAPI/pkg/cache"
	"github.com/zengarv/StockInsightAPI/pkg/logger"
)

// IndicatorCache wraps a cache.Service with indicator-shaped keys, a fixed
// TTL and a bounded per-operation timeout.
type IndicatorCache struct {
	store     cache.Service
	ttl       time.Duration
	opTimeout time.Duration
	metrics   repository.Metrics
	log       *logger.Logger
}

func NewIndicatorCache(store cache.Service, ttl, opTimeout time.Duration, metrics repository.Metrics, log *logger.Logger) *IndicatorCache {
	return &IndicatorCache{
		store:     store,
		ttl:       ttl,
		opTimeout: opTimeout,
		metrics:   metrics,
		log:       log,
	}
}

// Key builds the canonical cache key for one indicator request. Parameters
// are sorted by name so semantically identical requests share an entry
// regardless of argument order.
func Key(symbol, indicator string, params map[string]interface{}) string {
	return fmt.Sprintf("indicator:%s:%s:%s", symbol, indicator, cache.CanonicalParams(params))
}

// Get loads a cached response into dest. Returns false on a miss, and on
// any backend error, which is logged and counted but never surfaced.
func (c *IndicatorCache) Get(ctx context.Context, key string, dest interface{}) bool {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	err := c.store.Get(ctx, key, dest)
	switch {
	case err == nil:
		c.metrics.RecordCacheOp("get", "hit")
		return true
	case errors.Is(err, cache.ErrCacheMiss):
		c.metrics.RecordCacheOp("get", "miss")
		return false
	default:
		c.metrics.RecordCacheOp("get", "error")
		c.log.Warn("cache read failed, treating as miss",
			logger.String("key", key),
			logger.Error(err))
		return false
	}
}

// Set stores a computed response. Failures are logged and dropped.
func (c *IndicatorCache) Set(ctx context.Context, key string, value interface{}) {
	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		c.metrics.RecordCacheOp("set", "error")
		c.log.Warn("cache write failed",
			logger.String("key", key),
			logger.Error(err))
		return
	}
	c.metrics.RecordCacheOp("set", "ok")
}
