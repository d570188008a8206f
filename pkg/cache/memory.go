package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache implements Service using a size-bounded in-process LRU with
// entry expiry. The TTL is fixed per cache; the per-call expiration argument
// is ignored since all entries of one cache share a lifetime.
type MemoryCache struct {
	lru *expirable.LRU[string, []byte]
}

// NewMemoryCache creates an in-memory cache.
func NewMemoryCache(opts ...MemoryOption) *MemoryCache {
	cfg := &MemoryConfig{
		MaxEntries: 1000,
		TTL:        30 * time.Minute,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return &MemoryCache{
		lru: expirable.NewLRU[string, []byte](cfg.MaxEntries, nil, cfg.TTL),
	}
}

func (mc *MemoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	data, err := marshalValue(value)
	if err != nil {
		return err
	}
	mc.lru.Add(key, data)
	return nil
}

func (mc *MemoryCache) Get(_ context.Context, key string, dest interface{}) error {
	data, ok := mc.lru.Get(key)
	if !ok {
		return ErrCacheMiss
	}
	return unmarshalValue(data, dest)
}

func (mc *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		mc.lru.Remove(key)
	}
	return nil
}

func (mc *MemoryCache) Exists(_ context.Context, keys ...string) (bool, error) {
	for _, key := range keys {
		if mc.lru.Contains(key) {
			return true, nil
		}
	}
	return false, nil
}

// Len returns the number of live entries.
func (mc *MemoryCache) Len() int {
	return mc.lru.Len()
}

func (mc *MemoryCache) Name() string { return "memory" }

func (mc *MemoryCache) Healthy(_ context.Context) bool { return true }

func (mc *MemoryCache) Close() error {
	mc.lru.Purge()
	return nil
}

func marshalValue(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return json.Marshal(value)
	}
}

func unmarshalValue(data []byte, dest interface{}) error {
	if strPtr, ok := dest.(*string); ok {
		*strPtr = string(data)
		return nil
	}
	return json.Unmarshal(data, dest)
}
