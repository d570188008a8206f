package ratelimit

import (
	"context"
	"sync"
	"time"
)

type counter struct {
	count    int64
	expireAt time.Time
}

// MemoryStore is the in-process CounterStore. It never consults the wall
// clock: the day-stamped keys make stale reuse impossible on their own, and
// the cleanup scheduler passes its own notion of now to Purge. That keeps
// the store correct under the limiter's injectable clock.
type MemoryStore struct {
	mu sync.Mutex
	m  map[string]*counter
}

// NewMemoryStore creates an in-memory counter store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]*counter)}
}

func (s *MemoryStore) Incr(_ context.Context, key string, expireAt time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.m[key]
	if !ok {
		c = &counter{expireAt: expireAt}
		s.m[key] = c
	}
	c.count++
	return c.count, nil
}

func (s *MemoryStore) Peek(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.m[key]
	if !ok {
		return 0, nil
	}
	return c.count, nil
}

// Purge drops counters whose expiry has passed and returns how many were
// removed.
func (s *MemoryStore) Purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, c := range s.m {
		if now.After(c.expireAt) {
			delete(s.m, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live counters.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
