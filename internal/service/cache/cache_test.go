package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	pkgcache "github.com/zengarv/StockInsightAPI/pkg/cache"
	"github.com/zengarv/StockInsightAPI/pkg/logger"
)

type fakeStore struct {
	data    map[string]interface{}
	failGet error
	failSet error
}

func newFakeStore() *fakeStore {
	return &fakeStore{data: map[string]interface{}{}}
}

func (f *fakeStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if f.failSet != nil {
		return f.failSet
	}
	f.data[key] = value
	return nil
}

func (f *fakeStore) Get(_ context.Context, key string, dest interface{}) error {
	if f.failGet != nil {
		return f.failGet
	}
	v, ok := f.data[key]
	if !ok {
		return pkgcache.ErrCacheMiss
	}
	*(dest.(*string)) = v.(string)
	return nil
}

func (f *fakeStore) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(f.data, k)
	}
	return nil
}

func (f *fakeStore) Exists(_ context.Context, keys ...string) (bool, error) {
	for _, k := range keys {
		if _, ok := f.data[k]; !ok {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeStore) Name() string                   { return "fake" }
func (f *fakeStore) Healthy(_ context.Context) bool { return true }
func (f *fakeStore) Close() error                   { return nil }

type countingMetrics struct {
	cacheOps map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{cacheOps: map[string]int{}}
}

func (m *countingMetrics) RecordCacheOp(op, outcome string) { m.cacheOps[op+"/"+outcome]++ }
func (m *countingMetrics) RecordRateLimit(string, string)   {}
func (m *countingMetrics) RecordCompute(string, float64)    {}
func (m *countingMetrics) RecordDataset(int, int)           {}
func (m *countingMetrics) RecordError(string)               {}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestKeyCanonicalOrder(t *testing.T) {
	a := Key("AAPL", "macd", map[string]interface{}{"fast": 12, "slow": 26, "signal": 9})
	b := Key("AAPL", "macd", map[string]interface{}{"signal": 9, "fast": 12, "slow": 26})
	if a != b {
		t.Fatalf("keys differ for same parameters: %q vs %q", a, b)
	}
	want := "indicator:AAPL:macd:fast:12_signal:9_slow:26"
	if a != want {
		t.Fatalf("key = %q, want %q", a, want)
	}
}

func TestGetSetRoundTrip(t *testing.T) {
	store := newFakeStore()
	c := NewIndicatorCache(store, 30*time.Minute, 250*time.Millisecond, newCountingMetrics(), testLogger(t))
	ctx := context.Background()

	key := Key("AAPL", "sma", map[string]interface{}{"window": 20})
	var got string
	if c.Get(ctx, key, &got) {
		t.Fatal("hit on empty cache")
	}

	c.Set(ctx, key, "payload")
	if !c.Get(ctx, key, &got) {
		t.Fatal("miss after set")
	}
	if got != "payload" {
		t.Fatalf("got %q", got)
	}
}

func TestBackendFailureDegradesToMiss(t *testing.T) {
	store := newFakeStore()
	store.failGet = errors.New("connection refused")
	store.failSet = errors.New("connection refused")
	m := newCountingMetrics()
	c := NewIndicatorCache(store, 30*time.Minute, 250*time.Millisecond, m, testLogger(t))
	ctx := context.Background()

	var dest string
	if c.Get(ctx, "indicator:AAPL:sma:window:20", &dest) {
		t.Fatal("failing backend reported a hit")
	}
	c.Set(ctx, "indicator:AAPL:sma:window:20", "payload")

	if m.cacheOps["get/error"] != 1 || m.cacheOps["set/error"] != 1 {
		t.Fatalf("error ops not recorded: %v", m.cacheOps)
	}
}
