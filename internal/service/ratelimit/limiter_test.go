package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/internal/tier"
	"github.com/zengarv/StockInsightAPI/pkg/config"
)

func testTiers(t *testing.T) *tier.Table {
	t.Helper()
	table, err := tier.NewTable(map[string]config.TierConfig{
		"free":    {DailyQuota: 50, LookbackDays: 90, Indicators: []string{"sma", "ema"}},
		"pro":     {DailyQuota: 500, LookbackDays: 365, Indicators: []string{"sma", "ema", "rsi", "macd"}},
		"premium": {Indicators: []string{"sma", "ema", "rsi", "macd", "bollinger"}},
	})
	if err != nil {
		t.Fatalf("tier table: %v", err)
	}
	return table
}

func TestFreeTierQuotaExhaustion(t *testing.T) {
	clock := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	l := NewDailyLimiter(NewMemoryStore(), testTiers(t), func() time.Time { return clock })
	id := models.Identity{UserID: 7, Tier: models.TierFree}
	ctx := context.Background()

	for i := 1; i <= 50; i++ {
		d, err := l.Check(ctx, id)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d rejected, want admit", i)
		}
		if d.Remaining != int64(50-i) {
			t.Fatalf("request %d: remaining %d, want %d", i, d.Remaining, 50-i)
		}
	}

	d, err := l.Check(ctx, id)
	if err != nil {
		t.Fatalf("check 51: %v", err)
	}
	if d.Allowed {
		t.Fatal("request 51 admitted, want reject")
	}
	if d.Used != 50 || d.Limit != 50 {
		t.Fatalf("rejection reports used=%d limit=%d", d.Used, d.Limit)
	}
	wantReset := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	if !d.ResetAt.Equal(wantReset) {
		t.Fatalf("reset at %v, want %v", d.ResetAt, wantReset)
	}
}

func TestMidnightRollover(t *testing.T) {
	clock := time.Date(2024, 6, 10, 23, 59, 0, 0, time.UTC)
	l := NewDailyLimiter(NewMemoryStore(), testTiers(t), func() time.Time { return clock })
	id := models.Identity{UserID: 7, Tier: models.TierFree}
	ctx := context.Background()

	for i := 0; i < 51; i++ {
		if _, err := l.Check(ctx, id); err != nil {
			t.Fatalf("check: %v", err)
		}
	}
	d, _ := l.Check(ctx, id)
	if d.Allowed {
		t.Fatal("expected exhausted before midnight")
	}

	// past midnight the day key changes and counting starts over
	clock = time.Date(2024, 6, 11, 0, 0, 5, 0, time.UTC)
	d, err := l.Check(ctx, id)
	if err != nil {
		t.Fatalf("check after midnight: %v", err)
	}
	if !d.Allowed || d.Used != 1 {
		t.Fatalf("after rollover: allowed=%v used=%d, want fresh counter", d.Allowed, d.Used)
	}
}

func TestPremiumUnlimited(t *testing.T) {
	l := NewDailyLimiter(NewMemoryStore(), testTiers(t), nil)
	id := models.Identity{UserID: 3, Tier: models.TierPremium}
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		d, err := l.Check(ctx, id)
		if err != nil {
			t.Fatalf("check: %v", err)
		}
		if !d.Allowed || !d.Unlimited {
			t.Fatal("premium request rejected")
		}
	}
}

func TestStatusDoesNotConsume(t *testing.T) {
	clock := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	l := NewDailyLimiter(NewMemoryStore(), testTiers(t), func() time.Time { return clock })
	id := models.Identity{UserID: 7, Tier: models.TierFree}
	ctx := context.Background()

	if _, err := l.Check(ctx, id); err != nil {
		t.Fatalf("check: %v", err)
	}
	for i := 0; i < 5; i++ {
		d, err := l.Status(ctx, id)
		if err != nil {
			t.Fatalf("status: %v", err)
		}
		if d.Used != 1 || d.Remaining != 49 {
			t.Fatalf("status used=%d remaining=%d, want 1/49", d.Used, d.Remaining)
		}
	}
}

func TestConcurrentChecksNeverExceedQuota(t *testing.T) {
	clock := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	l := NewDailyLimiter(NewMemoryStore(), testTiers(t), func() time.Time { return clock })
	id := models.Identity{UserID: 7, Tier: models.TierFree}

	var wg sync.WaitGroup
	var mu sync.Mutex
	admitted := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := l.Check(context.Background(), id)
			if err != nil {
				t.Errorf("check: %v", err)
				return
			}
			if d.Allowed {
				mu.Lock()
				admitted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if admitted != 50 {
		t.Fatalf("admitted %d concurrent requests, want exactly 50", admitted)
	}
}

type failingStore struct{}

func (failingStore) Incr(context.Context, string, time.Time) (int64, error) {
	return 0, errors.New("connection refused")
}

func (failingStore) Peek(context.Context, string) (int64, error) {
	return 0, errors.New("connection refused")
}

// A backend outage must not fail requests: the fallback store keeps
// counting in memory and the quota stays enforced.
func TestFallbackStoreSurvivesBackendOutage(t *testing.T) {
	clock := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	store := NewFallbackStore(failingStore{}, NewMemoryStore(), nil)
	l := NewDailyLimiter(store, testTiers(t), func() time.Time { return clock })
	id := models.Identity{UserID: 7, Tier: models.TierFree}
	ctx := context.Background()

	for i := 1; i <= 50; i++ {
		d, err := l.Check(ctx, id)
		if err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d rejected during outage", i)
		}
	}
	d, err := l.Check(ctx, id)
	if err != nil {
		t.Fatalf("check 51: %v", err)
	}
	if d.Allowed {
		t.Fatal("request 51 admitted, quota not enforced during outage")
	}

	s, err := l.Status(ctx, id)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if s.Used != 50 {
		t.Fatalf("status used = %d, want 50", s.Used)
	}
}

// The limiter's clock is injectable, so the store must keep counting even
// when a counter's expiry is behind the wall clock. Only the day key and
// Purge decide a counter's lifetime.
func TestMemoryStoreIgnoresWallClock(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	expired := time.Now().Add(-24 * time.Hour)

	for want := int64(1); want <= 3; want++ {
		got, err := s.Incr(ctx, "rate_limit:7:2024-06-10", expired)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("incr = %d, want %d", got, want)
		}
	}
	if got, _ := s.Peek(ctx, "rate_limit:7:2024-06-10"); got != 3 {
		t.Fatalf("peek = %d, want 3", got)
	}
}

func TestMemoryStorePurge(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	if _, err := s.Incr(ctx, "stale", past); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Incr(ctx, "live", future); err != nil {
		t.Fatal(err)
	}

	if removed := s.Purge(time.Now()); removed != 1 {
		t.Fatalf("purged %d, want 1", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("%d counters left, want 1", s.Len())
	}
}
