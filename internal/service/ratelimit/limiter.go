// Package ratelimit enforces the per-user daily request quota. Counters are
// keyed by (user, calendar day) and expire at the next local midnight, so a
// new day always starts from a clean slate.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/internal/tier"
	"github.com/zengarv/StockInsightAPI/pkg/util"
)

// CounterStore is the backing store for daily counters. Incr must be atomic
// per key so concurrent requests from one user cannot exceed quota.
type CounterStore interface {
	// Incr increments the counter, creating it with the given expiry if
	// absent, and returns the value after the increment.
	Incr(ctx context.Context, key string, expireAt time.Time) (int64, error)
	// Peek reads the counter without incrementing. Absent keys read as 0.
	Peek(ctx context.Context, key string) (int64, error)
}

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Unlimited bool
	Limit     int64
	Used      int64
	Remaining int64
	ResetAt   time.Time
}

// DailyLimiter admits or rejects requests against the caller's tier quota.
type DailyLimiter struct {
	store CounterStore
	tiers *tier.Table
	now   func() time.Time
}

// NewDailyLimiter creates a limiter. now is injectable for tests; nil means
// time.Now.
func NewDailyLimiter(store CounterStore, tiers *tier.Table, now func() time.Time) *DailyLimiter {
	if now == nil {
		now = time.Now
	}
	return &DailyLimiter{store: store, tiers: tiers, now: now}
}

func dayKey(userID int64, day time.Time) string {
	return fmt.Sprintf("rate_limit:%d:%s", userID, util.FormatDate(day))
}

// Check atomically counts one request for the identity and decides whether
// to admit it. Unlimited tiers are always admitted without touching the
// store. Counter increments past the quota are harmless: the key expires at
// midnight regardless.
func (l *DailyLimiter) Check(ctx context.Context, id models.Identity) (Decision, error) {
	policy := l.tiers.Lookup(id.Tier)
	now := l.now()
	resetAt := util.NextMidnight(now)

	if policy.Unlimited() {
		return Decision{Allowed: true, Unlimited: true, ResetAt: resetAt}, nil
	}

	count, err := l.store.Incr(ctx, dayKey(id.UserID, now), resetAt)
	if err != nil {
		return Decision{}, fmt.Errorf("rate counter incr: %w", err)
	}

	d := Decision{
		Limit:   policy.DailyQuota,
		Used:    count,
		ResetAt: resetAt,
	}
	if count > policy.DailyQuota {
		d.Used = policy.DailyQuota
		return d, nil
	}
	d.Allowed = true
	d.Remaining = policy.DailyQuota - count
	return d, nil
}

// Status reports the identity's usage for today without consuming a
// request. Used by the limits endpoint.
func (l *DailyLimiter) Status(ctx context.Context, id models.Identity) (Decision, error) {
	policy := l.tiers.Lookup(id.Tier)
	now := l.now()
	resetAt := util.NextMidnight(now)

	if policy.Unlimited() {
		return Decision{Allowed: true, Unlimited: true, ResetAt: resetAt}, nil
	}

	count, err := l.store.Peek(ctx, dayKey(id.UserID, now))
	if err != nil {
		return Decision{}, fmt.Errorf("rate counter peek: %w", err)
	}
	if count > policy.DailyQuota {
		count = policy.DailyQuota
	}
	return Decision{
		Allowed:   count < policy.DailyQuota,
		Limit:     policy.DailyQuota,
		Used:      count,
		Remaining: policy.DailyQuota - count,
		ResetAt:   resetAt,
	}, nil
}

// Exceeded converts a rejecting decision into the domain error carrying
// quota and reset context for the caller.
func (d Decision) Exceeded() *models.RateLimitExceededError {
	return &models.RateLimitExceededError{
		Limit:     d.Limit,
		Used:      d.Used,
		Remaining: 0,
		ResetAt:   d.ResetAt,
	}
}
