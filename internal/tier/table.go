// Package tier owns the per-tier access policy: daily request quota,
// historical lookback limit, and the permitted indicator set. Policies come
// from configuration and are validated exhaustively at startup.
package tier

import (
	"fmt"
	"sort"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/internal/indicator"
	"github.com/zengarv/StockInsightAPI/pkg/config"
)

// Policy is the resolved access policy for one tier. A zero DailyQuota or
// LookbackDays means unbounded.
type Policy struct {
	Tier         models.Tier
	DailyQuota   int64
	LookbackDays int
	Indicators   map[string]bool
}

// Unlimited reports whether the tier has no daily quota.
func (p Policy) Unlimited() bool { return p.DailyQuota <= 0 }

// Allows reports whether the tier may request the named indicator.
func (p Policy) Allows(name string) bool { return p.Indicators[name] }

// IndicatorNames returns the permitted indicators sorted by name.
func (p Policy) IndicatorNames() []string {
	names := make([]string, 0, len(p.Indicators))
	for name := range p.Indicators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table maps tiers to their policies.
type Table struct {
	policies map[models.Tier]Policy
}

// order is Free < Pro < Premium; higher tiers must permit at least what
// lower ones do.
var order = []models.Tier{models.TierFree, models.TierPro, models.TierPremium}

// NewTable builds and validates the tier table from configuration. Every
// tier must be present, every listed indicator must exist, and indicator
// access must be monotone up the tier order.
func NewTable(cfg map[string]config.TierConfig) (*Table, error) {
	policies := make(map[models.Tier]Policy, len(order))

	for _, t := range order {
		tc, ok := cfg[string(t)]
		if !ok {
			return nil, fmt.Errorf("tier table: tier %q missing", t)
		}
		indicators := make(map[string]bool, len(tc.Indicators))
		for _, name := range tc.Indicators {
			if !indicator.Known(name) {
				return nil, fmt.Errorf("tier table: tier %q lists unknown indicator %q", t, name)
			}
			indicators[name] = true
		}
		policies[t] = Policy{
			Tier:         t,
			DailyQuota:   tc.DailyQuota,
			LookbackDays: tc.LookbackDays,
			Indicators:   indicators,
		}
	}
	for name := range cfg {
		if !models.ValidTier(models.Tier(name)) {
			return nil, fmt.Errorf("tier table: unknown tier %q", name)
		}
	}

	// monotonicity: each tier keeps everything the one below it has
	for i := 1; i < len(order); i++ {
		lower, higher := policies[order[i-1]], policies[order[i]]
		for name := range lower.Indicators {
			if !higher.Indicators[name] {
				return nil, fmt.Errorf("tier table: tier %q lacks indicator %q granted to %q",
					higher.Tier, name, lower.Tier)
			}
		}
		if !lower.Unlimited() && !higher.Unlimited() && higher.DailyQuota < lower.DailyQuota {
			return nil, fmt.Errorf("tier table: tier %q quota below tier %q", higher.Tier, lower.Tier)
		}
	}

	return &Table{policies: policies}, nil
}

// Lookup returns the policy for a tier. Unknown tiers fall back to the
// most restrictive policy.
func (t *Table) Lookup(tier models.Tier) Policy {
	if p, ok := t.policies[tier]; ok {
		return p
	}
	return t.policies[models.TierFree]
}
