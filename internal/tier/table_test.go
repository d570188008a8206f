package tier

import (
	"strings"
	"testing"

	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/pkg/config"
)

func validConfig() map[string]config.TierConfig {
	return map[string]config.TierConfig{
		"free":    {DailyQuota: 50, LookbackDays: 90, Indicators: []string{"sma", "ema"}},
		"pro":     {DailyQuota: 500, LookbackDays: 365, Indicators: []string{"sma", "ema", "rsi", "macd"}},
		"premium": {DailyQuota: 0, LookbackDays: 0, Indicators: []string{"sma", "ema", "rsi", "macd", "bollinger"}},
	}
}

func TestNewTable(t *testing.T) {
	table, err := NewTable(validConfig())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}

	free := table.Lookup(models.TierFree)
	if free.Unlimited() || free.DailyQuota != 50 || free.LookbackDays != 90 {
		t.Fatalf("unexpected free policy %+v", free)
	}
	if !free.Allows("sma") || free.Allows("bollinger") {
		t.Fatal("free indicator set wrong")
	}

	premium := table.Lookup(models.TierPremium)
	if !premium.Unlimited() || premium.LookbackDays != 0 {
		t.Fatalf("unexpected premium policy %+v", premium)
	}
	if !premium.Allows("bollinger") {
		t.Fatal("premium must allow bollinger")
	}
}

func TestNewTableMissingTier(t *testing.T) {
	cfg := validConfig()
	delete(cfg, "pro")
	if _, err := NewTable(cfg); err == nil {
		t.Fatal("expected error for missing tier")
	}
}

func TestNewTableUnknownIndicator(t *testing.T) {
	cfg := validConfig()
	cfg["free"] = config.TierConfig{DailyQuota: 50, Indicators: []string{"vwap"}}
	if _, err := NewTable(cfg); err == nil || !strings.Contains(err.Error(), "unknown indicator") {
		t.Fatalf("expected unknown indicator error, got %v", err)
	}
}

func TestNewTableNonMonotone(t *testing.T) {
	cfg := validConfig()
	cfg["pro"] = config.TierConfig{DailyQuota: 500, Indicators: []string{"rsi", "macd"}}
	if _, err := NewTable(cfg); err == nil {
		t.Fatal("expected error: pro drops indicators granted to free")
	}
}

func TestLookupUnknownTierFallsBack(t *testing.T) {
	table, err := NewTable(validConfig())
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	p := table.Lookup(models.Tier("enterprise"))
	if p.Tier != models.TierFree {
		t.Fatalf("expected fallback to free, got %v", p.Tier)
	}
}
