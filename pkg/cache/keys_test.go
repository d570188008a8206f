package cache

import "testing"

func TestCanonicalParamsOrderIndependent(t *testing.T) {
	a := CanonicalParams(map[string]interface{}{"window": 20, "kind": "close"})
	b := CanonicalParams(map[string]interface{}{"kind": "close", "window": 20})
	if a != b {
		t.Fatalf("keys differ: %q vs %q", a, b)
	}
	if a != "kind:close_window:20" {
		t.Fatalf("unexpected canonical form %q", a)
	}
}

func TestCanonicalParamsFloats(t *testing.T) {
	got := CanonicalParams(map[string]interface{}{"std_dev": 2.0, "period": 20})
	if got != "period:20_std_dev:2" {
		t.Fatalf("unexpected canonical form %q", got)
	}
}
