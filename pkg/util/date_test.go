package util

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	got, ok := ParseDate("2024-10-10")
	if !ok {
		t.Fatalf("expected ok")
	}
	want := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("unexpected date %v", got)
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, ok := ParseDate("10/10/2024"); ok {
		t.Fatalf("expected not ok")
	}
	if _, ok := ParseDate(""); ok {
		t.Fatalf("expected not ok for empty")
	}
}

func TestParseDateDefault(t *testing.T) {
	def := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	got := ParseDateDefault("", def)
	if !got.Equal(def) {
		t.Fatalf("expected default")
	}
}

func TestNextMidnight(t *testing.T) {
	now := time.Date(2024, 10, 10, 15, 4, 5, 0, time.UTC)
	got := NextMidnight(now)
	want := time.Date(2024, 10, 11, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestDaysAgo(t *testing.T) {
	now := time.Date(2024, 10, 10, 15, 0, 0, 0, time.UTC)
	got := DaysAgo(now, 90)
	want := time.Date(2024, 7, 12, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
