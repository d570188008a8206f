package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/zengarv/StockInsightAPI/pkg/logger"
)

type fakePurger struct {
	mu    sync.Mutex
	calls int
}

func (p *fakePurger) Purge(time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return 1
}

func (p *fakePurger) Len() int { return 0 }

func (p *fakePurger) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestRegisterRejectsBadSpec(t *testing.T) {
	s := New(&fakePurger{}, testLogger(t))
	if err := s.Register("not a cron spec", time.Minute); err == nil {
		t.Fatal("bad spec accepted")
	}
}

func TestSweepRuns(t *testing.T) {
	p := &fakePurger{}
	s := New(p, testLogger(t))
	if err := s.Register("5 0 0 * * *", 50*time.Millisecond); err != nil {
		t.Fatalf("register: %v", err)
	}

	s.Start()
	defer s.Stop()

	deadline := time.After(2 * time.Second)
	for p.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("sweep never ran")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
