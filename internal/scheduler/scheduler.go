// Package scheduler runs the periodic maintenance jobs. The only state the
// service accumulates at runtime is the in-memory rate counter map, so the
// jobs are a nightly purge shortly after the counters roll over plus a
// periodic sweep for counters that expired mid-day.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/zengarv/StockInsightAPI/pkg/logger"
)

// Purger removes expired rate counters and reports how many were dropped.
type Purger interface {
	Purge(now time.Time) int
	Len() int
}

// Scheduler manages the cron jobs.
type Scheduler struct {
	cron   *cron.Cron
	purger Purger
	log    *logger.Logger
}

func New(purger Purger, log *logger.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		purger: purger,
		log:    log,
	}
}

// Register installs the nightly purge at purgeSpec and a sweep every
// sweepInterval. purgeSpec uses the six-field cron format with seconds.
func (s *Scheduler) Register(purgeSpec string, sweepInterval time.Duration) error {
	if _, err := s.cron.AddFunc(purgeSpec, s.purgeTask); err != nil {
		return fmt.Errorf("register purge task: %w", err)
	}
	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", sweepInterval), s.sweepTask); err != nil {
		return fmt.Errorf("register sweep task: %w", err)
	}
	return nil
}

func (s *Scheduler) purgeTask() {
	removed := s.purger.Purge(time.Now())
	s.log.Info("rate counters purged",
		logger.Int("removed", removed),
		logger.Int("remaining", s.purger.Len()))
}

func (s *Scheduler) sweepTask() {
	if removed := s.purger.Purge(time.Now()); removed > 0 {
		s.log.Debug("expired rate counters swept", logger.Int("removed", removed))
	}
}

// Start begins executing registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started")
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}
