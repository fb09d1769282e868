package backfill

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is how often the scheduler re-runs backfill.
const DefaultInterval = 24 * time.Hour

// Scheduler runs the backfill worker on a fixed recurring interval until its
// context is cancelled. It replaces a poll-every-second loop with a ticker
// and a clean shutdown path.
type Scheduler struct {
	worker   *Worker
	interval time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler for the given worker. An interval of 0
// means DefaultInterval.
func NewScheduler(worker *Worker, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		worker:   worker,
		interval: interval,
		logger:   logger,
	}
}

// Run blocks, invoking the worker once per interval, until ctx is cancelled.
// Runs are synchronous with the tick, so they never overlap.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("backfill scheduler started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("backfill scheduler stopped")
			return
		case <-ticker.C:
			if _, err := s.worker.Run(ctx); err != nil {
				s.logger.Error("scheduled backfill failed", "error", err)
			}
		}
	}
}
