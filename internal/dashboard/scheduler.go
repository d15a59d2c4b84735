package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs fn immediately and then on every tick until ctx is done.
// Errors from fn are logged and do not stop the loop.
type Scheduler struct {
	interval time.Duration
	fn       func(context.Context) error
	logger   *zap.Logger
}

// NewScheduler creates a Scheduler
func NewScheduler(interval time.Duration, fn func(context.Context) error, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{interval: interval, fn: fn, logger: logger}
}

// Run blocks until ctx is cancelled and returns ctx.Err()
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	start := time.Now()
	if err := s.fn(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error("scheduled run failed", zap.Error(err))
		return
	}
	s.logger.Debug("scheduled run finished", zap.Duration("took", time.Since(start)))
}
