// Package scheduler re-runs people searches on an interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/aliro/scout/internal/model"
)

// Runner runs one people search. poller.Searcher satisfies it.
type Runner interface {
	Run(ctx context.Context, jobID string) (*model.SearchResult, error)
}

// Scheduler owns the main loop: ticks on an interval and searches each job
// sequentially.
type Scheduler struct {
	runner   Runner
	jobIDs   []string
	interval time.Duration
	pause    time.Duration
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that searches all jobs at the given interval.
func NewScheduler(runner Runner, jobIDs []string, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:   runner,
		jobIDs:   jobIDs,
		interval: interval,
		pause:    time.Second,
		logger:   logger,
	}
}

// Run runs one immediate cycle, then one per interval. It returns nil when
// ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"jobs", len(s.jobIDs),
	)

	s.searchAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-ticker.C:
			s.searchAll(ctx)
		}
	}
}

// searchAll runs every job in order with a short pause between jobs.
func (s *Scheduler) searchAll(ctx context.Context) {
	for i, id := range s.jobIDs {
		if ctx.Err() != nil {
			return
		}

		if _, err := s.runner.Run(ctx, id); err != nil {
			s.logger.Error("people search failed", "job", id, "error", err)
		}

		if i < len(s.jobIDs)-1 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.pause):
			}
		}
	}
}
