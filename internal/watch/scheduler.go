package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
)

// PruneScheduler periodically removes artifacts older than a configured
// age from a prunable store.
type PruneScheduler struct {
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewPruneScheduler schedules pruner.Prune every interval with the given
// maximum artifact age.
func NewPruneScheduler(pruner artifact.Pruner, interval, maxAge time.Duration, logger *slog.Logger) (*PruneScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	ps := &PruneScheduler{scheduler: s, logger: logger}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			removed, err := pruner.Prune(ctx, time.Now().Add(-maxAge))
			if err != nil {
				logger.Warn("Artifact prune failed", "error", err)
				return
			}
			if removed > 0 {
				logger.Info("Pruned artifacts", "removed", removed, "max_age", maxAge)
			}
		}),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, fmt.Errorf("schedule prune job: %w", err)
	}
	return ps, nil
}

// Start begins the schedule.
func (ps *PruneScheduler) Start() {
	ps.logger.Info("Starting prune scheduler")
	ps.scheduler.Start()
}

// Stop gracefully shuts the scheduler down.
func (ps *PruneScheduler) Stop() error {
	ps.logger.Info("Stopping prune scheduler")
	return ps.scheduler.Shutdown()
}
