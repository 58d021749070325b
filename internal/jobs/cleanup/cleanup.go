package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const defaultRetention = time.Hour

// Sweeper is implemented by every spool backend.
type Sweeper interface {
	SweepOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// Job removes spool artifacts whose delivery never released them, for
// example after a crash between staging and Close.
type Job struct {
	sweeper   Sweeper
	backend   string
	retention time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewSpoolCleanupJob(sweeper Sweeper, backend string, retention time.Duration, logger *zap.Logger) *Job {
	if retention <= 0 {
		retention = defaultRetention
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		sweeper:   sweeper,
		backend:   backend,
		retention: retention,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.sweeper == nil {
		return nil
	}

	cutoff := j.now().Add(-j.retention)
	removed, err := j.sweeper.SweepOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("sweep %s spool: %w", j.backend, err)
	}

	if removed > 0 {
		j.logger.Info("cleanup stale spool artifacts completed",
			zap.String("backend", j.backend),
			zap.Int("deleted", removed),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
