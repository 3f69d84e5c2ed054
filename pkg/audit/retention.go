package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// retentionSchedule runs the sweep nightly at 02:30.
const retentionSchedule = "30 2 * * *"

// Sweeper deletes audit entries older than the retention window on a cron
// schedule.
type Sweeper struct {
	repo      Repository
	retention time.Duration
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewSweeper(repo Repository, retentionDays int, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		repo:      repo,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger.With("module", "audit_sweeper"),
	}
}

func (s *Sweeper) Start(ctx context.Context) error {
	s.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	_, err := s.cron.AddFunc(retentionSchedule, func() {
		s.sweep(context.Background())
	})
	if err != nil {
		return fmt.Errorf("failed to schedule audit retention sweep: %w", err)
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Audit retention sweeper started", "retention", s.retention)

	return nil
}

func (s *Sweeper) sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)

	purged, err := s.repo.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Audit retention sweep failed", "error", err)

		return
	}

	s.logger.InfoContext(ctx, "Audit retention sweep completed", "purged", purged)
}

func (s *Sweeper) Stop(ctx context.Context) {
	if s.cron != nil {
		s.cron.Stop()
	}

	s.logger.InfoContext(ctx, "Audit retention sweeper stopped")
}
