package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/trainerhub/portal/internal/logging"
	"github.com/trainerhub/portal/internal/server/config"
	"github.com/trainerhub/portal/internal/server/repositories/repomanager"
)

// sweepTimeout bounds a single cleanup pass so a slow database cannot stall
// the schedule.
const sweepTimeout = time.Minute

// SweepService periodically deletes expired refresh tokens and one-time
// codes. It runs on its own goroutine, decoupled from request handling; a
// failed pass is logged and retried on the next tick.
type SweepService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	interval    time.Duration
}

// NewSweepService constructs a SweepService with the configured interval.
func NewSweepService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger, cfg *config.Config) *SweepService {
	return &SweepService{
		db:          db,
		repomanager: m,
		logger:      logger,
		interval:    cfg.SweepInterval,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *SweepService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info(ctx, "sweep scheduler started", "interval", s.interval.String())

	for {
		select {
		case <-ctx.Done():
			s.logger.Info(ctx, "sweep scheduler stopped")
			return
		case <-ticker.C:
			s.sweepOnce(ctx)
		}
	}
}

// sweepOnce deletes expired rows from both stores. Each store is swept
// independently so one failure does not skip the other.
func (s *SweepService) sweepOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	now := time.Now()

	tokens, err := s.repomanager.RefreshTokens(s.db).DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Error(ctx, "refresh token sweep failed", "error", err)
	}

	codes, err := s.repomanager.OneTimeCodes(s.db).DeleteExpired(ctx, now)
	if err != nil {
		s.logger.Error(ctx, "one-time code sweep failed", "error", err)
	}

	s.logger.Info(ctx, "sweep completed", "refresh_tokens_deleted", tokens, "codes_deleted", codes)
}
