package infra

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"cryptosim/internal/domain"
)

// SnapshotRefresher is implemented by the market data service
type SnapshotRefresher interface {
	Refresh(ctx context.Context) (*domain.Snapshot, error)
}

// Scheduler refreshes the market snapshot on a cron schedule
type Scheduler struct {
	cron      *cron.Cron
	refresher SnapshotRefresher
	spec      string
	timeout   time.Duration
	logger    *zap.Logger
}

// NewScheduler creates a new scheduler. spec is a standard cron
// expression or a descriptor such as "@every 1m".
func NewScheduler(refresher SnapshotRefresher, spec string, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		refresher: refresher,
		spec:      spec,
		timeout:   30 * time.Second,
		logger:    logger.Named("scheduler"),
	}
}

// Start registers the refresh job and starts the cron
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		if err := s.RunNow(context.Background()); err != nil {
			s.logger.Error("scheduled market refresh failed", zap.Error(err))
		}
	}); err != nil {
		return errors.Wrapf(err, "invalid refresh schedule %q", s.spec)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("schedule", s.spec))
	return nil
}

// RunNow refreshes the snapshot immediately
func (s *Scheduler) RunNow(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.refresher.Refresh(ctx)
	return err
}

// Stop stops the scheduler and waits for a running refresh
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}
