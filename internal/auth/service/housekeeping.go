package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/auth/metrics"
	"github.com/aussiebroadwan/sessiond/internal/auth/store"
)

// HousekeepingService periodically removes sessions that can no longer be
// refreshed, so the sessions table does not grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	// LogoutRetention is how long a logged-out session stays visible in the
	// user's history.
	LogoutRetention time.Duration

	Now func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour and a non-positive retention to 7 days.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retention <= 0 {
		retention = 7 * 24 * time.Hour
	}

	return &HousekeepingService{
		Store:           store,
		Logger:          logger,
		Interval:        interval,
		LogoutRetention: retention,
		stopCh:          make(chan struct{}),
		doneCh:          make(chan struct{}),
	}
}

// Start runs the sweeper in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Sweep once on startup
	s.cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// cleanup deletes sessions whose refresh credential is expired or revoked
// (credentials go with them by cascade) and logged-out sessions past the
// retention window.
func (s *HousekeepingService) cleanup(ctx context.Context) int64 {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	n, err := s.Store.Sessions().DeleteStaleSessions(ctx, now, now.Add(-s.LogoutRetention))
	if err != nil {
		s.Logger.Error("failed to delete stale sessions", "error", err)
		return 0
	}

	metrics.SessionsEnded.WithLabelValues(metrics.ReasonSweep).Add(float64(n))
	s.Logger.Info("housekeeping cleanup completed", "sessions_deleted", n)
	return n
}
