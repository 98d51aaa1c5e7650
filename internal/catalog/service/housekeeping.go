package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/cataloghq/catalog/internal/catalog/store"
)

// HousekeepingService periodically removes stale registry records so the
// token table does not grow without bound. A record is stale once it is
// older than the refresh token lifetime: the session can no longer be
// renewed, so nothing can resolve it again.
type HousekeepingService struct {
	Registry   store.Tokens
	Logger     *slog.Logger
	Interval   time.Duration
	RefreshTTL time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service with the given sweep
// interval. If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(registry store.Tokens, logger *slog.Logger, interval, refreshTTL time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Registry:   registry,
		Logger:     logger,
		Interval:   interval,
		RefreshTTL: refreshTTL,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the store is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress sweep.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run a sweep immediately on startup
	s.sweep()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCh:
			return
		}
	}
}

// sweep deletes registry records whose last update predates the refresh
// token lifetime. Backends with native expiry report zero deletions.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-s.RefreshTTL)

	deleted, err := s.Registry.DeleteBefore(ctx, cutoff)
	if err != nil {
		s.Logger.Error("failed to sweep stale token records", "error", err)
		return
	}
	if deleted > 0 {
		s.Logger.Info("swept stale token records", "deleted", deleted, "cutoff", cutoff)
	}
}
