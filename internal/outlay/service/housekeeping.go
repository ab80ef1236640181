package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/outlaydev/outlay/internal/outlay/store"
)

// HousekeepingService periodically deletes expired invites and
// challenges so those tables cannot grow without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut
// it down gracefully.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup deletes expired records. Each deletion is independent so one
// failure does not stop the others.
func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	if err := s.Store.Challenges().DeleteExpiredChallenges(ctx); err != nil {
		s.Logger.Error("failed to delete expired challenges", "error", err)
	}
	if err := s.Store.Invites().DeleteExpiredInvites(ctx); err != nil {
		s.Logger.Error("failed to delete expired invites", "error", err)
	}
}
