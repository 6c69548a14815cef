package service

import (
	"context"
	"log/slog"
	"time"
)

// HousekeepingService periodically sweeps expired sessions and invitations
// so stale rows do not accumulate between requests.
type HousekeepingService struct {
	Sessions    *SessionService
	Invitations *InvitationService
	Logger      *slog.Logger
	Interval    time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping worker with the given
// interval. If interval is 0 or negative, defaults to 15 minutes.
func NewHousekeepingService(
	sessions *SessionService,
	invitations *InvitationService,
	logger *slog.Logger,
	interval time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	return &HousekeepingService{
		Sessions:    sessions,
		Invitations: invitations,
		Logger:      logger,
		Interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop() to shut it
// down gracefully.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the worker and blocks until any in-progress sweep has
// finished.
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

// sweep runs each cleanup independently; a failure in one never stops the
// others.
func (s *HousekeepingService) sweep() {
	ctx := context.Background()

	if n, err := s.Sessions.SweepExpired(ctx); err != nil {
		s.Logger.Error("failed to sweep expired sessions", "error", err)
	} else if n > 0 {
		s.Logger.Info("swept expired sessions", "count", n)
	}

	if n, err := s.Invitations.ExpirePending(ctx); err != nil {
		s.Logger.Error("failed to expire invitations", "error", err)
	} else if n > 0 {
		s.Logger.Info("expired stale invitations", "count", n)
	}
}
