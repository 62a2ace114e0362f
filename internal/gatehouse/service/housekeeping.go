package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/hwylde/gatehouse/internal/gatehouse/store"
)

// HousekeepingService periodically removes expired KV rows (lapsed lockout
// counters and revocation markers) so the backing database does not grow
// without bound. Drivers that expire lazily and reclaim nothing, like the
// memory store, do not implement store.Sweeper and need no housekeeping.
type HousekeepingService struct {
	KV       store.KV
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates the service with the given sweep interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(kv store.KV, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		KV:       kv,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop. Non-blocking; call Stop to shut
// the worker down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the worker, blocking until any in-progress sweep finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

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

func (s *HousekeepingService) sweep() {
	sweeper, ok := s.KV.(store.Sweeper)
	if !ok {
		return
	}

	removed, err := sweeper.DeleteExpired(context.Background())
	if err != nil {
		s.Logger.Error("housekeeping sweep failed", "error", err)
		return
	}
	if removed > 0 {
		s.Logger.Info("housekeeping sweep completed", "removed", removed)
	}
}
