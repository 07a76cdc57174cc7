// Package scheduler drives the hub's periodic work from a single
// loop: mode machine ticks every pass, remote sync and posture checks
// on their own cadence.
package scheduler

import (
	"context"
	"errors"
	"time"

	"pihub/internal/application"
	"pihub/internal/hub"
)

// Scheduler runs the background cadence for a Hub.
type Scheduler struct {
	hub *hub.Hub

	tickInterval    time.Duration
	syncInterval    time.Duration
	postureInterval time.Duration

	lastSync    time.Time
	lastPosture time.Time

	onError func(error)
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithTickInterval sets the loop period (default 15s).
func WithTickInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.tickInterval = d
		}
	}
}

// WithSyncInterval sets the remote sync period (default 15m).
func WithSyncInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.syncInterval = d
		}
	}
}

// WithPostureInterval sets the posture check period (default 5m).
func WithPostureInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.postureInterval = d
		}
	}
}

// WithErrorHandler routes background failures somewhere visible.
func WithErrorHandler(fn func(error)) Option {
	return func(s *Scheduler) {
		if fn != nil {
			s.onError = fn
		}
	}
}

// New creates a scheduler for h.
func New(h *hub.Hub, opts ...Option) *Scheduler {
	s := &Scheduler{
		hub:             h,
		tickInterval:    15 * time.Second,
		syncInterval:    15 * time.Minute,
		postureInterval: 5 * time.Minute,
		onError:         func(error) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Step runs one scheduler pass at now. Sync and posture cadences
// start counting from the first step, so neither fires immediately on
// startup.
func (s *Scheduler) Step(ctx context.Context, now time.Time) {
	s.hub.Tick(now)

	if s.lastSync.IsZero() {
		s.lastSync = now
	}
	if s.lastPosture.IsZero() {
		s.lastPosture = now
	}

	if now.Sub(s.lastSync) >= s.syncInterval {
		s.lastSync = now
		if _, err := s.hub.SyncRemote(ctx); err != nil {
			s.onError(err)
		}
	}

	if now.Sub(s.lastPosture) >= s.postureInterval {
		s.lastPosture = now
		if _, err := s.hub.PostureCheck(ctx); err != nil {
			// No posture hardware is a normal condition, not a fault.
			if !errors.Is(err, application.ErrCaptureUnavailable) {
				s.onError(err)
			}
		}
	}
}

// Run loops until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	s.Step(ctx, time.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Step(ctx, now)
		}
	}
}
