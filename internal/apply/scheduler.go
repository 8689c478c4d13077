// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package apply

import (
	"context"
	"time"

	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/profile"
)

// DefaultSchedulerInterval is used when no interval is configured.
const DefaultSchedulerInterval = 5 * time.Minute

// batchTimeout bounds one scheduled batch so a wedged store cannot stall
// the ticker loop forever.
const batchTimeout = 2 * time.Minute

// Scheduler periodically drains pending events from the store into the
// profile. It implements suture.Service.
type Scheduler struct {
	engine    *Engine
	interval  time.Duration
	batchSize int
	source    EventSource
	manifests ManifestResolver
	profile   *profile.Store
}

// NewScheduler builds a scheduler draining source into prof every
// interval. Non-positive intervals fall back to the default; a positive
// batchSize caps how many events one tick settles, leaving the rest for
// the next.
func NewScheduler(engine *Engine, interval time.Duration, batchSize int, source EventSource, manifests ManifestResolver, prof *profile.Store) *Scheduler {
	if interval <= 0 {
		interval = DefaultSchedulerInterval
	}
	return &Scheduler{
		engine:    engine,
		interval:  interval,
		batchSize: batchSize,
		source:    source,
		manifests: manifests,
		profile:   prof,
	}
}

// String names the service in supervisor logs.
func (s *Scheduler) String() string {
	return "apply-scheduler"
}

// Serve runs the drain loop until ctx is cancelled.
func (s *Scheduler) Serve(ctx context.Context) error {
	logging.Info().
		Dur("interval", s.interval).
		Int("batch_size", s.batchSize).
		Msg("Starting apply scheduler")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Drain once at startup; a restart should not wait a full interval
	// to pick up events that accumulated while the process was down.
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Apply scheduler stopped")
			return nil
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

// runOnce drains one batch. Failures are logged, never fatal; the next
// tick retries whatever is still pending.
func (s *Scheduler) runOnce(ctx context.Context) {
	batchCtx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	source := s.source
	if s.batchSize > 0 {
		source = limitedSource{EventSource: s.source, limit: s.batchSize}
	}

	report, err := s.engine.Apply(batchCtx, Request{
		Trigger:   TriggerScheduler,
		Source:    source,
		Manifests: s.manifests,
		Profile:   s.profile,
	})
	if err != nil {
		logging.Error().Err(err).Msg("Scheduled apply batch failed")
		return
	}
	if report.Settled() > 0 {
		logging.Debug().
			Int("applied", report.Applied).
			Int("rejected", report.Rejected).
			Int("skipped", report.Skipped).
			Msg("Scheduled apply batch settled events")
	}
}

// limitedSource caps each batch at limit events, oldest first. The
// remainder stays pending for the next tick.
type limitedSource struct {
	EventSource
	limit int
}

func (s limitedSource) PendingEvents(ctx context.Context, runID string) ([]models.FeedbackEvent, error) {
	events, err := s.EventSource.PendingEvents(ctx, runID)
	if err != nil || len(events) <= s.limit {
		return events, err
	}
	sortEvents(events)
	return events[:s.limit], nil
}
