// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package memory

import (
	"context"
	"time"

	"github.com/tomtom215/lectern/internal/logging"
)

// DefaultJanitorInterval is how often the janitor prunes when the
// configuration does not say otherwise.
const DefaultJanitorInterval = time.Hour

// Janitor periodically prunes expired entries from a seen store. It
// implements suture.Service so the supervisor restarts it if a prune pass
// panics.
type Janitor struct {
	store    SeenStore
	interval time.Duration
}

// NewJanitor creates a janitor for store. A non-positive interval falls back
// to DefaultJanitorInterval.
func NewJanitor(store SeenStore, interval time.Duration) *Janitor {
	if interval <= 0 {
		interval = DefaultJanitorInterval
	}
	return &Janitor{store: store, interval: interval}
}

// String identifies the service in supervisor logs.
func (j *Janitor) String() string {
	return "memory-janitor"
}

// Serve runs the prune loop until the context is cancelled.
func (j *Janitor) Serve(ctx context.Context) error {
	logging.Info().
		Dur("interval", j.interval).
		Msg("Starting memory janitor")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pruneCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			count, err := j.store.Prune(pruneCtx, time.Now())
			cancel()

			if err != nil {
				logging.Error().Err(err).Msg("Memory prune failed")
			} else if count > 0 {
				logging.Debug().Int("count", count).Msg("Memory prune completed")
			}

		case <-ctx.Done():
			logging.Info().Msg("Memory janitor stopped")
			return nil
		}
	}
}
