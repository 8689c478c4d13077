// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package apply

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/manifest"
	"github.com/tomtom215/lectern/internal/metrics"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/profile"
)

// Batch triggers, recorded as the trigger label on apply metrics.
const (
	TriggerCLI       = "cli"
	TriggerScheduler = "scheduler"
	TriggerAdmin     = "admin"
	TriggerManual    = "manual"
)

// unresolvedItemError is the error string stored on events whose item id
// has no manifest entry.
const unresolvedItemError = "unresolved item_id"

// invalidLabelError is the error string stored on events carrying a label
// outside the closed set. Store-sourced events are validated on intake,
// so only file sources can hit this.
const invalidLabelError = "invalid label"

// EventSource supplies pending events and records their settlement.
// *database.DB satisfies it directly. File-backed sources implement a
// no-op SettleEvent because the file itself is the record of review.
type EventSource interface {
	PendingEvents(ctx context.Context, runID string) ([]models.FeedbackEvent, error)
	SettleEvent(ctx context.Context, eventID string, next models.EventStatus, resolvedID, errMsg *string, settledAt time.Time) error
}

// ManifestResolver looks up the manifest for a run. *manifest.Dir
// satisfies it directly.
type ManifestResolver interface {
	Load(runID string) (*models.RunManifest, error)
}

// Request describes one apply batch.
type Request struct {
	// RunID restricts the batch to one run. Empty selects all pending
	// events.
	RunID string

	// DryRun computes the full report, including projected profile
	// totals, without writing the profile or settling any event.
	DryRun bool

	// Trigger labels the batch origin on metrics. Empty defaults to
	// TriggerManual.
	Trigger string

	// Source supplies the events. Required.
	Source EventSource

	// Manifests resolves item ids for events that did not carry a corpus
	// id of their own. Optional; without it only self-resolved events
	// apply.
	Manifests ManifestResolver

	// Profile is the preference profile store. Required.
	Profile *profile.Store
}

// Engine runs apply batches. An Engine is a single batch process: a
// mutex serializes concurrent callers so two batches never interleave
// profile mutations.
type Engine struct {
	mu  sync.Mutex
	now func() time.Time
}

// NewEngine returns an Engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// Apply drains one batch of pending events. The returned report is
// non-nil whenever event selection succeeded, including when the batch
// aborted partway on a store failure; the error then describes the
// abort and the report carries the progress made before it.
func (e *Engine) Apply(ctx context.Context, req Request) (*models.ApplyReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if req.Source == nil {
		return nil, errors.New("apply: event source is required")
	}
	if req.Profile == nil {
		return nil, errors.New("apply: profile store is required")
	}

	trigger := req.Trigger
	if trigger == "" {
		trigger = TriggerManual
	}

	report := &models.ApplyReport{
		RunID:     req.RunID,
		DryRun:    req.DryRun,
		StartedAt: e.now().UTC(),
		Events:    []models.EventOutcome{},
	}

	events, err := req.Source.PendingEvents(ctx, req.RunID)
	if err != nil {
		report.CompletedAt = e.now().UTC()
		err = fmt.Errorf("failed to select events: %w", err)
		metrics.RecordApplyRun(trigger, report.CompletedAt.Sub(report.StartedAt), err)
		return report, err
	}
	sortEvents(events)

	var prof *profile.Profile
	var batchErr error
	if req.DryRun {
		// Load returns a private copy; mutating it projects the totals
		// the live run would produce without persisting anything.
		prof, err = req.Profile.Load()
		if err != nil {
			report.CompletedAt = e.now().UTC()
			err = fmt.Errorf("failed to load profile: %w", err)
			metrics.RecordApplyRun(trigger, report.CompletedAt.Sub(report.StartedAt), err)
			return report, err
		}
		batchErr = e.processEvents(ctx, &req, prof, events, report)
	} else {
		prof, err = req.Profile.Update(func(p *profile.Profile) error {
			batchErr = e.processEvents(ctx, &req, p, events, report)
			// Persist partial progress even when the batch aborted.
			// Profile adds are idempotent, so the next run converges.
			return nil
		})
		if err != nil {
			report.CompletedAt = e.now().UTC()
			err = fmt.Errorf("failed to save profile: %w", err)
			metrics.RecordApplyRun(trigger, report.CompletedAt.Sub(report.StartedAt), err)
			return report, err
		}
	}

	report.PositiveTotal = prof.PositiveCount()
	report.NegativeTotal = prof.NegativeCount()
	report.CompletedAt = e.now().UTC()

	if !req.DryRun {
		metrics.UpdateProfileSizes(report.PositiveTotal, report.NegativeTotal)
	}
	metrics.RecordApplyRun(trigger, report.CompletedAt.Sub(report.StartedAt), batchErr)

	logging.Info().
		Str("run_id", req.RunID).
		Str("trigger", trigger).
		Bool("dry_run", req.DryRun).
		Int("applied", report.Applied).
		Int("rejected", report.Rejected).
		Int("skipped", report.Skipped).
		Dur("duration", report.CompletedAt.Sub(report.StartedAt)).
		Msg("Apply batch completed")

	if batchErr != nil {
		return report, batchErr
	}
	return report, nil
}

// processEvents walks the batch in order, recording one outcome per
// event. Returns an error only for store failures, which abort the
// remaining batch.
func (e *Engine) processEvents(ctx context.Context, req *Request, prof *profile.Profile, events []models.FeedbackEvent, report *models.ApplyReport) error {
	// Manifests load and index once per run id for the whole batch.
	indexes := make(map[string]*manifest.Index)

	for i := range events {
		ev := &events[i]

		if ev.Status.IsTerminal() {
			e.record(report, ev, models.OutcomeSkipped, "", "")
			continue
		}

		resolvedID := e.resolve(ev, req.Manifests, indexes)
		if resolvedID == "" {
			settled, err := e.settle(ctx, req, ev, models.StatusRejected, nil, unresolvedItemError)
			if err != nil {
				return err
			}
			if !settled {
				e.record(report, ev, models.OutcomeSkipped, "", "")
				continue
			}
			e.record(report, ev, models.OutcomeRejected, "", unresolvedItemError)
			continue
		}

		if !models.IsValidLabel(ev.Label) {
			settled, err := e.settle(ctx, req, ev, models.StatusRejected, nil, invalidLabelError)
			if err != nil {
				return err
			}
			if !settled {
				e.record(report, ev, models.OutcomeSkipped, "", "")
				continue
			}
			e.record(report, ev, models.OutcomeRejected, "", invalidLabelError)
			continue
		}

		// Mutate before settling: a crash in between re-applies the same
		// id on the next run, which the profile sets absorb. The reverse
		// order would lose the signal.
		switch ev.Label {
		case models.LabelPositive:
			prof.AddPositive(resolvedID)
		case models.LabelNegative:
			prof.AddNegative(resolvedID)
		case models.LabelUndecided:
			// Recorded as applied, mutates nothing.
		}

		settled, err := e.settle(ctx, req, ev, models.StatusApplied, &resolvedID, "")
		if err != nil {
			return err
		}
		if !settled {
			e.record(report, ev, models.OutcomeSkipped, "", "")
			continue
		}
		e.record(report, ev, models.OutcomeApplied, resolvedID, "")
	}

	return nil
}

// resolve returns the normalized corpus id for ev, or "" when none
// exists. The event's own resolved id wins; otherwise the manifest index
// cascades item id, then title+URL, so a hand-edited questionnaire line
// with a garbled item id still lands on the right entry.
func (e *Engine) resolve(ev *models.FeedbackEvent, dir ManifestResolver, cache map[string]*manifest.Index) string {
	if ev.ResolvedSemanticPaperID != nil {
		if id := models.NormalizePaperID(*ev.ResolvedSemanticPaperID); id != "" {
			return id
		}
	}

	ix, ok := cache[ev.RunID]
	if !ok {
		ix = manifest.NewIndex(loadManifest(dir, ev.RunID))
		cache[ev.RunID] = ix
	}

	entry, ok := ix.Resolve(ev.ItemID, "", ev.Title, ev.URL)
	if !ok {
		return ""
	}
	return models.NormalizePaperID(entry.SemanticPaperID)
}

// loadManifest fetches one run manifest. A missing or unreadable
// manifest resolves nothing; the affected events reject individually
// rather than aborting the batch.
func loadManifest(dir ManifestResolver, runID string) *models.RunManifest {
	if dir == nil || runID == "" {
		return nil
	}
	m, err := dir.Load(runID)
	if err != nil {
		if !errors.Is(err, manifest.ErrNotFound) {
			logging.Warn().Err(err).Str("run_id", runID).Msg("Failed to load run manifest")
		}
		return nil
	}
	return m
}

// settle moves ev to a terminal status. Dry runs settle nothing and
// report success. A false return without error means another writer
// settled the event first; the caller counts it skipped.
func (e *Engine) settle(ctx context.Context, req *Request, ev *models.FeedbackEvent, next models.EventStatus, resolvedID *string, errMsg string) (bool, error) {
	if req.DryRun {
		return true, nil
	}

	var errPtr *string
	if errMsg != "" {
		errPtr = &errMsg
	}

	err := req.Source.SettleEvent(ctx, ev.EventID, next, resolvedID, errPtr, e.now().UTC())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, database.ErrEventNotPending):
		return false, nil
	default:
		return false, fmt.Errorf("failed to settle event %s: %w", ev.EventID, err)
	}
}

// record appends one outcome to the report and bumps its counters.
func (e *Engine) record(report *models.ApplyReport, ev *models.FeedbackEvent, outcome models.ApplyOutcome, resolvedID, errMsg string) {
	switch outcome {
	case models.OutcomeApplied:
		report.Applied++
	case models.OutcomeRejected:
		report.Rejected++
	case models.OutcomeSkipped:
		report.Skipped++
	}
	if !report.DryRun {
		metrics.RecordApplyEvent(string(outcome))
	}
	report.Events = append(report.Events, models.EventOutcome{
		EventID:    ev.EventID,
		ItemID:     ev.ItemID,
		Label:      ev.Label,
		Outcome:    outcome,
		ResolvedID: resolvedID,
		Error:      errMsg,
	})
}

// sortEvents orders the batch by (created_at, event_id). Store queries
// already return this order; file sources may not.
func sortEvents(events []models.FeedbackEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.Before(events[j].CreatedAt)
		}
		return events[i].EventID < events[j].EventID
	})
}
