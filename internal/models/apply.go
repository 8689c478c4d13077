// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package models

import "time"

// ApplyOutcome is the per-event result of an apply batch.
type ApplyOutcome string

const (
	// OutcomeApplied means the event settled successfully (profile
	// mutated, or an undecided no-op).
	OutcomeApplied ApplyOutcome = "applied"

	// OutcomeRejected means no corpus id could be resolved for the event.
	OutcomeRejected ApplyOutcome = "rejected"

	// OutcomeSkipped means the event was already terminal and was left
	// untouched.
	OutcomeSkipped ApplyOutcome = "skipped"
)

// EventOutcome records what the apply engine did with one event.
type EventOutcome struct {
	EventID    string       `json:"event_id"`
	ItemID     string       `json:"item_id"`
	Label      Label        `json:"label"`
	Outcome    ApplyOutcome `json:"outcome"`
	ResolvedID string       `json:"resolved_id,omitempty"`
	Error      string       `json:"error,omitempty"`
}

// ApplyReport summarizes one apply batch. Counts cover this batch only;
// PositiveTotal/NegativeTotal are the profile set sizes after the batch
// (or the projected sizes under dry run).
//
// A report is returned even when the batch aborted early on a store
// failure, carrying the partial progress made before the abort.
//
// Example:
//
//	{
//	  "run_id": "2026-08-21T07-30-00Z",
//	  "dry_run": false,
//	  "applied": 3,
//	  "rejected": 1,
//	  "skipped": 2,
//	  "positive_total": 41,
//	  "negative_total": 17,
//	  "events": [
//	    {"event_id": "...", "item_id": "p01", "label": "positive",
//	     "outcome": "applied", "resolved_id": "CorpusId:123"}
//	  ]
//	}
type ApplyReport struct {
	RunID         string         `json:"run_id,omitempty"`
	DryRun        bool           `json:"dry_run"`
	StartedAt     time.Time      `json:"started_at"`
	CompletedAt   time.Time      `json:"completed_at"`
	Applied       int            `json:"applied"`
	Rejected      int            `json:"rejected"`
	Skipped       int            `json:"skipped"`
	PositiveTotal int            `json:"positive_total"`
	NegativeTotal int            `json:"negative_total"`
	Events        []EventOutcome `json:"events"`
}

// Settled returns the number of events this batch moved to a terminal
// state (skipped events were already settled).
func (r *ApplyReport) Settled() int {
	return r.Applied + r.Rejected
}
