// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package apply settles pending feedback events into the preference
// profile.
//
// The engine drains a batch of pending events in created_at order,
// resolves each item id to a stable corpus id through the run manifest,
// mutates the profile for decisive labels, and marks the event terminal.
// Terminal events are skipped on re-runs, which makes applying the same
// batch twice equivalent to applying it once.
//
// Event sources:
//   - the DuckDB event store (the server's queue of accepted clicks)
//   - queue files (JSON array or JSONL of event-shaped objects)
//   - questionnaire files (hand-edited offline review templates)
//
// File sources carry their own record of what was reviewed, so the
// engine settles nothing for them; outcomes appear only in the report.
//
// Failure handling follows two rules: an item id with no manifest entry
// rejects that event and the batch continues, while a store failure
// aborts the remaining batch and the report carries the partial
// progress. Profile writes land before event settlement, so a crash in
// between re-applies idempotently on the next run.
package apply
