// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package database provides the DuckDB-backed event store.
//
// Two tables carry the durable server state:
//
//   - feedback_events: one row per feedback signal. Rows enter as status
//     'pending' and the apply engine settles them to 'applied' or
//     'rejected'; terminal rows are never mutated again, so the table
//     doubles as the apply queue and the audit log.
//   - feedback_runs: published run reports, keyed by run_id, served
//     read-only by the public viewer.
//
// The complete schema lives in schema.go as CREATE TABLE IF NOT EXISTS
// statements. Post-release schema changes go through the append-only
// versioned migrations in migrations.go, tracked in schema_migrations.
//
// All query methods take a context and record duration and errors through
// the metrics package.
package database
