// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// getTableCreationQueries returns the table creation SQL statements.
func getTableCreationQueries() []string {
	return []string{
		// One row per feedback signal. Status 'pending' rows form the
		// apply queue; terminal rows are the audit log.
		`CREATE TABLE IF NOT EXISTS feedback_events (
			event_id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			item_id TEXT NOT NULL,
			label TEXT NOT NULL,
			reviewer TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			source TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			resolved_semantic_paper_id TEXT,
			applied_at TIMESTAMP,
			error TEXT
		);`,

		// Published run reports served by the public viewer.
		`CREATE TABLE IF NOT EXISTS feedback_runs (
			run_id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			report_html TEXT NOT NULL
		);`,
	}
}

// createIndexes creates all database indexes. Tests that don't exercise
// query plans set SkipIndexes for faster setup.
func (db *DB) createIndexes() error {
	if db.cfg != nil && db.cfg.SkipIndexes {
		return nil
	}

	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range getIndexQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute index query: %s: %w", query, err)
		}
	}

	return nil
}

// getIndexQueries returns index creation SQL statements.
func getIndexQueries() []string {
	return []string{
		// The apply engine drains by status; the admin listing filters by it.
		`CREATE INDEX IF NOT EXISTS idx_feedback_events_status ON feedback_events(status);`,

		// Run-scoped applies and per-item audit lookups.
		`CREATE INDEX IF NOT EXISTS idx_feedback_events_run_item ON feedback_events(run_id, item_id);`,
	}
}
