// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/lectern/internal/metrics"
	"github.com/tomtom215/lectern/internal/models"
)

// PublishRun stores (or replaces) the rendered report HTML for a run. The
// publish step re-runs on pipeline retries, so the write is an upsert;
// created_at keeps its original value on replace.
func (db *DB) PublishRun(ctx context.Context, run *models.FeedbackRun) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO feedback_runs (run_id, created_at, report_html)
		VALUES (?, ?, ?)
		ON CONFLICT (run_id) DO UPDATE SET report_html = EXCLUDED.report_html`

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query, run.RunID, run.CreatedAt, run.ReportHTML)
	metrics.RecordDBQuery("upsert", "feedback_runs", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to publish run: %w", err)
	}
	return nil
}

// GetRun returns the published run with the given id, or ErrRunNotFound.
func (db *DB) GetRun(ctx context.Context, runID string) (*models.FeedbackRun, error) {
	query := `SELECT run_id, created_at, report_html FROM feedback_runs WHERE run_id = ?`

	start := time.Now()
	var run models.FeedbackRun
	err := db.conn.QueryRowContext(ctx, query, runID).
		Scan(&run.RunID, &run.CreatedAt, &run.ReportHTML)
	metrics.RecordDBQuery("select", "feedback_runs", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRunIDs returns published run ids, newest first.
func (db *DB) ListRunIDs(ctx context.Context, limit int) ([]string, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}

	query := `SELECT run_id FROM feedback_runs ORDER BY created_at DESC, run_id DESC LIMIT ?`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, limit)
	metrics.RecordDBQuery("select", "feedback_runs", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
