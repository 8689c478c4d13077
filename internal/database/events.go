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

	"github.com/google/uuid"

	"github.com/tomtom215/lectern/internal/metrics"
	"github.com/tomtom215/lectern/internal/models"
)

// eventColumns is the column list shared by every feedback_events SELECT,
// in scanEvent order.
const eventColumns = `event_id, run_id, item_id, label, reviewer, created_at, source, status, resolved_semantic_paper_id, applied_at, error`

// EventFilter narrows ListEvents. Zero values mean "any".
type EventFilter struct {
	Status models.EventStatus
	RunID  string
	Limit  int
}

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// InsertEvent stores a new feedback event. A missing event id is assigned,
// a zero created_at is stamped with the current time, and an empty status
// defaults to pending.
func (db *DB) InsertEvent(ctx context.Context, event *models.FeedbackEvent) error {
	if event.EventID == "" {
		event.EventID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if event.Status == "" {
		event.Status = models.StatusPending
	}

	query := `INSERT INTO feedback_events (
		event_id, run_id, item_id, label, reviewer, created_at, source, status,
		resolved_semantic_paper_id, applied_at, error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, query,
		event.EventID,
		event.RunID,
		event.ItemID,
		string(event.Label),
		event.Reviewer,
		event.CreatedAt,
		string(event.Source),
		string(event.Status),
		event.ResolvedSemanticPaperID,
		event.AppliedAt,
		event.Error,
	)
	metrics.RecordDBQuery("insert", "feedback_events", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert feedback event: %w", err)
	}
	return nil
}

// GetEvent returns the event with the given id, or ErrEventNotFound.
func (db *DB) GetEvent(ctx context.Context, eventID string) (*models.FeedbackEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM feedback_events WHERE event_id = ?`

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, eventID)
	event, err := scanEvent(row)
	metrics.RecordDBQuery("select", "feedback_events", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feedback event: %w", err)
	}
	return event, nil
}

// PendingEvents returns pending events in apply order: ascending created_at
// with event_id as the tie-break. A non-empty runID narrows to one run.
func (db *DB) PendingEvents(ctx context.Context, runID string) ([]models.FeedbackEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM feedback_events WHERE status = ?`
	args := []any{string(models.StatusPending)}
	if runID != "" {
		query += ` AND run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY created_at ASC, event_id ASC`

	start := time.Now()
	events, err := db.queryEvents(ctx, query, args...)
	metrics.RecordDBQuery("select", "feedback_events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending events: %w", err)
	}
	return events, nil
}

// SettleEvent moves a pending event to a terminal status, recording the
// resolved id, the failure reason, and the settle time. Settling an event
// that is not pending fails with ErrEventNotPending; terminal rows are
// never mutated.
func (db *DB) SettleEvent(ctx context.Context, eventID string, next models.EventStatus, resolvedID, errMsg *string, settledAt time.Time) error {
	if !models.StatusPending.CanTransition(next) {
		return fmt.Errorf("invalid status transition %s -> %s", models.StatusPending, next)
	}

	query := `UPDATE feedback_events
		SET status = ?, resolved_semantic_paper_id = ?, applied_at = ?, error = ?
		WHERE event_id = ? AND status = ?`

	start := time.Now()
	result, err := db.conn.ExecContext(ctx, query,
		string(next), resolvedID, settledAt, errMsg, eventID, string(models.StatusPending))
	metrics.RecordDBQuery("update", "feedback_events", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to settle feedback event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read settle result: %w", err)
	}
	if affected == 0 {
		if _, getErr := db.GetEvent(ctx, eventID); getErr != nil {
			return getErr
		}
		return fmt.Errorf("%w: %s", ErrEventNotPending, eventID)
	}
	return nil
}

// ListEvents returns events for the admin audit listing, newest first,
// along with the total count matching the filter.
func (db *DB) ListEvents(ctx context.Context, filter EventFilter) ([]models.FeedbackEvent, int, error) {
	where := ""
	var args []any
	if filter.Status != "" {
		where = ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.RunID != "" {
		if where == "" {
			where = ` WHERE run_id = ?`
		} else {
			where += ` AND run_id = ?`
		}
		args = append(args, filter.RunID)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if limit > maxEventLimit {
		limit = maxEventLimit
	}

	start := time.Now()
	var total int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback_events`+where, args...).Scan(&total)
	if err != nil {
		metrics.RecordDBQuery("select", "feedback_events", time.Since(start), err)
		return nil, 0, fmt.Errorf("failed to count feedback events: %w", err)
	}

	query := `SELECT ` + eventColumns + ` FROM feedback_events` + where +
		` ORDER BY created_at DESC, event_id DESC LIMIT ?`
	events, err := db.queryEvents(ctx, query, append(args, limit)...)
	metrics.RecordDBQuery("select", "feedback_events", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list feedback events: %w", err)
	}
	return events, total, nil
}

// CountEventsByStatus returns how many events sit in each status.
func (db *DB) CountEventsByStatus(ctx context.Context) (map[models.EventStatus]int, error) {
	query := `SELECT status, COUNT(*) FROM feedback_events GROUP BY status`

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("select", "feedback_events", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to count events by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.EventStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[models.EventStatus(status)] = count
	}
	return counts, rows.Err()
}

// queryEvents runs a feedback_events SELECT and scans all rows.
func (db *DB) queryEvents(ctx context.Context, query string, args ...any) ([]models.FeedbackEvent, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.FeedbackEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanEvent.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one feedback_events row in eventColumns order.
func scanEvent(row rowScanner) (*models.FeedbackEvent, error) {
	var (
		event      models.FeedbackEvent
		label      string
		source     string
		status     string
		reviewer   sql.NullString
		resolvedID sql.NullString
		appliedAt  sql.NullTime
		errMsg     sql.NullString
	)

	err := row.Scan(
		&event.EventID,
		&event.RunID,
		&event.ItemID,
		&label,
		&reviewer,
		&event.CreatedAt,
		&source,
		&status,
		&resolvedID,
		&appliedAt,
		&errMsg,
	)
	if err != nil {
		return nil, err
	}

	event.Label = models.Label(label)
	event.Source = models.Source(source)
	event.Status = models.EventStatus(status)
	if reviewer.Valid {
		event.Reviewer = &reviewer.String
	}
	if resolvedID.Valid {
		event.ResolvedSemanticPaperID = &resolvedID.String
	}
	if appliedAt.Valid {
		t := appliedAt.Time
		event.AppliedAt = &t
	}
	if errMsg.Valid {
		event.Error = &errMsg.String
	}
	return &event, nil
}
