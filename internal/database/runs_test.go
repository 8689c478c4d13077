// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

func TestPublishAndGetRun(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	run := &models.FeedbackRun{
		RunID:      "2026-08-21T07-30-00Z",
		CreatedAt:  eventTestBase,
		ReportHTML: "<html><body>weekly digest</body></html>",
	}
	if err := db.PublishRun(ctx, run); err != nil {
		t.Fatalf("PublishRun failed: %v", err)
	}

	stored, err := db.GetRun(ctx, run.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if stored.ReportHTML != run.ReportHTML {
		t.Errorf("ReportHTML = %q, want %q", stored.ReportHTML, run.ReportHTML)
	}
	if !stored.CreatedAt.Equal(eventTestBase) {
		t.Errorf("CreatedAt = %s, want %s", stored.CreatedAt, eventTestBase)
	}
}

func TestPublishRunReplacesHTML(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first := &models.FeedbackRun{
		RunID:      "2026-08-21T07-30-00Z",
		CreatedAt:  eventTestBase,
		ReportHTML: "<html>v1</html>",
	}
	if err := db.PublishRun(ctx, first); err != nil {
		t.Fatalf("First publish failed: %v", err)
	}

	second := &models.FeedbackRun{
		RunID:      "2026-08-21T07-30-00Z",
		CreatedAt:  eventTestBase.Add(time.Hour),
		ReportHTML: "<html>v2</html>",
	}
	if err := db.PublishRun(ctx, second); err != nil {
		t.Fatalf("Second publish failed: %v", err)
	}

	stored, err := db.GetRun(ctx, first.RunID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if stored.ReportHTML != "<html>v2</html>" {
		t.Errorf("ReportHTML = %q, want replaced v2", stored.ReportHTML)
	}
	// created_at keeps the original publish time.
	if !stored.CreatedAt.Equal(eventTestBase) {
		t.Errorf("CreatedAt = %s, want original %s", stored.CreatedAt, eventTestBase)
	}
}

func TestGetRunNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetRun(context.Background(), "2099-01-01T00-00-00Z")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun returned %v, want ErrRunNotFound", err)
	}
}

func TestListRunIDs(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i, id := range []string{"2026-08-19T07-30-00Z", "2026-08-20T07-30-00Z", "2026-08-21T07-30-00Z"} {
		run := &models.FeedbackRun{
			RunID:      id,
			CreatedAt:  eventTestBase.Add(time.Duration(i) * time.Hour),
			ReportHTML: "<html></html>",
		}
		if err := db.PublishRun(ctx, run); err != nil {
			t.Fatalf("PublishRun failed: %v", err)
		}
	}

	ids, err := db.ListRunIDs(ctx, 2)
	if err != nil {
		t.Fatalf("ListRunIDs failed: %v", err)
	}
	if len(ids) != 2 {
		t.Fatalf("ListRunIDs returned %d ids, want 2", len(ids))
	}
	if ids[0] != "2026-08-21T07-30-00Z" || ids[1] != "2026-08-20T07-30-00Z" {
		t.Errorf("ListRunIDs = %v, want newest first", ids)
	}
}
