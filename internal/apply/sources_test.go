// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package apply

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lectern/internal/models"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestQueueSourceArrayFormat(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "queue.json", `[
		{"run_id": "2026-08-21T07-30-00Z", "item_id": "p01", "label": "positive"},
		{"run_id": "2026-08-21T07-30-00Z", "item_id": "p02", "label": "negative"}
	]`)

	events, err := NewQueueSource(path).PendingEvents(context.Background(), "")
	if err != nil {
		t.Fatalf("PendingEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}

	for _, ev := range events {
		if ev.EventID == "" {
			t.Error("event id not filled")
		}
		if ev.CreatedAt.IsZero() {
			t.Error("created_at not filled")
		}
		if ev.Source != models.SourceQueue {
			t.Errorf("source = %s, want queue", ev.Source)
		}
		if ev.Status != models.StatusPending {
			t.Errorf("status = %s, want pending", ev.Status)
		}
	}

	// Filled timestamps keep file order.
	if !events[0].CreatedAt.Before(events[1].CreatedAt) {
		t.Error("filled timestamps do not preserve file order")
	}
}

func TestQueueSourceJSONLFormat(t *testing.T) {
	t.Parallel()

	path := writeTempFile(t, "queue.jsonl",
		`{"run_id": "2026-08-21T07-30-00Z", "item_id": "p01", "label": "positive"}

{"run_id": "2026-08-22T07-30-00Z", "item_id": "p01", "label": "negative"}
`)

	t.Run("all runs", func(t *testing.T) {
		events, err := NewQueueSource(path).PendingEvents(context.Background(), "")
		if err != nil {
			t.Fatalf("PendingEvents failed: %v", err)
		}
		if len(events) != 2 {
			t.Errorf("events = %d, want 2 (blank lines skipped)", len(events))
		}
	})

	t.Run("run filter", func(t *testing.T) {
		events, err := NewQueueSource(path).PendingEvents(context.Background(), "2026-08-22T07-30-00Z")
		if err != nil {
			t.Fatalf("PendingEvents failed: %v", err)
		}
		if len(events) != 1 || events[0].Label != models.LabelNegative {
			t.Errorf("filtered events = %+v, want single negative", events)
		}
	})
}

func TestQueueSourceErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		_, err := NewQueueSource(filepath.Join(t.TempDir(), "absent.json")).PendingEvents(context.Background(), "")
		if err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("malformed line", func(t *testing.T) {
		path := writeTempFile(t, "bad.jsonl", `{"item_id": "p01"}
not json at all
`)
		_, err := NewQueueSource(path).PendingEvents(context.Background(), "")
		if err == nil {
			t.Error("expected error for malformed line")
		}
	})

	t.Run("empty file", func(t *testing.T) {
		path := writeTempFile(t, "empty.json", "")
		events, err := NewQueueSource(path).PendingEvents(context.Background(), "")
		if err != nil {
			t.Fatalf("PendingEvents failed: %v", err)
		}
		if len(events) != 0 {
			t.Errorf("events = %d, want 0", len(events))
		}
	})
}

func TestQuestionnaireSource(t *testing.T) {
	t.Parallel()

	q := models.QuestionnaireFile{
		RunID: "2026-08-21T07-30-00Z",
		Reviews: []models.QuestionnaireReview{
			{ItemID: "p01", Title: "First", URL: "https://example.com/a", Label: models.LabelPositive},
			{ItemID: "p02", Title: "Untouched", Label: models.LabelUndecided},
			{ItemID: "p03", Title: "Third", Label: models.LabelNegative},
		},
	}
	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		t.Fatalf("marshal questionnaire: %v", err)
	}
	path := writeTempFile(t, "questionnaire.json", string(data))

	events, err := NewQuestionnaireSource(path).PendingEvents(context.Background(), "")
	if err != nil {
		t.Fatalf("PendingEvents failed: %v", err)
	}

	// Undecided rows are unreviewed, not feedback.
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].ItemID != "p01" || events[1].ItemID != "p03" {
		t.Errorf("items = %s/%s, want p01/p03", events[0].ItemID, events[1].ItemID)
	}
	// Title and URL ride along as resolution hints for the engine.
	if events[0].Title != "First" || events[0].URL != "https://example.com/a" {
		t.Errorf("hints = %q/%q, want the review's title and url", events[0].Title, events[0].URL)
	}
	for _, ev := range events {
		if ev.Source != models.SourceQuestionnaire {
			t.Errorf("source = %s, want questionnaire", ev.Source)
		}
		if ev.RunID != q.RunID {
			t.Errorf("run id = %s, want %s", ev.RunID, q.RunID)
		}
	}
}

func TestQuestionnaireSourceRunMismatch(t *testing.T) {
	t.Parallel()

	q := models.QuestionnaireFile{
		RunID:   "2026-08-21T07-30-00Z",
		Reviews: []models.QuestionnaireReview{{ItemID: "p01", Label: models.LabelPositive}},
	}
	data, _ := json.Marshal(q)
	path := writeTempFile(t, "questionnaire.json", string(data))

	_, err := NewQuestionnaireSource(path).PendingEvents(context.Background(), "2026-01-01T00-00-00Z")
	if err == nil {
		t.Error("expected run mismatch error")
	}
}

func TestFixedManifest(t *testing.T) {
	t.Parallel()

	m := &models.RunManifest{RunID: "2026-08-21T07-30-00Z", Version: models.ManifestVersion}

	got, err := (FixedManifest{Manifest: m}).Load("2026-08-21T07-30-00Z")
	if err != nil || got != m {
		t.Errorf("matching run: got (%v, %v), want the manifest", got, err)
	}
	if _, err := (FixedManifest{Manifest: m}).Load("2026-01-01T00-00-00Z"); err == nil {
		t.Error("expected error for mismatched run")
	}
	if _, err := (FixedManifest{}).Load("2026-08-21T07-30-00Z"); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestSourceSettleIsNoOp(t *testing.T) {
	t.Parallel()

	now := time.Now()

	queue := NewQueueSource("unused")
	if err := queue.SettleEvent(context.Background(), "x", models.StatusApplied, nil, nil, now); err != nil {
		t.Errorf("queue settle returned error: %v", err)
	}

	questionnaire := NewQuestionnaireSource("unused")
	if err := questionnaire.SettleEvent(context.Background(), "x", models.StatusRejected, nil, nil, now); err != nil {
		t.Errorf("questionnaire settle returned error: %v", err)
	}
}
