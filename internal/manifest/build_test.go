// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package manifest

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

func TestBuild(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 21, 7, 30, 0, 0, time.UTC)
	entries := []models.ManifestEntry{
		{Title: "First", URL: "https://example.org/a", SemanticPaperID: "111"},
		{Title: "Hidden", URL: "https://example.org/hidden"},
		{Title: "Second", URL: "https://example.org/b", SemanticPaperID: "CorpusId:222"},
	}
	html := `<a href="https://example.org/a">x</a><a href="https://example.org/b/">y</a>`

	m, err := Build("", entries, html, now)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if m.Version != models.ManifestVersion {
		t.Errorf("version = %q, want %q", m.Version, models.ManifestVersion)
	}
	if m.RunID != "2026-08-21T07-30-00Z" {
		t.Errorf("run_id = %q, want generated from now", m.RunID)
	}
	if len(m.Papers) != 2 {
		t.Fatalf("papers = %d, want 2 (hidden entry dropped)", len(m.Papers))
	}

	// Item ids are positional after filtering, and corpus ids normalized.
	if m.Papers[0].ItemID != "p01" || m.Papers[1].ItemID != "p02" {
		t.Errorf("item ids = %q, %q, want p01, p02", m.Papers[0].ItemID, m.Papers[1].ItemID)
	}
	if m.Papers[0].SemanticPaperID != "CorpusId:111" {
		t.Errorf("semantic id = %q, want normalized CorpusId:111", m.Papers[0].SemanticPaperID)
	}

	if err := Validate(m); err != nil {
		t.Errorf("built manifest fails validation: %v", err)
	}
}

func TestBuildNothingVisible(t *testing.T) {
	t.Parallel()

	entries := []models.ManifestEntry{
		{Title: "First", URL: "https://example.org/a"},
	}
	html := `<a href="https://example.org/other">x</a>`

	if _, err := Build("", entries, html, time.Now()); err == nil {
		t.Error("Build() with no visible entries succeeded, want error")
	}
}

func TestBuildRejectsBadRunID(t *testing.T) {
	t.Parallel()

	entries := []models.ManifestEntry{{Title: "First", URL: "https://example.org/a"}}
	if _, err := Build("monday-run", entries, "", time.Now()); err == nil {
		t.Error("Build() with malformed run id succeeded, want error")
	}
}

func TestBuildQuestionnaire(t *testing.T) {
	t.Parallel()

	m := testManifest()
	q := BuildQuestionnaire(m)

	if q.RunID != m.RunID {
		t.Errorf("run_id = %q, want %q", q.RunID, m.RunID)
	}
	if len(q.Reviews) != len(m.Papers) {
		t.Fatalf("reviews = %d, want %d", len(q.Reviews), len(m.Papers))
	}
	for i, review := range q.Reviews {
		if review.Label != models.LabelUndecided {
			t.Errorf("reviews[%d].label = %q, want undecided", i, review.Label)
		}
		if review.ItemID != m.Papers[i].ItemID {
			t.Errorf("reviews[%d].item_id = %q, want %q", i, review.ItemID, m.Papers[i].ItemID)
		}
		if review.Title != m.Papers[i].Title || review.URL != m.Papers[i].URL {
			t.Errorf("reviews[%d] lost denormalized title/url", i)
		}
	}
}

func TestQuestionnaireSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	path := QuestionnairePath(t.TempDir(), testRunID)
	if !strings.Contains(filepath.Base(path), testRunID) {
		t.Errorf("QuestionnairePath() = %q, want run id in file name", path)
	}

	q := BuildQuestionnaire(testManifest())
	if err := SaveQuestionnaire(path, q); err != nil {
		t.Fatalf("SaveQuestionnaire() error = %v", err)
	}

	loaded, err := LoadQuestionnaire(path)
	if err != nil {
		t.Fatalf("LoadQuestionnaire() error = %v", err)
	}
	if loaded.RunID != q.RunID || len(loaded.Reviews) != len(q.Reviews) {
		t.Errorf("round trip lost data: %+v", loaded)
	}
}

func TestLoadQuestionnaireErrors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadQuestionnaire(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("LoadQuestionnaire() on missing file succeeded, want error")
		}
	})

	t.Run("bad run id", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "q.json")
		q := models.QuestionnaireFile{
			RunID:   "not-a-run-id",
			Reviews: []models.QuestionnaireReview{{ItemID: "p01", Label: models.LabelUndecided}},
		}
		if err := SaveQuestionnaire(path, q); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadQuestionnaire(path); err == nil {
			t.Error("LoadQuestionnaire() with bad run id succeeded, want error")
		}
	})

	t.Run("no reviews", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "q.json")
		if err := SaveQuestionnaire(path, models.QuestionnaireFile{RunID: testRunID}); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadQuestionnaire(path); err == nil {
			t.Error("LoadQuestionnaire() with no reviews succeeded, want error")
		}
	})
}
