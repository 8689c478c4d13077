// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lectern/internal/fsatomic"
	"github.com/tomtom215/lectern/internal/models"
)

// Build constructs an exportable manifest from a run's papers. Entries whose
// normalized URL does not appear as a link in the report HTML are dropped,
// then positional item ids ("p01", "p02", ...) are assigned in report order.
// Corpus ids are normalized. An empty runID generates one from now.
//
// Returns an error when no entries survive filtering: a manifest with no
// papers cannot receive feedback.
func Build(runID string, entries []models.ManifestEntry, reportHTML string, now time.Time) (*models.RunManifest, error) {
	kept := VisibleEntries(&models.RunManifest{Papers: entries}, reportHTML)
	if len(kept) == 0 {
		return nil, errors.New("no report-visible entries to export")
	}

	if runID == "" {
		runID = models.NewRunID(now)
	}
	if !models.IsValidRunID(runID) {
		return nil, fmt.Errorf("run_id %q is not a canonical run identifier", runID)
	}

	papers := make([]models.ManifestEntry, len(kept))
	for i, entry := range kept {
		entry.ItemID = fmt.Sprintf("p%02d", i+1)
		entry.SemanticPaperID = models.NormalizePaperID(entry.SemanticPaperID)
		papers[i] = entry
	}

	return &models.RunManifest{
		Version:     models.ManifestVersion,
		RunID:       runID,
		GeneratedAt: now.UTC(),
		Papers:      papers,
	}, nil
}

// BuildQuestionnaire derives the offline review template from a manifest:
// one line per entry, title and URL denormalized so the file reads
// standalone, every label undecided for the reviewer to edit.
func BuildQuestionnaire(m *models.RunManifest) models.QuestionnaireFile {
	q := models.QuestionnaireFile{RunID: m.RunID}
	for _, entry := range m.Papers {
		q.Reviews = append(q.Reviews, models.QuestionnaireReview{
			ItemID: entry.ItemID,
			Title:  entry.Title,
			URL:    entry.URL,
			Label:  models.LabelUndecided,
		})
	}
	return q
}

// QuestionnairePath returns the conventional questionnaire file path for a
// run, next to the manifests.
func QuestionnairePath(dir, runID string) string {
	return filepath.Join(dir, "semantic_feedback_template_"+runID+".json")
}

// SaveQuestionnaire writes the questionnaire template atomically.
func SaveQuestionnaire(path string, q models.QuestionnaireFile) error {
	return fsatomic.WriteJSON(path, q, 0o600)
}

// LoadQuestionnaire reads a hand-edited questionnaire file. Label values are
// not checked here; the apply engine validates them per entry so one typo
// does not discard the whole review.
func LoadQuestionnaire(path string) (*models.QuestionnaireFile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("questionnaire not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read questionnaire: %w", err)
	}

	var q models.QuestionnaireFile
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("invalid questionnaire %s: %w", path, err)
	}
	if !models.IsValidRunID(q.RunID) {
		return nil, fmt.Errorf("questionnaire %s: run_id %q is not a canonical run identifier", path, q.RunID)
	}
	if len(q.Reviews) == 0 {
		return nil, fmt.Errorf("questionnaire %s has no reviews", path)
	}
	return &q, nil
}
