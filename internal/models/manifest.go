// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package models

import "time"

// ManifestVersion is the current run manifest document version.
const ManifestVersion = "v1"

// RunManifest maps the short per-run item ids that appear in a rendered
// report (and in feedback tokens) back to stable corpus identifiers.
// One manifest per run, written when the report is published and read
// whenever feedback for that run is applied.
//
// Example document:
//
//	{
//	  "version": "v1",
//	  "run_id": "2026-08-21T07-30-00Z",
//	  "generated_at": "2026-08-21T07:30:05Z",
//	  "papers": [
//	    {"item_id": "p01", "title": "...", "url": "https://...",
//	     "semantic_paper_id": "CorpusId:123"}
//	  ]
//	}
type RunManifest struct {
	Version     string          `json:"version"`
	RunID       string          `json:"run_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Papers      []ManifestEntry `json:"papers"`
}

// ManifestEntry describes one recommended item within a run. ItemID is
// positional ("p01", "p02", ...) in report order; SemanticPaperID is the
// stable corpus id when resolution succeeded upstream, empty otherwise.
type ManifestEntry struct {
	ItemID          string `json:"item_id"`
	Title           string `json:"title,omitempty"`
	URL             string `json:"url,omitempty"`
	SemanticPaperID string `json:"semantic_paper_id,omitempty"`
}

// Lookup returns the manifest entry for itemID, if present.
func (m *RunManifest) Lookup(itemID string) (ManifestEntry, bool) {
	if m == nil {
		return ManifestEntry{}, false
	}
	for _, entry := range m.Papers {
		if entry.ItemID == itemID {
			return entry, true
		}
	}
	return ManifestEntry{}, false
}

// ResolvedID returns the normalized corpus id for itemID when the
// manifest knows one.
func (m *RunManifest) ResolvedID(itemID string) (string, bool) {
	entry, ok := m.Lookup(itemID)
	if !ok || entry.SemanticPaperID == "" {
		return "", false
	}
	return NormalizePaperID(entry.SemanticPaperID), true
}

// QuestionnaireFile is the offline review template: exported with every
// label undecided, hand-edited by the reviewer, then consumed by apply.
type QuestionnaireFile struct {
	RunID   string                `json:"run_id"`
	Reviews []QuestionnaireReview `json:"reviews"`
}

// QuestionnaireReview is one line of a questionnaire file. Title and URL
// are denormalized from the manifest so the file reads standalone.
type QuestionnaireReview struct {
	ItemID string `json:"item_id"`
	Title  string `json:"title,omitempty"`
	URL    string `json:"url,omitempty"`
	Label  Label  `json:"label"`
}
