// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package manifest

import (
	"github.com/tomtom215/lectern/internal/models"
)

type titleURLKey struct {
	title string
	url   string
}

// Index provides constant-time lookup of manifest entries by item id, by
// normalized corpus id, and by normalized title plus URL. Questionnaire
// files are hand-edited and often identify a paper loosely; the three keys
// let resolution fall back from the precise identifier to the fuzzy one.
type Index struct {
	byItemID     map[string]models.ManifestEntry
	bySemanticID map[string]models.ManifestEntry
	byTitleURL   map[titleURLKey]models.ManifestEntry
}

// NewIndex builds an index over the manifest's entries.
func NewIndex(m *models.RunManifest) *Index {
	ix := &Index{
		byItemID:     make(map[string]models.ManifestEntry),
		bySemanticID: make(map[string]models.ManifestEntry),
		byTitleURL:   make(map[titleURLKey]models.ManifestEntry),
	}
	if m == nil {
		return ix
	}

	for _, entry := range m.Papers {
		if entry.ItemID != "" {
			ix.byItemID[entry.ItemID] = entry
		}
		if sem := models.NormalizePaperID(entry.SemanticPaperID); sem != "" {
			ix.bySemanticID[sem] = entry
		}
		if entry.Title != "" || entry.URL != "" {
			key := titleURLKey{
				title: NormalizeTitle(entry.Title),
				url:   NormalizeURL(entry.URL),
			}
			ix.byTitleURL[key] = entry
		}
	}
	return ix
}

// ByItemID looks up an entry by its positional item id.
func (ix *Index) ByItemID(itemID string) (models.ManifestEntry, bool) {
	entry, ok := ix.byItemID[itemID]
	return entry, ok
}

// BySemanticID looks up an entry by corpus id. The id is normalized first.
func (ix *Index) BySemanticID(id string) (models.ManifestEntry, bool) {
	entry, ok := ix.bySemanticID[models.NormalizePaperID(id)]
	return entry, ok
}

// ByTitleURL looks up an entry by its normalized title and URL pair.
func (ix *Index) ByTitleURL(title, url string) (models.ManifestEntry, bool) {
	entry, ok := ix.byTitleURL[titleURLKey{
		title: NormalizeTitle(title),
		url:   NormalizeURL(url),
	}]
	return entry, ok
}

// Resolve finds the entry a loosely identified feedback line refers to,
// trying item id, then corpus id, then title and URL. Empty keys are
// skipped rather than matched.
func (ix *Index) Resolve(itemID, semanticID, title, url string) (models.ManifestEntry, bool) {
	if itemID != "" {
		if entry, ok := ix.ByItemID(itemID); ok {
			return entry, true
		}
	}
	if semanticID != "" {
		if entry, ok := ix.BySemanticID(semanticID); ok {
			return entry, true
		}
	}
	if title != "" || url != "" {
		if entry, ok := ix.ByTitleURL(title, url); ok {
			return entry, true
		}
	}
	return models.ManifestEntry{}, false
}
