// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package profile provides the durable preference profile: the positive and
// negative paper sets that bias candidate retrieval in the reading feed
// pipeline.
//
// # Overview
//
// A Profile holds two disjoint, insertion-ordered sets of normalized paper
// ids. Mutations preserve three invariants:
//   - An id is never in both sets at once: adding it to one side removes it
//     from the other.
//   - Adding an id already on the requested side is a no-op, so replayed
//     feedback cannot grow the sets.
//   - Insertion order is preserved, so the file diff for a profile change is
//     always a minimal append or move.
//
// Ids are normalized on entry via models.NormalizePaperID, so bare numeric
// corpus ids and their prefixed forms collapse to one entry.
//
// # Persistence
//
// Store reads and writes the profile as a small JSON document:
//
//	{
//	  "positive_paper_ids": ["CorpusId:123"],
//	  "negative_paper_ids": ["CorpusId:456"],
//	  "updated_at": "2026-08-21T07:30:00Z"
//	}
//
// A missing file loads as an empty profile. Saves are atomic: the document is
// written to a temporary file in the target directory, synced, and renamed
// over the destination, so a crash mid-write never truncates the profile.
//
// # Concurrency
//
// Profile itself is not safe for concurrent use. Store serializes access at
// the file level; callers that read-modify-write should use Store.Update,
// which holds the store lock across the whole cycle.
//
// # Usage
//
//	store := profile.NewStore("/var/lib/lectern/preference_profile.json")
//
//	updated, err := store.Update(func(p *profile.Profile) error {
//		p.AddPositive("123456")
//		p.AddNegative("CorpusId:789")
//		return nil
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	positive, negative := updated.Snapshot()
package profile
