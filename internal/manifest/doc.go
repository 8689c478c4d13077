// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package manifest reads, writes, and queries run manifest files: the
// per-run documents that map short positional item ids ("p01", "p02") back
// to stable corpus identifiers.
//
// # Overview
//
// The package has four concerns:
//   - Dir: a directory of manifest files, one per run, named
//     run_feedback_manifest_<run_id>.json.
//   - Index: fast lookup of manifest entries by item id, by corpus id, or by
//     normalized title and URL, for resolving loosely identified feedback.
//   - Build and VisibleEntries: constructing an exported manifest from a run's
//     papers, keeping only entries whose normalized URL appears as a link in
//     the rendered report HTML.
//   - BuildFeedbackLinks and BuildQuestionnaire: the reviewer-facing exports
//     derived from a manifest (signed one-click URLs, offline review template).
//
// # URL Matching
//
// Report HTML and manifest entries meet on normalized URLs: scheme defaults
// to https and is lowercased, the host is lowercased, trailing slashes are
// stripped, and query strings and fragments are dropped. Two links to the
// same paper compare equal regardless of tracking parameters.
package manifest
