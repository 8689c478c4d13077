// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package memory implements the anti-repetition memory: the bounded record
// of candidate papers already surfaced to the reader, consulted to keep a
// paper from reappearing in the feed within its suppression window.
//
// # Overview
//
// The SeenStore interface exposes five operations: IsSuppressed for the
// retrieval-time filter, MarkSeen for recording what a rendered report
// actually showed, Snapshot for inspection, Prune for removing expired
// entries, and Stats for observability. All time-dependent behavior takes
// the clock as a parameter, so suppression decisions are reproducible.
//
// # Semantics
//
// Two limits bound the store:
//   - Capacity: after every MarkSeen the store holds at most MaxIDs entries.
//     When the cap is exceeded, entries are evicted in ascending last-seen
//     order until the store is back at the cap.
//   - TTL: an entry older than the suppression window reads as absent even
//     before Prune physically removes it. A TTLDays of zero or less disables
//     expiry; entries then persist until evicted by capacity.
//
// Suppression is strict: an entry seen exactly TTL ago is no longer
// suppressed.
//
// # Backends
//
// Three implementations back the interface, selected by Open:
//   - memory: a map plus a recency-ordered doubly-linked list, O(1) marks
//     and evictions. State is lost on restart; intended for tests and
//     one-shot CLI runs against no file.
//   - file: the in-memory store wrapped with JSON persistence. Every
//     mutation rewrites the file atomically. This is the CLI default and
//     matches the document format consumed by the feed pipeline.
//   - badger: BadgerDB-backed for server mode, with native per-entry TTL
//     and an oldest-first eviction scan to enforce the cap.
//
// # Janitor
//
// In server mode a Janitor service runs Prune on an interval under the
// supervision tree, so expired entries are physically removed even when no
// feedback traffic arrives.
package memory
