// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package models defines the data structures shared across the Lectern
// application: feedback events and their status lifecycle, run manifests,
// questionnaire documents, apply reports, and the standard API envelope.
//
// # Overview
//
// Models are pure data. They carry JSON tags for wire and file
// serialization and validate tags for request validation, but perform no
// I/O themselves. Storage, transport, and mutation live in the packages
// that consume these types (database, api, apply, profile, memory).
//
// # File Organization
//
//   - feedback.go: FeedbackEvent, FeedbackRun, Label, Source, run_id format
//   - status.go: EventStatus lifecycle (pending -> applied | rejected)
//   - manifest.go: RunManifest, ManifestEntry, questionnaire documents
//   - apply.go: ApplyReport and per-event outcomes
//   - api_responses.go: APIResponse envelope and admin request/response types
package models
