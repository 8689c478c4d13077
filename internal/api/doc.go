// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package api provides lectern's HTTP surface.
//
// Three route families with different trust models share one chi router:
//
//   - Public endpoints (/feedback, /run): unauthenticated, rate limited.
//     The feedback endpoint's only credential is the signed token in the
//     query string; verification happens before any state is touched.
//     Both answer plain text/HTML, since they are opened from mail
//     clients and browsers, not API consumers.
//
//   - Admin API (/api/v1/...): JSON envelope responses, authenticated
//     according to AUTH_MODE, for event inspection, apply triggers, run
//     publishing, link signing, and seen-store maintenance.
//
//   - Operational endpoints (/api/v1/health, /metrics, /swagger):
//     liveness, readiness, Prometheus exposition, and OpenAPI docs.
//
// Handler methods are split across files by concern:
//   - handlers.go: Handler struct and constructor
//   - handlers_feedback.go: public token ingestion and run viewer
//   - handlers_health.go: health and probe endpoints
//   - handlers_auth.go: JWT login
//   - handlers_admin.go: admin API
//   - handlers_helpers.go: shared response helpers
package api
