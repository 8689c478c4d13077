// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package main provides the Lectern HTTP server
//
// Lectern records reviewer feedback on recurring reading-feed runs and
// maintains the anti-repetition memory and preference profile that steer
// future recommendation runs.
//
// @title Lectern API
// @version 1.0
// @description Feedback ingestion, anti-repetition memory, and preference profile service for recurring reading-feed runs
// @description
// @description ## Features
// @description
// @description - **One-Click Feedback**: Signed HMAC links embedded in digest emails record positive/negative verdicts with a single GET
// @description - **Anti-Repetition Memory**: TTL-bounded seen store keeps recommended papers from reappearing across runs
// @description - **Preference Profile**: Disjoint positive/negative paper-id sets built from applied feedback
// @description - **Audit Trail**: Every feedback event is stored with its full lifecycle (pending, applied, rejected)
// @description - **Run Viewer**: Published run reports served as HTML with per-item feedback links
// @description
// @description ## Authentication
// @description
// @description Admin endpoints require JWT authentication via HTTP-only cookie (or Basic Auth, depending on auth_mode).
// @description Use `/api/v1/auth/login` to obtain a token, which will be automatically included in subsequent requests.
// @description The public `/feedback` and `/run` endpoints authenticate through the signed token itself.
// @description
// @description ## Rate Limiting
// @description
// @description Default rate limit: 100 requests per minute per IP address.
// @description The public feedback endpoint is limited to 60 requests per minute per IP.
// @description
// @description ## Error Responses
// @description
// @description Admin API error responses follow this format:
// @description ```json
// @description {
// @description   "status": "error",
// @description   "data": null,
// @description   "error": {
// @description     "code": "ERROR_CODE",
// @description     "message": "Human-readable error message",
// @description     "details": {}
// @description   },
// @description   "metadata": {
// @description     "timestamp": "2026-08-21T12:34:56Z"
// @description   }
// @description }
// @description ```
// @description The public feedback endpoint answers with fixed plain-text reasons instead.
//
// @contact.name GitHub Repository
// @contact.url https://github.com/tomtom215/lectern/issues
//
// @license.name AGPL-3.0-or-later
// @license.url https://www.gnu.org/licenses/agpl-3.0.html
//
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in cookie
// @name token
// @description JWT token stored in HTTP-only cookie. Obtain via /api/v1/auth/login endpoint.
//
// @tag.name public
// @tag.description Public endpoints: signed-token feedback ingestion and the run report viewer
//
// @tag.name Core
// @tag.description Health and readiness probes
//
// @tag.name Auth
// @tag.description Authentication and session management endpoints
//
// @tag.name Admin
// @tag.description Administrative operations requiring authentication (event inspection, apply batches, run publishing, link minting, memory maintenance)
package main
