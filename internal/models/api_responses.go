// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package models

import (
	"time"
)

// APIResponse represents a standardized API response wrapper used by all
// JSON endpoints (health, auth, admin). The public feedback and run
// viewer endpoints return plain text/HTML and do not use this envelope.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"applied": 3, "rejected": 1, ...},
//	  "metadata": {
//	    "timestamp": "2026-08-21T12:00:00Z",
//	    "query_time_ms": 4
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "Invalid run_id",
//	    "details": {"field": "run_id"}
//	  },
//	  "metadata": {"timestamp": "2026-08-21T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata for observability. Every JSON
// response includes the server timestamp; handlers that hit the event
// store also report query time.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
}

// APIError represents an error response with structured error details.
//
// Common error codes:
//   - VALIDATION_ERROR: Invalid input parameters
//   - DATABASE_ERROR: Event store failure
//   - AUTHENTICATION_ERROR: Invalid/missing credentials
//   - AUTHORIZATION_ERROR: Insufficient permissions
//   - NOT_FOUND: Resource doesn't exist
//   - RATE_LIMIT_EXCEEDED: Too many requests
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// HealthStatus reports overall service health plus per-dependency
// checks. The readiness probe returns it with status "degraded" and a
// 503 when any check fails.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Uptime    string            `json:"uptime"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// LoginRequest represents a login request for JWT authentication.
//
// Security:
//   - Password is transmitted in plaintext (HTTPS required)
//   - Compared against a bcrypt hash from configuration
//   - Rate limited to 5 attempts per minute per IP
type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
}

// LoginResponse represents a successful login response with JWT token.
// RememberMe logins extend expiry to 30 days; the default follows the
// configured session timeout.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

// EventsResponse wraps the admin audit listing of feedback events.
type EventsResponse struct {
	Events     []FeedbackEvent `json:"events"`
	TotalCount int             `json:"total_count"`
}

// ApplyRunRequest triggers an on-demand apply batch. RunID narrows the
// batch to one run; empty drains every pending event. DryRun computes
// the report without committing anything.
type ApplyRunRequest struct {
	RunID  string `json:"run_id,omitempty"`
	DryRun bool   `json:"dry_run"`
}

// PublishRunRequest stores the rendered report HTML for a run, making it
// available at the public viewer. Body size is capped by the server.
type PublishRunRequest struct {
	ReportHTML string `json:"report_html" validate:"required"`
}

// LinksRequest asks the server to sign feedback links for the items of a
// run, on behalf of the delivery pipeline.
//
// Example:
//
//	{
//	  "run_id": "2026-08-21T07-30-00Z",
//	  "reviewer": "tom",
//	  "items": [
//	    {"item_id": "p01", "semantic_paper_id": "CorpusId:123", "title": "..."}
//	  ]
//	}
type LinksRequest struct {
	RunID    string          `json:"run_id" validate:"required"`
	BaseURL  string          `json:"base_url,omitempty" validate:"omitempty,url"`
	Reviewer string          `json:"reviewer,omitempty"`
	Items    []LinkItemInput `json:"items" validate:"required,min=1,dive"`
}

// LinkItemInput identifies one item to sign links for.
type LinkItemInput struct {
	ItemID          string `json:"item_id" validate:"required"`
	SemanticPaperID string `json:"semantic_paper_id,omitempty"`
	Title           string `json:"title,omitempty"`
}

// ItemLinks carries the signed positive/negative URLs for one item.
type ItemLinks struct {
	ItemID      string `json:"item_id"`
	Title       string `json:"title,omitempty"`
	PositiveURL string `json:"positive_url"`
	NegativeURL string `json:"negative_url"`
}

// LinksResponse returns the signed links for a run.
type LinksResponse struct {
	RunID     string      `json:"run_id"`
	ExpiresAt time.Time   `json:"expires_at"`
	Links     []ItemLinks `json:"links"`
}

// ProfileResponse is the admin view of the preference profile.
type ProfileResponse struct {
	Positive      []string `json:"positive"`
	Negative      []string `json:"negative"`
	PositiveCount int      `json:"positive_count"`
	NegativeCount int      `json:"negative_count"`
}

// MarkSeenRequest records candidate ids in the anti-repetition memory.
type MarkSeenRequest struct {
	CandidateIDs []string `json:"candidate_ids" validate:"required,min=1"`
}

// MarkSeenResponse reports how many ids were recorded.
type MarkSeenResponse struct {
	Marked int `json:"marked"`
}

// SuppressedResponse answers a single suppression check for the
// retrieval pipeline.
type SuppressedResponse struct {
	ID         string `json:"id"`
	Suppressed bool   `json:"suppressed"`
}

// PruneResponse reports how many expired or over-cap entries a prune
// removed.
type PruneResponse struct {
	Removed int `json:"removed"`
}
