// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

// serviceVersion is reported by the health endpoint and the swagger docs.
const serviceVersion = "1.0.0"

// Health handles health check requests.
//
//	@Summary		Get system health status
//	@Description	Returns health status including event store connectivity, seen-store availability, and uptime
//	@Tags			Core
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	models.APIResponse{data=models.HealthStatus}	"Health status retrieved successfully"
//	@Router			/health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	checks := make(map[string]string)

	// Check event store connectivity (nil means not connected)
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	if dbConnected {
		checks["event_store"] = "ok"
	} else {
		checks["event_store"] = "unreachable"
	}

	seenOK := h.seen != nil
	if seenOK {
		if _, err := h.seen.Stats(r.Context()); err != nil {
			seenOK = false
		}
	}
	if seenOK {
		checks["seen_store"] = "ok"
	} else {
		checks["seen_store"] = "unreachable"
	}

	status := "healthy"
	if !dbConnected || !seenOK {
		status = "degraded"
	}

	health := models.HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Version:   serviceVersion,
		Uptime:    time.Since(h.startTime).Truncate(time.Second).String(),
		Checks:    checks,
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
//
//	@Summary		Kubernetes liveness probe
//	@Description	Returns 200 OK if the process is alive, regardless of external dependencies
//	@Tags			Core
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	models.APIResponse	"Service is alive"
//	@Router			/health/live [get]
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Returns 200 OK only if the service can record and apply feedback.
//
//	@Summary		Kubernetes readiness probe
//	@Description	Returns 200 OK only if the event store is reachable. Returns 503 if not ready.
//	@Tags			Core
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	models.APIResponse	"Service is ready"
//	@Failure		503	{object}	models.APIResponse	"Service is not ready"
//	@Router			/health/ready [get]
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	ready := dbConnected

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"event_store_connected": dbConnected,
			"ready_to_serve":        ready,
			"uptime":                time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
