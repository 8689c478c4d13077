// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/lectern/internal/apply"
	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/manifest"
	"github.com/tomtom215/lectern/internal/models"
)

// maxPublishBodyBytes caps the report HTML a publish request may carry.
const maxPublishBodyBytes = 4 << 20

// Events lists feedback events from the audit log.
//
//	@Summary		List feedback events
//	@Description	Lists feedback events filtered by status and run, newest first
//	@Tags			Admin
//	@Produce		json
//	@Param			status	query	string	false	"Filter by status (pending, applied, rejected)"
//	@Param			run_id	query	string	false	"Filter by run identifier"
//	@Param			limit	query	int		false	"Maximum events to return"
//	@Success		200	{object}	models.APIResponse{data=models.EventsResponse}	"Events retrieved"
//	@Failure		400	{object}	models.APIResponse	"Invalid filter"
//	@Security		BearerAuth
//	@Router			/admin/events [get]
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	filter := database.EventFilter{
		Limit: getIntParam(r, "limit", h.config.API.DefaultPageSize),
	}
	if filter.Limit > h.config.API.MaxPageSize {
		filter.Limit = h.config.API.MaxPageSize
	}

	if status := r.URL.Query().Get("status"); status != "" {
		parsed, err := models.ParseEventStatus(status)
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid status filter", err)
			return
		}
		filter.Status = parsed
	}

	if runID := r.URL.Query().Get("run_id"); runID != "" {
		if !models.IsValidRunID(runID) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid run_id filter", nil)
			return
		}
		filter.RunID = runID
	}

	queryStart := time.Now()
	events, total, err := h.db.ListEvents(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list events", err)
		return
	}

	respondSuccess(w, http.StatusOK, models.EventsResponse{
		Events:     events,
		TotalCount: total,
	}, queryStart)
}

// Event returns a single feedback event by id.
//
//	@Summary		Get one feedback event
//	@Tags			Admin
//	@Produce		json
//	@Param			id	path	string	true	"Event identifier"
//	@Success		200	{object}	models.APIResponse{data=models.FeedbackEvent}	"Event retrieved"
//	@Failure		404	{object}	models.APIResponse	"Event not found"
//	@Security		BearerAuth
//	@Router			/admin/events/{id} [get]
func (h *Handler) Event(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	eventID := chi.URLParam(r, "id")
	if eventID == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Missing event id", nil)
		return
	}

	queryStart := time.Now()
	event, err := h.db.GetEvent(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, database.ErrEventNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Event not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load event", err)
		return
	}

	respondSuccess(w, http.StatusOK, event, queryStart)
}

// EventStats returns event counts per lifecycle status.
//
//	@Summary		Event counts by status
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	models.APIResponse	"Counts retrieved"
//	@Security		BearerAuth
//	@Router			/admin/events/stats [get]
func (h *Handler) EventStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	queryStart := time.Now()
	counts, err := h.db.CountEventsByStatus(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count events", err)
		return
	}

	respondSuccess(w, http.StatusOK, counts, queryStart)
}

// ApplyRun triggers an apply batch on demand.
//
// The report is returned even for dry runs; a dry run settles nothing
// and leaves the profile untouched.
//
//	@Summary		Apply pending feedback
//	@Description	Drains pending events into the preference profile and returns the batch report
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body	models.ApplyRunRequest	false	"Batch options"
//	@Success		200	{object}	models.APIResponse{data=models.ApplyReport}	"Batch completed"
//	@Failure		400	{object}	models.APIResponse	"Invalid request"
//	@Failure		500	{object}	models.APIResponse	"Batch aborted"
//	@Security		BearerAuth
//	@Router			/admin/apply [post]
func (h *Handler) ApplyRun(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.ApplyRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}

	if req.RunID != "" && !models.IsValidRunID(req.RunID) {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid run_id", nil)
		return
	}

	queryStart := time.Now()
	report, err := h.engine.Apply(r.Context(), apply.Request{
		RunID:     req.RunID,
		DryRun:    req.DryRun,
		Trigger:   apply.TriggerAdmin,
		Source:    h.db,
		Manifests: h.manifests,
		Profile:   h.profileStore,
	})
	if err != nil {
		// A partial report still reaches the operator via logs; the API
		// answer stays a plain error so scripts do not mistake an
		// aborted batch for a settled one.
		if report != nil {
			logging.Warn().
				Int("applied", report.Applied).
				Int("rejected", report.Rejected).
				Int("skipped", report.Skipped).
				Msg("Apply batch aborted partway")
		}
		respondError(w, http.StatusInternalServerError, "APPLY_FAILED", "Apply batch failed", err)
		return
	}

	respondSuccess(w, http.StatusOK, report, queryStart)
}

// PublishRun stores the rendered report HTML for a run.
//
//	@Summary		Publish a run report
//	@Description	Stores the rendered report HTML, making it available at the public viewer
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			run_id	path	string	true	"Run identifier"
//	@Param			request	body	models.PublishRunRequest	true	"Report HTML"
//	@Success		201	{object}	models.APIResponse	"Run published"
//	@Failure		400	{object}	models.APIResponse	"Invalid request"
//	@Security		BearerAuth
//	@Router			/admin/runs/{run_id} [put]
func (h *Handler) PublishRun(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPut) {
		return
	}

	runID := chi.URLParam(r, "run_id")
	if !models.IsValidRunID(runID) {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid run_id", nil)
		return
	}

	var req models.PublishRunRequest
	body := http.MaxBytesReader(w, r.Body, maxPublishBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	run := &models.FeedbackRun{
		RunID:      runID,
		ReportHTML: req.ReportHTML,
	}
	if err := h.db.PublishRun(r.Context(), run); err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to publish run", err)
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"run_id":    runID,
		"published": true,
	}, time.Time{})
}

// Runs lists published run identifiers, newest first.
//
//	@Summary		List published runs
//	@Tags			Admin
//	@Produce		json
//	@Param			limit	query	int	false	"Maximum run ids to return"
//	@Success		200	{object}	models.APIResponse	"Run ids retrieved"
//	@Security		BearerAuth
//	@Router			/admin/runs [get]
func (h *Handler) Runs(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	limit := getIntParam(r, "limit", h.config.API.DefaultPageSize)
	if limit > h.config.API.MaxPageSize {
		limit = h.config.API.MaxPageSize
	}

	queryStart := time.Now()
	runIDs, err := h.db.ListRunIDs(r.Context(), limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list runs", err)
		return
	}

	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"run_ids": runIDs,
	}, queryStart)
}

// UploadManifest stores a run manifest document so later apply batches
// can resolve that run's item ids.
//
//	@Summary		Upload a run manifest
//	@Description	Stores the manifest document under the configured manifests directory
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			run_id	path	string	true	"Run identifier"
//	@Param			request	body	models.RunManifest	true	"Manifest document"
//	@Success		201	{object}	models.APIResponse	"Manifest stored"
//	@Failure		400	{object}	models.APIResponse	"Invalid manifest"
//	@Failure		503	{object}	models.APIResponse	"No manifests directory configured"
//	@Security		BearerAuth
//	@Router			/admin/manifests/{run_id} [put]
func (h *Handler) UploadManifest(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPut) {
		return
	}

	if h.manifests == nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_CONFIGURED", "No manifests directory configured", nil)
		return
	}

	runID := chi.URLParam(r, "run_id")
	if !models.IsValidRunID(runID) {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid run_id", nil)
		return
	}

	var m models.RunManifest
	body := http.MaxBytesReader(w, r.Body, maxPublishBodyBytes)
	if err := json.NewDecoder(body).Decode(&m); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if m.RunID != runID {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Manifest run_id does not match the path", nil)
		return
	}

	if err := h.manifests.Save(&m); err != nil {
		if errors.Is(err, manifest.ErrInvalidManifest) {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid manifest", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "Failed to store manifest", err)
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"run_id": runID,
		"items":  len(m.Papers),
	}, time.Time{})
}

// Links signs feedback links for the items of a run on behalf of the
// delivery pipeline.
//
//	@Summary		Sign feedback links
//	@Description	Issues positive and negative signed URLs for each item of a run
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body	models.LinksRequest	true	"Run items to sign"
//	@Success		200	{object}	models.APIResponse{data=models.LinksResponse}	"Links signed"
//	@Failure		400	{object}	models.APIResponse	"Invalid request"
//	@Security		BearerAuth
//	@Router			/admin/links [post]
func (h *Handler) Links(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.LinksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if h.config.Feedback.Secret == "" {
		respondError(w, http.StatusInternalServerError, "CONFIG_ERROR", "Link signing unavailable", ErrFeedbackSecretMissing)
		return
	}

	baseURL := req.BaseURL
	if baseURL == "" {
		baseURL = h.config.Feedback.BaseURL
	}
	if baseURL == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "No base_url in request or configuration", nil)
		return
	}

	now := time.Now()
	m := &models.RunManifest{
		Version:     models.ManifestVersion,
		RunID:       req.RunID,
		GeneratedAt: now,
	}
	for _, item := range req.Items {
		m.Papers = append(m.Papers, models.ManifestEntry{
			ItemID:          item.ItemID,
			Title:           item.Title,
			SemanticPaperID: item.SemanticPaperID,
		})
	}

	links, err := manifest.BuildFeedbackLinks(m, manifest.LinkOptions{
		Secret:   []byte(h.config.Feedback.Secret),
		BaseURL:  baseURL,
		TTL:      h.config.Feedback.TokenTTL,
		Reviewer: req.Reviewer,
		Now:      now,
	})
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Failed to sign links", err)
		return
	}

	resp := models.LinksResponse{
		RunID:     req.RunID,
		ExpiresAt: now.Add(h.config.Feedback.TokenTTL),
	}
	for _, link := range links {
		resp.Links = append(resp.Links, models.ItemLinks{
			ItemID:      link.ItemID,
			Title:       link.Title,
			PositiveURL: link.PositiveURL,
			NegativeURL: link.NegativeURL,
		})
	}

	respondSuccess(w, http.StatusOK, resp, time.Time{})
}

// MemoryStats describes the anti-repetition seen store.
//
//	@Summary		Seen store statistics
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	models.APIResponse{data=memory.Stats}	"Stats retrieved"
//	@Security		BearerAuth
//	@Router			/admin/memory/stats [get]
func (h *Handler) MemoryStats(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	queryStart := time.Now()
	stats, err := h.seen.Stats(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "MEMORY_ERROR", "Failed to read seen store", err)
		return
	}

	respondSuccess(w, http.StatusOK, stats, queryStart)
}

// MarkSeen records candidate ids in the anti-repetition memory.
//
//	@Summary		Mark candidates as seen
//	@Description	Records candidate ids so future retrieval rounds suppress them
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body	models.MarkSeenRequest	true	"Candidate ids"
//	@Success		200	{object}	models.APIResponse{data=models.MarkSeenResponse}	"Candidates recorded"
//	@Failure		400	{object}	models.APIResponse	"Invalid request"
//	@Security		BearerAuth
//	@Router			/admin/memory/mark [post]
func (h *Handler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.MarkSeenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	ids := make([]string, 0, len(req.CandidateIDs))
	for _, id := range req.CandidateIDs {
		if normalized := models.NormalizePaperID(id); normalized != "" {
			ids = append(ids, normalized)
		}
	}

	if err := h.seen.MarkSeen(r.Context(), ids, time.Now()); err != nil {
		respondError(w, http.StatusInternalServerError, "MEMORY_ERROR", "Failed to mark candidates", err)
		return
	}

	respondSuccess(w, http.StatusOK, models.MarkSeenResponse{Marked: len(ids)}, time.Time{})
}

// Suppressed answers one suppression check for the retrieval pipeline.
//
//	@Summary		Check candidate suppression
//	@Tags			Admin
//	@Produce		json
//	@Param			id	query	string	true	"Candidate id"
//	@Success		200	{object}	models.APIResponse{data=models.SuppressedResponse}	"Check completed"
//	@Failure		400	{object}	models.APIResponse	"Missing id"
//	@Security		BearerAuth
//	@Router			/admin/memory/suppressed [get]
func (h *Handler) Suppressed(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	id := models.NormalizePaperID(r.URL.Query().Get("id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Missing id parameter", nil)
		return
	}

	suppressed, err := h.seen.IsSuppressed(r.Context(), id, time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "MEMORY_ERROR", "Failed to check suppression", err)
		return
	}

	respondSuccess(w, http.StatusOK, models.SuppressedResponse{
		ID:         id,
		Suppressed: suppressed,
	}, time.Time{})
}

// PruneMemory removes expired entries from the seen store.
//
//	@Summary		Prune the seen store
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	models.APIResponse{data=models.PruneResponse}	"Prune completed"
//	@Security		BearerAuth
//	@Router			/admin/memory/prune [post]
func (h *Handler) PruneMemory(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	removed, err := h.seen.Prune(r.Context(), time.Now())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "MEMORY_ERROR", "Failed to prune seen store", err)
		return
	}

	respondSuccess(w, http.StatusOK, models.PruneResponse{Removed: removed}, time.Time{})
}

// Profile returns the current preference profile.
//
//	@Summary		Preference profile snapshot
//	@Tags			Admin
//	@Produce		json
//	@Success		200	{object}	models.APIResponse{data=models.ProfileResponse}	"Profile retrieved"
//	@Security		BearerAuth
//	@Router			/admin/profile [get]
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	prof, err := h.profileStore.Load()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "PROFILE_ERROR", "Failed to load profile", err)
		return
	}

	positive, negative := prof.Snapshot()
	respondSuccess(w, http.StatusOK, models.ProfileResponse{
		Positive:      positive,
		Negative:      negative,
		PositiveCount: len(positive),
		NegativeCount: len(negative),
	}, time.Time{})
}
