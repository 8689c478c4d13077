// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/metrics"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/token"
)

// Feedback handles a signed feedback link click.
//
// The token in the t parameter is the only credential. Verification runs
// before any state is touched; a rejected click leaves no trace except a
// security log line and a metrics increment. An accepted click inserts
// exactly one pending event, never applies it inline.
//
//	@Summary		Record feedback from a signed link
//	@Description	Verifies the signed token and records one pending feedback event
//	@Tags			public
//	@Produce		plain
//	@Param			t	query	string	true	"Signed feedback token"
//	@Param			src	query	string	false	"Event source override (web_viewer)"
//	@Success		200	{string}	string	"feedback recorded"
//	@Failure		400	{string}	string	"token rejected"
//	@Failure		500	{string}	string	"feedback could not be recorded"
//	@Router			/feedback [get]
func (h *Handler) Feedback(w http.ResponseWriter, r *http.Request) {
	tok := r.URL.Query().Get("t")
	if tok == "" {
		h.rejectFeedback(w, r, "", http.StatusBadRequest, reasonInvalidTokenFormat, metrics.ReasonMalformedToken)
		return
	}

	allowed := models.DecisiveLabels
	if h.config.Feedback.AllowUndecided {
		allowed = models.ValidLabels
	}

	claim, err := token.VerifyWithLabels(tok, []byte(h.config.Feedback.Secret), allowed, time.Now())
	if err != nil {
		status, reason, metric := classifyTokenError(err)
		h.rejectFeedback(w, r, tok, status, reason, metric)
		return
	}

	source := h.feedbackSource(r)

	event := &models.FeedbackEvent{
		RunID:  claim.RunID,
		ItemID: claim.ItemID,
		Label:  claim.Label,
		Source: source,
	}
	if claim.Reviewer != "" {
		reviewer := claim.Reviewer
		event.Reviewer = &reviewer
	}
	if claim.SemanticPaperID != "" {
		resolved := models.NormalizePaperID(claim.SemanticPaperID)
		event.ResolvedSemanticPaperID = &resolved
	}

	if err := h.db.InsertEvent(r.Context(), event); err != nil {
		logging.Error().Err(err).
			Str("run_id", sanitizeLogValue(claim.RunID)).
			Str("item_id", sanitizeLogValue(claim.ItemID)).
			Msg("Failed to persist feedback event")
		metrics.RecordFeedbackRejected(metrics.ReasonStoreError)
		respondText(w, http.StatusInternalServerError, "feedback could not be recorded, please retry")
		return
	}

	metrics.RecordFeedbackAccepted(string(claim.Label), string(source))
	logging.Info().
		Str("event_id", event.EventID).
		Str("run_id", sanitizeLogValue(claim.RunID)).
		Str("item_id", sanitizeLogValue(claim.ItemID)).
		Str("label", string(claim.Label)).
		Str("source", string(source)).
		Msg("Feedback recorded")

	respondText(w, http.StatusOK, fmt.Sprintf(
		"feedback recorded: %s on item %s of run %s", claim.Label, claim.ItemID, claim.RunID))
}

// rejectFeedback answers a bad click and records it. The response body is
// one of the fixed plain-text reasons; the security log keeps the detail.
func (h *Handler) rejectFeedback(w http.ResponseWriter, r *http.Request, tok string, status int, reason, metric string) {
	h.secLog.LogTokenRejected(tok, reason, clientIP(r))
	metrics.RecordFeedbackRejected(metric)
	respondText(w, status, reason)
}

// classifyTokenError maps a token verification error to the response
// status, the fixed plain-text reason, and the metrics reason label.
func classifyTokenError(err error) (int, string, string) {
	switch {
	case errors.Is(err, token.ErrMalformedToken):
		return http.StatusBadRequest, reasonInvalidTokenFormat, metrics.ReasonMalformedToken
	case errors.Is(err, token.ErrSignatureMismatch):
		return http.StatusBadRequest, reasonInvalidSignature, metrics.ReasonSignatureMismatch
	case errors.Is(err, token.ErrTokenExpired):
		return http.StatusBadRequest, reasonTokenExpired, metrics.ReasonTokenExpired
	case errors.Is(err, token.ErrLabelNotAllowed):
		return http.StatusBadRequest, reasonInvalidLabel, metrics.ReasonInvalidLabel
	default:
		return http.StatusBadRequest, reasonMissingClaimFields, metrics.ReasonInvalidClaim
	}
}

// feedbackSource resolves the src query parameter against the configured
// allow-list. Anything unknown or disallowed falls back to email_link so
// a tampered parameter can never invent a source value.
func (h *Handler) feedbackSource(r *http.Request) models.Source {
	src := models.Source(r.URL.Query().Get("src"))
	if src == "" || !models.IsValidSource(src) {
		return models.SourceEmailLink
	}
	for _, allowed := range h.config.Feedback.AllowedSources {
		if string(src) == allowed {
			return src
		}
	}
	return models.SourceEmailLink
}

// Run serves the published report HTML for a run.
//
//	@Summary		View a published run report
//	@Description	Serves the rendered report HTML for a published recommendation run
//	@Tags			public
//	@Produce		html
//	@Param			run_id	query	string	true	"Run identifier"
//	@Success		200	{string}	string	"report HTML"
//	@Failure		404	{string}	string	"run not found"
//	@Router			/run [get]
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" || !models.IsValidRunID(runID) {
		respondText(w, http.StatusBadRequest, "invalid run_id")
		return
	}

	run, err := h.db.GetRun(r.Context(), runID)
	if err != nil {
		if errors.Is(err, database.ErrRunNotFound) {
			respondText(w, http.StatusNotFound, "run not found")
			return
		}
		logging.Error().Err(err).Str("run_id", sanitizeLogValue(runID)).Msg("Failed to load run")
		respondText(w, http.StatusInternalServerError, "failed to load run")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; img-src *; style-src 'unsafe-inline'")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(run.ReportHTML)); err != nil {
		logging.Error().Err(err).Msg("Failed to write run report")
	}
}
