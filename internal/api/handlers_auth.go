// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lectern/internal/models"
)

// rememberMeTimeout extends token lifetime for remember-me logins.
const rememberMeTimeout = 30 * 24 * time.Hour

// requireMethod validates HTTP method and returns true if valid, false if error was sent
func requireMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return false
	}
	return true
}

// Login handles user authentication requests.
//
// Only meaningful in jwt mode: basic mode authenticates per request and
// none mode has nothing to mint. Credentials are checked against the
// configured bcrypt hash, never a plaintext password.
//
//	@Summary		Authenticate user
//	@Description	Authenticates with username and password, returns JWT token in body and HTTP-only cookie
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body	models.LoginRequest	true	"Login credentials"
//	@Success		200	{object}	models.APIResponse{data=models.LoginResponse}	"Authentication successful"
//	@Failure		400	{object}	models.APIResponse	"Invalid request body"
//	@Failure		401	{object}	models.APIResponse	"Invalid credentials"
//	@Failure		403	{object}	models.APIResponse	"Authentication disabled"
//	@Failure		500	{object}	models.APIResponse	"Internal server error"
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	req, err := h.parseLoginRequest(w, r)
	if err != nil {
		return
	}

	if !h.validateAuthConfiguration(w) {
		return
	}

	if !h.authenticateCredentials(w, r, req) {
		return
	}

	h.generateAndSendToken(w, r, req)
}

// parseLoginRequest parses and validates the login request body.
func (h *Handler) parseLoginRequest(w http.ResponseWriter, r *http.Request) (*models.LoginRequest, error) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err)
		return nil, err
	}

	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Username and password are required", nil)
		return nil, fmt.Errorf("missing credentials")
	}

	return &req, nil
}

// validateAuthConfiguration checks that JWT login is available.
func (h *Handler) validateAuthConfiguration(w http.ResponseWriter) bool {
	if h.config == nil || h.config.Security.AuthMode != "jwt" {
		respondError(w, http.StatusForbidden, "AUTH_DISABLED", "Authentication is disabled", ErrAuthModeNotJWT)
		return false
	}

	if h.jwtManager == nil || h.basicAuth == nil {
		respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "Authentication not initialized", nil)
		return false
	}

	return true
}

// authenticateCredentials verifies username and password against the
// configured bcrypt hash.
func (h *Handler) authenticateCredentials(w http.ResponseWriter, r *http.Request, req *models.LoginRequest) bool {
	if !h.basicAuth.ValidatePassword(req.Username, req.Password) {
		h.secLog.LogLoginFailure(req.Username, "jwt", clientIP(r), r.UserAgent(), "invalid credentials")
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return false
	}
	return true
}

// generateAndSendToken generates a JWT token and sends the response.
func (h *Handler) generateAndSendToken(w http.ResponseWriter, r *http.Request, req *models.LoginRequest) {
	const role = "admin"

	var (
		token     string
		expiresAt time.Time
		err       error
	)
	if req.RememberMe {
		token, expiresAt, err = h.jwtManager.GenerateTokenWithTimeout(req.Username, role, rememberMeTimeout)
	} else {
		token, expiresAt, err = h.jwtManager.GenerateToken(req.Username, role)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate authentication token", err)
		return
	}

	h.setAuthCookie(w, r, token, expiresAt)
	h.secLog.LogLoginSuccess(req.Username, "jwt", clientIP(r), r.UserAgent())

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			Username:  req.Username,
			Role:      role,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// setAuthCookie sets the authentication cookie.
func (h *Handler) setAuthCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}
