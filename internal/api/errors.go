// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package api provides HTTP handlers for the Lectern application.
//
// errors.go - Common API error definitions
package api

import "errors"

// Common API errors
var (
	// ErrAuthModeNotJWT indicates a login attempt while the server runs
	// in basic or none mode; there is no token to mint.
	ErrAuthModeNotJWT = errors.New("login requires AUTH_MODE=jwt")

	// ErrFeedbackSecretMissing indicates link signing was requested but
	// no signing secret is configured.
	ErrFeedbackSecretMissing = errors.New("feedback secret is not configured")
)

// Plain-text rejection reasons for the public feedback endpoint. The
// strings are part of the endpoint contract: scripts and humans both
// read them, so they never change casing or wording casually.
const (
	reasonInvalidTokenFormat = "invalid token format"
	reasonInvalidSignature   = "invalid signature"
	reasonTokenExpired       = "token expired"
	reasonInvalidLabel       = "invalid label"
	reasonMissingClaimFields = "missing run_id/item_id"
)
