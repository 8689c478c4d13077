// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package auth provides admin API authentication.
//
// The admin surface (event inspection, apply triggers, run publishing)
// supports three modes selected by AUTH_MODE:
//
//   - jwt: bearer tokens minted by POST /api/v1/auth/login, HS256-signed
//   - basic: HTTP Basic against a single bcrypt-hashed credential
//   - none: no authentication (development only; refused in production)
//
// The public feedback endpoint is deliberately outside this package's
// scope: its only credential is the signed token itself, verified by
// internal/token.
package auth
