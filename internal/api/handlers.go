// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"time"

	"github.com/tomtom215/lectern/internal/apply"
	"github.com/tomtom215/lectern/internal/auth"
	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/manifest"
	"github.com/tomtom215/lectern/internal/memory"
	"github.com/tomtom215/lectern/internal/profile"
)

// Handler contains dependencies for API handlers.
type Handler struct {
	db           *database.DB
	config       *config.Config
	jwtManager   *auth.JWTManager
	basicAuth    *auth.BasicAuthManager
	seen         memory.SeenStore
	profileStore *profile.Store
	manifests    *manifest.Dir
	engine       *apply.Engine
	secLog       *logging.SecurityLogger
	startTime    time.Time
}

// NewHandler creates the API handler with all required dependencies.
//
// The auth managers may be nil when the corresponding mode is not
// configured; the seen store and database must not be. The manifests
// directory is optional: without it, apply batches only resolve events
// that carried their own corpus id.
func NewHandler(db *database.DB, cfg *config.Config, jwtManager *auth.JWTManager, basicAuth *auth.BasicAuthManager, seen memory.SeenStore, profileStore *profile.Store, manifests *manifest.Dir, engine *apply.Engine) *Handler {
	return &Handler{
		db:           db,
		config:       cfg,
		jwtManager:   jwtManager,
		basicAuth:    basicAuth,
		seen:         seen,
		profileStore: profileStore,
		manifests:    manifests,
		engine:       engine,
		secLog:       logging.NewSecurityLogger(),
		startTime:    time.Now(),
	}
}
