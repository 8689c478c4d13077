// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/lectern/docs" // Import generated swagger docs
	"github.com/tomtom215/lectern/internal/api"
	"github.com/tomtom215/lectern/internal/apply"
	"github.com/tomtom215/lectern/internal/auth"
	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/manifest"
	"github.com/tomtom215/lectern/internal/memory"
	"github.com/tomtom215/lectern/internal/profile"
	"github.com/tomtom215/lectern/internal/remote"
	"github.com/tomtom215/lectern/internal/supervisor"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Msg("Starting Lectern with supervisor tree")
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("memory_backend", cfg.Memory.Backend).
		Str("auth_mode", cfg.Security.AuthMode).
		Bool("apply_enabled", cfg.Apply.Enabled).
		Msg("Configuration loaded")

	// Initialize the event store
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event store")
		}
	}()
	logging.Info().Msg("Event store initialized successfully")

	// Open the anti-repetition seen store
	seen, err := memory.Open(memory.Options{
		Backend: cfg.Memory.Backend,
		Path:    cfg.Memory.Path,
		MaxIDs:  cfg.Memory.MaxIDs,
		TTLDays: cfg.Memory.TTLDays,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open seen store")
	}
	defer func() {
		if err := seen.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing seen store")
		}
	}()
	logging.Info().
		Str("backend", cfg.Memory.Backend).
		Int("max_ids", cfg.Memory.MaxIDs).
		Int("ttl_days", cfg.Memory.TTLDays).
		Msg("Seen store opened")

	profileStore := profile.NewStore(cfg.Profile.Path)
	manifests := manifest.NewDir(cfg.Manifests.Dir)

	jwtManager, basicAuthManager := setupAuth(cfg)

	middleware := auth.NewMiddleware(jwtManager, basicAuthManager, cfg.Security.AuthMode)

	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
		logging.Warn().Msg("This should only be used for local testing!")
	}
	warnWildcardCORS(cfg)

	engine := apply.NewEngine()
	handler := api.NewHandler(db, cfg, jwtManager, basicAuthManager, seen, profileStore, manifests, engine)
	router := api.NewRouter(handler, middleware)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.SetupChi(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer services
	if cfg.Apply.Enabled {
		scheduler := apply.NewScheduler(engine, cfg.Apply.Interval, cfg.Apply.BatchSize, db, manifests, profileStore)
		tree.AddDataService(scheduler)
		logging.Info().
			Dur("interval", cfg.Apply.Interval).
			Int("batch_size", cfg.Apply.BatchSize).
			Msg("Apply scheduler added to supervisor tree")
	} else {
		logging.Info().Msg("Background apply disabled - pending events settle via admin API or CLI")
	}

	if cfg.RemoteEnabled() {
		relay := remote.NewClient(&cfg.Remote)
		if err := relay.Ping(ctx); err != nil {
			logging.Warn().Err(err).Msg("Failed to reach feedback relay (will retry)")
		}
		relayScheduler := apply.NewScheduler(engine, cfg.Apply.Interval, cfg.Apply.BatchSize, relay, manifests, profileStore)
		tree.AddDataService(relayScheduler)
		logging.Info().Str("url", cfg.Remote.URL).Msg("Remote relay scheduler added to supervisor tree")
	}

	if cfg.Memory.TTLDays > 0 {
		tree.AddDataService(memory.NewJanitor(seen, cfg.Memory.JanitorInterval))
		logging.Info().
			Dur("interval", cfg.Memory.JanitorInterval).
			Msg("Memory janitor added to supervisor tree")
	} else {
		logging.Info().Msg("Seen-store expiry disabled (ttl_days=0) - janitor not started")
	}

	// API layer services
	tree.AddAPIService(supervisor.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}

// setupAuth builds the auth managers for the configured mode. Modes the
// config did not select stay nil.
func setupAuth(cfg *config.Config) (*auth.JWTManager, *auth.BasicAuthManager) {
	var jwtManager *auth.JWTManager
	var basicAuthManager *auth.BasicAuthManager

	switch cfg.Security.AuthMode {
	case "jwt":
		var err error
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Msg("JWT authentication enabled")

	case "basic":
		var err error
		basicAuthManager, err = auth.NewBasicAuthManager(
			cfg.Security.AdminUsername,
			cfg.Security.AdminPasswordHash,
		)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize Basic Auth manager")
		}
		logging.Info().Msg("Basic authentication enabled")
		logging.Warn().Msg("Basic Auth transmits credentials with each request. Use HTTPS in production!")

	case "none":
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (auth_mode=none)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  The admin API is publicly accessible without authentication!")
		logging.Warn().Msg("  This mode should ONLY be used for:")
		logging.Warn().Msg("    - Local development")
		logging.Warn().Msg("    - Completely isolated private networks")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  NEVER use auth_mode=none on public networks!")
		logging.Warn().Msg("============================================================")
	}

	return jwtManager, basicAuthManager
}

// warnWildcardCORS logs a loud notice when the admin API is protected by
// authentication but CORS allows any origin.
func warnWildcardCORS(cfg *config.Config) {
	if cfg.AuthDisabled() {
		return
	}
	for _, origin := range cfg.Security.CORSOrigins {
		if origin == "*" {
			logging.Warn().Msg("============================================================")
			logging.Warn().Msg("  SECURITY WARNING: CORS allows any origin (cors_origins=*)")
			logging.Warn().Msg("  ")
			logging.Warn().Msg("  With authentication enabled this lets malicious sites make")
			logging.Warn().Msg("  credentialed cross-origin requests to the admin API.")
			logging.Warn().Msg("  ")
			logging.Warn().Msg("  RECOMMENDED: set explicit origins in production:")
			logging.Warn().Msg("    CORS_ORIGINS=https://lectern.example.com")
			logging.Warn().Msg("============================================================")
			return
		}
	}
}
