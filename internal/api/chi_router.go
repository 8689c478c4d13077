// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/lectern/internal/auth"
	"github.com/tomtom215/lectern/internal/middleware"
)

// Router wires handlers, authentication, and the Chi middleware stack.
type Router struct {
	handler       *Handler
	middleware    *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from the handler and its middleware.
func NewRouter(handler *Handler, authMiddleware *auth.Middleware) *Router {
	cfg := handler.config
	return &Router{
		handler:    handler,
		middleware: authMiddleware,
		chiMiddleware: NewChiMiddlewareFromSecurity(
			cfg.Security.CORSOrigins,
			cfg.Security.RateLimitReqs,
			cfg.Security.RateLimitWindow,
			cfg.Security.RateLimitDisabled,
		),
	}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(RequestIDWithLogging())      // Add X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	// ========================
	// Public Endpoints
	// ========================
	// The token in the URL is the only credential. Rate limits here are
	// the brute-force backstop behind the HMAC.
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitFeedback))
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Get("/feedback", router.handler.Feedback)
	})

	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitViewer))
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Get("/run", router.handler.Run)
	})

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting: frequent monitoring probes are expected.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.Get("/", router.handler.Health)
	})

	// ========================
	// Authentication Endpoints
	// ========================
	// Strict rate limiting for auth endpoints (brute force prevention)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitCustom(RateLimitAuth))
		r.Use(APISecurityHeaders())

		// Login has strictest rate limiting (5 attempts per 5 minutes)
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitLogin)).Post("/login", router.handler.Login)
	})

	// ========================
	// Admin API Endpoints
	// ========================
	// Everything here requires authentication per AUTH_MODE.
	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.middleware.Authenticate))

		// Event audit log
		r.Get("/events", router.handler.Events)
		r.Get("/events/stats", router.handler.EventStats)
		r.Get("/events/{id}", router.handler.Event)

		// Apply engine and profile
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitWrite)).Post("/apply", router.handler.ApplyRun)
		r.Get("/profile", router.handler.Profile)

		// Published runs and link signing
		r.Get("/runs", router.handler.Runs)
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitWrite)).Put("/runs/{run_id}", router.handler.PublishRun)
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitWrite)).Put("/manifests/{run_id}", router.handler.UploadManifest)
		r.With(router.chiMiddleware.RateLimitCustom(RateLimitWrite)).Post("/links", router.handler.Links)

		// Anti-repetition memory
		r.Route("/memory", func(r chi.Router) {
			r.Get("/stats", router.handler.MemoryStats)
			r.Get("/suppressed", router.handler.Suppressed)
			r.Post("/mark", router.handler.MarkSeen)
			r.Post("/prune", router.handler.PruneMemory)
		})
	})

	// ========================
	// Observability
	// ========================
	if router.handler.config.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
