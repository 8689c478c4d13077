// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package config provides centralized configuration management for Lectern.

This package handles loading, validation, and parsing of configuration for all
application components. It ensures consistent configuration across the server
and CLI and provides sensible defaults for optional settings.

# Configuration Sources

Configuration is layered, later sources overriding earlier ones:

  - Built-in defaults (struct literals)
  - Optional YAML config file (CONFIG_PATH or a default search path)
  - Environment variables (highest priority)

# Configuration Structure

The package organizes configuration into logical groups:

  - ServerConfig: HTTP server settings (host, port, timeout, environment)
  - DatabaseConfig: DuckDB connection and performance tuning
  - FeedbackConfig: signed feedback link settings (secret, TTL, base URL)
  - MemoryConfig: anti-repetition seen store (backend, cap, TTL, janitor)
  - ProfileConfig: preference profile file location
  - ManifestsConfig: run manifest directory
  - ApplyConfig: background apply scheduler settings
  - RemoteConfig: remote feedback relay (rate limit, circuit breaker)
  - APIConfig: admin API pagination limits
  - SecurityConfig: authentication, rate limiting, CORS
  - MetricsConfig: Prometheus metrics exposure
  - LoggingConfig: log level and format

# Environment Variables

Variables use flat names mapped to config sections. Every variable may also be
written with a LECTERN_ prefix (LECTERN_FEEDBACK_SECRET == FEEDBACK_SECRET) to
avoid collisions when Lectern shares an environment with other services.

HTTP Server (ServerConfig):
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 8080)
  - HTTP_TIMEOUT: Read/write timeout (default: 30s)
  - ENVIRONMENT: development or production (default: development)

Database (DatabaseConfig):
  - DUCKDB_PATH: Database file path (default: /data/lectern.duckdb)
  - DUCKDB_MAX_MEMORY: Memory limit (default: 2GB)
  - DUCKDB_THREADS: Thread count (default: 0 = CPU count)

Feedback links (FeedbackConfig):
  - FEEDBACK_SECRET: HMAC signing secret (required for server mode)
  - FEEDBACK_TOKEN_TTL: Link validity window (default: 1080h = 45 days)
  - FEEDBACK_BASE_URL: Public base URL embedded in links
  - FEEDBACK_ALLOWED_SOURCES: Comma-separated accepted src values
  - FEEDBACK_ALLOW_UNDECIDED: Accept undecided labels on links (default: false)

Anti-repetition memory (MemoryConfig):
  - MEMORY_BACKEND: memory, file, or badger (default: badger)
  - MEMORY_PATH: Store path (file or badger directory)
  - MEMORY_MAX_IDS: Entry cap (default: 5000)
  - MEMORY_TTL_DAYS: Suppression window in days, 0 disables (default: 120)
  - MEMORY_JANITOR_INTERVAL: Prune cadence (default: 1h)

Preference profile (ProfileConfig):
  - PROFILE_PATH: Profile JSON path (default: /data/profile.json)

Manifests (ManifestsConfig):
  - MANIFESTS_DIR: Run manifest directory (default: /data/manifests)

Apply scheduler (ApplyConfig):
  - APPLY_ENABLED: Enable periodic apply (default: false)
  - APPLY_INTERVAL: Scheduler cadence (default: 5m)
  - APPLY_BATCH_SIZE: Max pending events per cycle (default: 500)

Remote relay (RemoteConfig):
  - REMOTE_URL: Relay base URL (empty disables)
  - REMOTE_API_KEY: Relay bearer credential
  - REMOTE_TIMEOUT: Per-request timeout (default: 30s)
  - REMOTE_RATE_LIMIT_RPS / REMOTE_RATE_LIMIT_BURST: Client-side limiter
  - REMOTE_BREAKER_MAX_FAILURES / REMOTE_BREAKER_OPEN_TIMEOUT: Circuit breaker

Security (SecurityConfig):
  - AUTH_MODE: Authentication mode (none, jwt, basic; default: none)
  - JWT_SECRET: JWT signing secret (min 32 chars, required for jwt mode)
  - SESSION_TIMEOUT: JWT expiry (default: 24h)
  - ADMIN_USERNAME: Admin login username (required for jwt/basic)
  - ADMIN_PASSWORD_HASH: bcrypt hash of the admin password
  - RATE_LIMIT_REQUESTS / RATE_LIMIT_WINDOW: Admin API rate limit
  - DISABLE_RATE_LIMIT: Disable rate limiting entirely (default: false)
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - TRUSTED_PROXIES: Comma-separated trusted proxy IPs

Metrics (MetricsConfig):
  - METRICS_ENABLED: Enable Prometheus endpoint (default: true)

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file:line (default: false)

# Usage

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

Load returns an error describing the first invalid setting; errors name the
environment variable to fix.
*/
package config
