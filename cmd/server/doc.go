// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package main is the entry point for the Lectern server application.

Lectern is the feedback and memory half of a recurring paper
recommendation pipeline. It mints signed one-click feedback links for
digest emails, records the clicks as feedback events, applies settled
events to a preference profile, and keeps an anti-repetition seen store
so the pipeline never recommends the same paper twice within its
suppression window.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("lectern")
	├── DataSupervisor ("data-layer")
	│   ├── apply scheduler (optional, apply.enabled)
	│   ├── relay scheduler (optional, remote.url)
	│   └── memory janitor (optional, memory.ttl_days > 0)
	└── APISupervisor ("api-layer")
	    └── HTTP server

Component initialization order:

 1. Configuration: Koanf v2 with defaults, optional YAML file, environment
 2. Event store: DuckDB table holding the feedback event queue + audit log
 3. Seen store: memory, file, or BadgerDB backend per memory.backend
 4. Profile and manifests: JSON files under their configured paths
 5. Authentication: JWT, Basic Auth, or no-auth mode
 6. HTTP server: REST API with Swagger documentation

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest
priority wins): environment variables, config file (config.yaml),
built-in defaults.

Required for feedback links:
  - FEEDBACK_SECRET: HMAC-SHA256 signing key for token links
  - FEEDBACK_BASE_URL: externally reachable prefix for generated links

For JWT authentication:
  - JWT_SECRET: 32+ character secret for token signing
  - ADMIN_USERNAME: admin username
  - ADMIN_PASSWORD_HASH: bcrypt hash of the admin password

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:
  - Stops accepting new connections
  - Waits for in-flight requests to complete (10s timeout)
  - Settles the running apply batch, then closes the stores

# Example Usage

Development, no auth:

	export FEEDBACK_SECRET=$(openssl rand -base64 32)
	export AUTH_MODE=none
	export MEMORY_BACKEND=memory
	./lectern-server

Production with JWT and background apply:

	export FEEDBACK_SECRET=$(openssl rand -base64 32)
	export FEEDBACK_BASE_URL=https://lectern.example.com
	export JWT_SECRET=$(openssl rand -base64 32)
	export ADMIN_USERNAME=admin
	export ADMIN_PASSWORD_HASH='$2a$10$...'
	export AUTH_MODE=jwt
	export APPLY_ENABLED=true
	export ENVIRONMENT=production
	./lectern-server
*/
package main
