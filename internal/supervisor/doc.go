// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package supervisor provides process supervision for Lectern using suture v4.

It implements a small hierarchical supervisor tree with Erlang/OTP-style
restart semantics for the long-running pieces of the service:

	RootSupervisor ("lectern")
	├── DataSupervisor ("data-layer")
	│   ├── apply.Scheduler (background feedback application)
	│   └── memory.Janitor (seen-store TTL pruning)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

The two layers isolate failures: a crashing apply loop is restarted
inside the data layer with exponential backoff while the HTTP server
keeps recording feedback clicks, and vice versa.

Services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Returning nil stops the service for good; returning an error triggers a
restart subject to the failure threshold, decay, and backoff in
TreeConfig. Context cancellation is the shutdown signal and services
are expected to return promptly.

Supervisor events (starts, failures, backoff) are logged through the
sutureslog adapter; pass logging.NewSlogLogger() to route them into the
zerolog pipeline.

DuckDB is intentionally not supervised. It is an embedded library whose
connections the database package manages; a crash there needs a process
restart anyway.

If shutdown hangs, UnstoppedServiceReport names the services that did
not stop within the timeout.
*/
package supervisor
