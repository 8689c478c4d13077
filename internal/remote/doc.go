// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package remote pulls queued feedback events from a hosted ingest relay.
//
// Deployments that cannot expose the local server publicly run a small
// relay (the original deployment used an edge worker) that accepts signed
// feedback clicks and queues them. This package is the pull side: it pages
// through the relay's pending events and settles them back after the apply
// engine has drained them, so the relay's queue converges with the local
// profile.
//
// The client wraps every relay call in a circuit breaker and a client-side
// rate limiter. The breaker keeps a flapping relay from stalling apply
// batches; the limiter keeps scheduled pulls polite toward free-tier
// hosting.
package remote
