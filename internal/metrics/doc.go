// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

/*
Package metrics provides Prometheus instrumentation for Lectern.

Metrics are registered on the default registry via promauto and exposed by
the server's /metrics endpoint. Recording helpers keep call sites terse and
the label vocabularies closed.

# Metric Groups

Feedback ingestion:
  - feedback_accepted_total{label, source}: events recorded by the public endpoint
  - feedback_rejected_total{reason}: rejected clicks by failure reason
    (malformed_token, signature_mismatch, token_expired, invalid_label,
    invalid_claim, source_not_allowed, store_error)

Apply engine:
  - apply_runs_total{trigger, outcome}: batch apply executions
  - apply_run_duration_seconds: batch duration histogram
  - apply_events_total{outcome}: per-event settlement (applied, rejected, skipped)
  - apply_last_success_timestamp: unix time of the last clean batch

Preference profile:
  - profile_positive_ids / profile_negative_ids: current set sizes

Anti-repetition memory:
  - memory_entries: current seen-store size
  - memory_evictions_total{reason}: entries removed (cap, ttl)
  - memory_suppression_checks_total{result}: lookup outcomes (hit, miss)
  - memory_marked_seen_total: ids recorded

HTTP API:
  - api_requests_total{method, endpoint, status_code}
  - api_request_duration_seconds{method, endpoint}
  - api_active_requests
  - api_rate_limit_hits_total{endpoint}

Database:
  - duckdb_query_duration_seconds{operation, table}
  - duckdb_query_errors_total{operation, table, error_type}

Remote relay:
  - remote_pull_requests_total{result}: relay fetches (success, failure, rejected)
  - remote_pull_duration_seconds
  - remote_events_pulled_total
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_state_transitions_total{name, from_state, to_state}

System:
  - app_info{version, go_version}
  - app_uptime_seconds

# Usage

	start := time.Now()
	rows, err := db.Query(ctx, query)
	metrics.RecordDBQuery("SELECT", "feedback_events", time.Since(start), err)
*/
package metrics
