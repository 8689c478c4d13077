// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons for feedback_rejected_total. The vocabulary is closed
// so dashboards never see unbounded label values.
const (
	ReasonMalformedToken    = "malformed_token"
	ReasonSignatureMismatch = "signature_mismatch"
	ReasonTokenExpired      = "token_expired"
	ReasonInvalidLabel      = "invalid_label"
	ReasonInvalidClaim      = "invalid_claim"
	ReasonSourceNotAllowed  = "source_not_allowed"
	ReasonStoreError        = "store_error"
)

var (
	// Feedback Ingestion Metrics
	FeedbackAccepted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_accepted_total",
			Help: "Total number of feedback events accepted by the public endpoint",
		},
		[]string{"label", "source"},
	)

	FeedbackRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_rejected_total",
			Help: "Total number of feedback clicks rejected, by reason",
		},
		[]string{"reason"},
	)

	// Apply Engine Metrics
	ApplyRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apply_runs_total",
			Help: "Total number of apply batch executions",
		},
		[]string{"trigger", "outcome"}, // trigger: "scheduled", "api", "cli"; outcome: "success", "error"
	)

	ApplyRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "apply_run_duration_seconds",
			Help:    "Duration of apply batch executions in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
		},
	)

	ApplyEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apply_events_total",
			Help: "Total number of feedback events settled by the apply engine",
		},
		[]string{"outcome"}, // "applied", "rejected", "skipped"
	)

	ApplyLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "apply_last_success_timestamp",
			Help: "Unix timestamp of the last apply batch that completed without a store failure",
		},
	)

	// Preference Profile Metrics
	ProfilePositiveIDs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "profile_positive_ids",
			Help: "Current number of positive seed identifiers in the profile",
		},
	)

	ProfileNegativeIDs = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "profile_negative_ids",
			Help: "Current number of negative seed identifiers in the profile",
		},
	)

	// Anti-Repetition Memory Metrics
	MemoryEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "memory_entries",
			Help: "Current number of entries in the anti-repetition seen store",
		},
	)

	MemoryEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_evictions_total",
			Help: "Total number of seen-store entries removed",
		},
		[]string{"reason"}, // "cap", "ttl"
	)

	MemorySuppressionChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_suppression_checks_total",
			Help: "Total number of suppression lookups",
		},
		[]string{"result"}, // "hit", "miss"
	)

	MemoryMarkedSeen = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "memory_marked_seen_total",
			Help: "Total number of candidate ids recorded as seen",
		},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table", "error_type"},
	)

	// Remote Relay Metrics
	RemotePulls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "remote_pull_requests_total",
			Help: "Total number of relay pull requests",
		},
		[]string{"result"}, // "success", "failure", "rejected"
	)

	RemotePullDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "remote_pull_duration_seconds",
			Help:    "Duration of relay pull requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RemoteEventsPulled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "remote_events_pulled_total",
			Help: "Total number of feedback events fetched from the relay",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordFeedbackAccepted records an accepted feedback event.
func RecordFeedbackAccepted(label, source string) {
	FeedbackAccepted.WithLabelValues(label, source).Inc()
}

// RecordFeedbackRejected records a rejected feedback click. reason must be
// one of the Reason constants.
func RecordFeedbackRejected(reason string) {
	FeedbackRejected.WithLabelValues(reason).Inc()
}

// RecordApplyRun records one apply batch execution.
func RecordApplyRun(trigger string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	ApplyRuns.WithLabelValues(trigger, outcome).Inc()
	ApplyRunDuration.Observe(duration.Seconds())
	if err == nil {
		ApplyLastSuccess.SetToCurrentTime()
	}
}

// RecordApplyEvent records the settlement of a single feedback event.
func RecordApplyEvent(outcome string) {
	ApplyEvents.WithLabelValues(outcome).Inc()
}

// UpdateProfileSizes publishes the current profile set sizes.
func UpdateProfileSizes(positive, negative int) {
	ProfilePositiveIDs.Set(float64(positive))
	ProfileNegativeIDs.Set(float64(negative))
}

// UpdateMemoryEntries publishes the current seen-store size.
func UpdateMemoryEntries(entries int) {
	MemoryEntries.Set(float64(entries))
}

// RecordMemoryEviction records seen-store entries removed for a reason
// ("cap" or "ttl").
func RecordMemoryEviction(reason string, count int) {
	if count <= 0 {
		return
	}
	MemoryEvictions.WithLabelValues(reason).Add(float64(count))
}

// RecordSuppressionCheck records one suppression lookup.
func RecordSuppressionCheck(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	MemorySuppressionChecks.WithLabelValues(result).Inc()
}

// RecordMarkedSeen records ids written to the seen store.
func RecordMarkedSeen(count int) {
	if count <= 0 {
		return
	}
	MemoryMarkedSeen.Add(float64(count))
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRateLimitHit records a rate limit rejection for an endpoint group.
func RecordRateLimitHit(endpoint string) {
	APIRateLimitHits.WithLabelValues(endpoint).Inc()
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		errorType := err.Error()
		// Truncate long error messages to keep label cardinality sane
		if len(errorType) > 50 {
			errorType = errorType[:50]
		}
		DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()
	}
}

// RecordRemotePull records one relay pull attempt. result is "success",
// "failure", or "rejected" when the breaker is open.
func RecordRemotePull(result string, duration time.Duration, events int) {
	RemotePulls.WithLabelValues(result).Inc()
	RemotePullDuration.Observe(duration.Seconds())
	if events > 0 {
		RemoteEventsPulled.Add(float64(events))
	}
}

// SetCircuitBreakerState publishes a breaker state change and counts the
// transition.
func SetCircuitBreakerState(name string, from, to string, state float64) {
	CircuitBreakerState.WithLabelValues(name).Set(state)
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
}
