// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/logging"
	"github.com/tomtom215/lectern/internal/metrics"
	"github.com/tomtom215/lectern/internal/models"
)

// Sentinel errors returned by the relay client.
var (
	// ErrRelayUnavailable indicates the circuit breaker is open or the
	// relay rejected the connection.
	ErrRelayUnavailable = errors.New("relay unavailable")

	// ErrRelayStatus indicates the relay answered with a non-2xx status.
	ErrRelayStatus = errors.New("unexpected relay status")
)

// maxResponseBytes caps relay response bodies. A page of events is a few
// hundred KB at most; anything larger is a misbehaving relay.
const maxResponseBytes = 4 << 20

// breakerName labels the relay breaker on metrics.
const breakerName = "feedback-relay"

// eventsPage is the relay's pending-events response body.
type eventsPage struct {
	Events []models.FeedbackEvent `json:"events"`
}

// settleRequest is the body of a settle call.
type settleRequest struct {
	Status                  models.EventStatus `json:"status"`
	ResolvedSemanticPaperID *string            `json:"resolved_semantic_paper_id,omitempty"`
	Error                   *string            `json:"error,omitempty"`
	AppliedAt               time.Time          `json:"applied_at"`
}

// Client pulls pending feedback events from a hosted relay and settles
// them after apply. It satisfies the apply engine's event source
// contract.
//
// All relay calls pass through a shared circuit breaker and a
// client-side token-bucket rate limiter, in that order: a rejected
// breaker call never consumes a rate token.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker[any]
	limiter *rate.Limiter
}

// NewClient builds a relay client from configuration. The URL must have
// been validated by config.Validate.
func NewClient(cfg *config.RemoteConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	rps := cfg.RateLimitRPS
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 5
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	openTimeout := cfg.BreakerOpenTimeout
	if openTimeout <= 0 {
		openTimeout = 2 * time.Minute
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)
			logging.Info().
				Str("breaker", name).
				Str("from", fromStr).
				Str("to", toStr).
				Msg("Relay circuit breaker state transition")
			metrics.SetCircuitBreakerState(name, fromStr, toStr, stateToFloat(to))
		},
	})

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		cb:      cb,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// PendingEvents fetches the relay's pending queue, optionally narrowed
// to one run. Returned events are stamped with the remote source so the
// audit trail records where they entered.
func (c *Client) PendingEvents(ctx context.Context, runID string) ([]models.FeedbackEvent, error) {
	endpoint := c.baseURL + "/api/v1/events?status=pending"
	if runID != "" {
		endpoint += "&run_id=" + url.QueryEscape(runID)
	}

	start := time.Now()
	result, err := c.execute(ctx, func() (any, error) {
		body, err := c.get(ctx, endpoint)
		if err != nil {
			return nil, err
		}
		var page eventsPage
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("failed to decode relay events: %w", err)
		}
		return &page, nil
	})

	page, err := castResult[eventsPage](result, err)
	if err != nil {
		metrics.RecordRemotePull(pullResult(err), time.Since(start), 0)
		return nil, err
	}

	events := page.Events
	for i := range events {
		if events[i].Source == "" {
			events[i].Source = models.SourceRemote
		}
		if events[i].Status == "" {
			events[i].Status = models.StatusPending
		}
	}

	metrics.RecordRemotePull("success", time.Since(start), len(events))
	return events, nil
}

// SettleEvent reports a terminal outcome back to the relay so the event
// leaves its pending queue. The relay treats settling an already-settled
// event as a conflict, which maps to the not-pending sentinel on the
// local side via the apply engine's skip path.
func (c *Client) SettleEvent(ctx context.Context, eventID string, next models.EventStatus, resolvedID, errMsg *string, settledAt time.Time) error {
	payload, err := json.Marshal(settleRequest{
		Status:                  next,
		ResolvedSemanticPaperID: resolvedID,
		Error:                   errMsg,
		AppliedAt:               settledAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode settle request: %w", err)
	}

	endpoint := c.baseURL + "/api/v1/events/" + url.PathEscape(eventID) + "/settle"
	result, err := c.execute(ctx, func() (any, error) {
		return c.post(ctx, endpoint, payload)
	})
	if err != nil {
		return err
	}

	// 409 means another puller settled the event first. The apply engine
	// counts those skipped rather than aborting the batch. The conflict
	// is not a breaker failure: the relay is healthy, just ahead of us.
	if status, ok := result.(int); ok && status == http.StatusConflict {
		return fmt.Errorf("relay settle conflict: %w", database.ErrEventNotPending)
	}
	return nil
}

// Ping checks relay reachability without consuming the pending queue.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.execute(ctx, func() (any, error) {
		_, err := c.get(ctx, c.baseURL+"/api/v1/health")
		return nil, err
	})
	return err
}

// execute wraps one relay call with the rate limiter and the breaker.
func (c *Client) execute(ctx context.Context, fn func() (any, error)) (any, error) {
	result, err := c.cb.Execute(func() (any, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return fn()
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s", ErrRelayUnavailable, err)
		}
		return nil, err
	}
	return result, nil
}

// get performs an authenticated GET and returns the body on 200.
func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build relay request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("relay request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read relay response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrRelayStatus, resp.StatusCode)
	}
	return body, nil
}

// post performs an authenticated POST. 2xx and 409 return the status
// code; anything else is an error so the breaker counts it.
func (c *Client) post(ctx context.Context, endpoint string, payload []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("relay request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	if resp.StatusCode == http.StatusConflict {
		return resp.StatusCode, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, fmt.Errorf("%w: %d", ErrRelayStatus, resp.StatusCode)
	}
	return resp.StatusCode, nil
}

// authorize attaches the API key. Relays without keys accept anonymous
// pulls on private networks.
func (c *Client) authorize(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// castResult safely type-casts a breaker result with error checking.
func castResult[T any](result any, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("relay client: unexpected result type %T", result)
	}
	return typed, nil
}

// pullResult maps an error to the metrics result label.
func pullResult(err error) string {
	if errors.Is(err, ErrRelayUnavailable) {
		return "rejected"
	}
	return "failure"
}

func stateToString(s gobreaker.State) string {
	switch s {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

func stateToFloat(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
