// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package models

import "fmt"

// EventStatus is the lifecycle state of a feedback event. The state
// machine is deliberately tiny and closed:
//
//	pending -> applied   (profile mutated, or undecided no-op)
//	pending -> rejected  (could not resolve a corpus id)
//
// Terminal states never transition again; re-applying a batch that
// contains settled events skips them, which is what makes apply
// idempotent.
type EventStatus string

const (
	// StatusPending means the event awaits the apply engine.
	StatusPending EventStatus = "pending"

	// StatusApplied means the event was consumed (profile mutated, or an
	// undecided no-op).
	StatusApplied EventStatus = "applied"

	// StatusRejected means the event could not be applied; the row's
	// Error field says why.
	StatusRejected EventStatus = "rejected"
)

// ValidEventStatuses contains every status a stored event may carry.
var ValidEventStatuses = []EventStatus{StatusPending, StatusApplied, StatusRejected}

// ParseEventStatus converts a stored string into an EventStatus,
// rejecting anything outside the closed set.
func ParseEventStatus(s string) (EventStatus, error) {
	status := EventStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown event status %q", s)
	}
	return status, nil
}

// IsValid checks membership in the closed status set.
func (s EventStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusApplied, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the status never transitions again.
func (s EventStatus) IsTerminal() bool {
	return s == StatusApplied || s == StatusRejected
}

// CanTransition reports whether moving from s to next is a legal edge.
// Only pending events move; both destinations are terminal.
func (s EventStatus) CanTransition(next EventStatus) bool {
	if s != StatusPending {
		return false
	}
	return next == StatusApplied || next == StatusRejected
}
