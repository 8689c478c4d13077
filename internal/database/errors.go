// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package database

import (
	"errors"
	"io"
)

var (
	// ErrEventNotFound indicates the event id matched no row.
	ErrEventNotFound = errors.New("feedback event not found")

	// ErrEventNotPending indicates a settle attempt on an event that has
	// already been settled. Terminal rows are never mutated.
	ErrEventNotPending = errors.New("feedback event is not pending")

	// ErrRunNotFound indicates the run id matched no published run.
	ErrRunNotFound = errors.New("run not found")
)

// closeQuietly closes a resource and explicitly ignores any error.
// Use this in error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
