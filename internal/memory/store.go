// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package memory

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Default limits, applied by Open when the corresponding option is unset.
const (
	// DefaultMaxIDs bounds the number of remembered candidates.
	DefaultMaxIDs = 5000

	// DefaultTTLDays is the suppression window.
	DefaultTTLDays = 120
)

var (
	// ErrStoreClosed indicates an operation on a closed store.
	ErrStoreClosed = errors.New("seen store is closed")

	// ErrUnknownBackend indicates an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown memory backend")
)

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendBadger = "badger"
)

// SeenStore is the anti-repetition memory. Implementations are safe for
// concurrent use.
type SeenStore interface {
	// IsSuppressed reports whether id was seen within the suppression
	// window as of now. Entries past their TTL read as absent even
	// before Prune removes them.
	IsSuppressed(ctx context.Context, id string, now time.Time) (bool, error)

	// MarkSeen records last_seen=now for every id. Empty ids are
	// skipped. After return the store holds at most its configured
	// capacity; excess entries are evicted in ascending last-seen order.
	MarkSeen(ctx context.Context, ids []string, now time.Time) error

	// Snapshot returns a copy of all physically present entries and
	// their last-seen timestamps, including entries past their TTL that
	// have not been pruned yet.
	Snapshot(ctx context.Context) (map[string]time.Time, error)

	// Prune removes entries whose suppression window has lapsed as of
	// now. Returns the number removed. A store with expiry disabled
	// prunes nothing.
	Prune(ctx context.Context, now time.Time) (int, error)

	// Stats describes the store for operators.
	Stats(ctx context.Context) (Stats, error)

	// Close releases resources. Further operations fail with
	// ErrStoreClosed.
	Close() error
}

// Stats describes a seen store's configuration and current occupancy.
type Stats struct {
	Backend    string     `json:"backend"`
	Entries    int        `json:"entries"`
	MaxIDs     int        `json:"max_ids"`
	TTLDays    int        `json:"ttl_days"`
	OldestSeen *time.Time `json:"oldest_seen,omitempty"`
	NewestSeen *time.Time `json:"newest_seen,omitempty"`
}

// Options configures a seen store.
type Options struct {
	// Backend selects the implementation: memory, file, or badger.
	Backend string

	// Path locates the state: the JSON file for the file backend, the
	// database directory for badger. Ignored by the memory backend.
	Path string

	// MaxIDs caps the number of entries. Zero or negative selects
	// DefaultMaxIDs.
	MaxIDs int

	// TTLDays is the suppression window in days. Zero disables expiry;
	// negative selects DefaultTTLDays.
	TTLDays int
}

// normalized applies defaulting rules.
func (o Options) normalized() Options {
	if o.MaxIDs <= 0 {
		o.MaxIDs = DefaultMaxIDs
	}
	if o.TTLDays < 0 {
		o.TTLDays = DefaultTTLDays
	}
	return o
}

// ttl converts the day-based window to a duration. Zero means disabled.
func (o Options) ttl() time.Duration {
	if o.TTLDays <= 0 {
		return 0
	}
	return time.Duration(o.TTLDays) * 24 * time.Hour
}

// Open creates the seen store selected by opts.Backend.
func Open(opts Options) (SeenStore, error) {
	switch opts.Backend {
	case BackendMemory, "":
		return NewMemoryStore(opts), nil
	case BackendFile:
		return NewFileStore(opts.Path, opts)
	case BackendBadger:
		return NewBadgerStore(opts.Path, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// expired reports whether an entry last seen at seen has lapsed as of now
// under ttl. A zero ttl never expires. The boundary is inclusive: an entry
// seen exactly ttl ago is expired.
func expired(seen, now time.Time, ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return now.Sub(seen) >= ttl
}
