// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/lectern/internal/metrics"
)

// badgerSeenKeyPrefix namespaces seen entries so the database can be shared
// with other components.
const badgerSeenKeyPrefix = "seen:"

// seenRecord is the stored value for one entry.
type seenRecord struct {
	LastSeen time.Time `json:"last_seen"`
}

// BadgerStore is a BadgerDB-backed SeenStore for server mode. Entries carry
// Badger's native TTL so expired records disappear during compaction; Prune
// additionally scans with the caller's clock so tests and operators get
// deterministic removal counts.
type BadgerStore struct {
	db     *badger.DB
	ownsDB bool

	maxIDs  int
	ttl     time.Duration
	ttlDays int

	mu     sync.RWMutex
	closed bool
}

// NewBadgerStore opens a BadgerDB at path and wraps it as a seen store.
func NewBadgerStore(path string, opts Options) (*BadgerStore, error) {
	if path == "" {
		return nil, errors.New("badger path is required")
	}

	badgerOpts := badger.DefaultOptions(path)
	badgerOpts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db for seen store: %w", err)
	}

	s := NewBadgerStoreFromDB(db, opts)
	s.ownsDB = true
	return s, nil
}

// NewBadgerStoreFromDB wraps an existing BadgerDB connection. Close leaves
// the shared database open.
func NewBadgerStoreFromDB(db *badger.DB, opts Options) *BadgerStore {
	opts = opts.normalized()
	return &BadgerStore{
		db:      db,
		maxIDs:  opts.MaxIDs,
		ttl:     opts.ttl(),
		ttlDays: opts.TTLDays,
	}
}

func (s *BadgerStore) makeKey(id string) []byte {
	return append([]byte(badgerSeenKeyPrefix), []byte(id)...)
}

func (s *BadgerStore) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// IsSuppressed implements SeenStore.
func (s *BadgerStore) IsSuppressed(ctx context.Context, id string, now time.Time) (bool, error) {
	if s.isClosed() {
		return false, ErrStoreClosed
	}

	var suppressed bool
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.makeKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var rec seenRecord
			if err := json.Unmarshal(val, &rec); err != nil {
				return err
			}
			suppressed = !expired(rec.LastSeen, now, s.ttl)
			return nil
		})
	})
	if err != nil {
		return false, fmt.Errorf("failed to read seen entry: %w", err)
	}

	metrics.RecordSuppressionCheck(suppressed)
	return suppressed, nil
}

// MarkSeen implements SeenStore. Marks and the capacity-enforcing eviction
// scan run in one transaction, so a concurrent reader never observes the
// store over capacity.
func (s *BadgerStore) MarkSeen(ctx context.Context, ids []string, now time.Time) error {
	if s.isClosed() {
		return ErrStoreClosed
	}

	marked := 0
	evicted := 0
	total := 0

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, id := range ids {
			if id == "" {
				continue
			}
			data, err := json.Marshal(seenRecord{LastSeen: now})
			if err != nil {
				return err
			}
			entry := badger.NewEntry(s.makeKey(id), data)
			if s.ttl > 0 {
				entry = entry.WithTTL(s.ttl)
			}
			if err := txn.SetEntry(entry); err != nil {
				return err
			}
			marked++
		}

		var err error
		evicted, total, err = s.enforceCap(txn)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to mark seen: %w", err)
	}

	metrics.RecordMarkedSeen(marked)
	metrics.RecordMemoryEviction("cap", evicted)
	metrics.UpdateMemoryEntries(total)
	return nil
}

// enforceCap deletes the oldest entries until the prefix holds at most
// maxIDs keys. Returns the eviction count and the remaining entry count.
func (s *BadgerStore) enforceCap(txn *badger.Txn) (evicted, total int, err error) {
	type keyedRecord struct {
		key      []byte
		id       string
		lastSeen time.Time
	}

	var all []keyedRecord
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(badgerSeenKeyPrefix)
	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		var rec seenRecord
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		}); err != nil {
			continue
		}
		key := item.KeyCopy(nil)
		all = append(all, keyedRecord{
			key:      key,
			id:       string(key[len(badgerSeenKeyPrefix):]),
			lastSeen: rec.LastSeen,
		})
	}

	if len(all) <= s.maxIDs {
		return 0, len(all), nil
	}

	sort.Slice(all, func(i, j int) bool {
		if all[i].lastSeen.Equal(all[j].lastSeen) {
			return all[i].id < all[j].id
		}
		return all[i].lastSeen.Before(all[j].lastSeen)
	})

	for _, rec := range all[:len(all)-s.maxIDs] {
		if err := txn.Delete(rec.key); err != nil {
			return evicted, len(all) - evicted, err
		}
		evicted++
	}
	return evicted, len(all) - evicted, nil
}

// Snapshot implements SeenStore.
func (s *BadgerStore) Snapshot(ctx context.Context) (map[string]time.Time, error) {
	if s.isClosed() {
		return nil, ErrStoreClosed
	}

	out := make(map[string]time.Time)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerSeenKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			id := string(item.Key()[len(badgerSeenKeyPrefix):])
			var rec seenRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				continue
			}
			out[id] = rec.LastSeen
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot seen store: %w", err)
	}
	return out, nil
}

// Prune implements SeenStore. Badger's native TTL removes entries during
// compaction on its own schedule; the explicit scan makes removal visible
// and immediate.
func (s *BadgerStore) Prune(ctx context.Context, now time.Time) (int, error) {
	if s.isClosed() {
		return 0, ErrStoreClosed
	}
	if s.ttl <= 0 {
		return 0, nil
	}

	removed := 0
	remaining := 0
	err := s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerSeenKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		var keysToDelete [][]byte
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var rec seenRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				continue
			}
			if expired(rec.LastSeen, now, s.ttl) {
				keysToDelete = append(keysToDelete, item.KeyCopy(nil))
			} else {
				remaining++
			}
		}

		for _, key := range keysToDelete {
			if err := txn.Delete(key); err != nil {
				return err
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, fmt.Errorf("failed to prune seen store: %w", err)
	}

	metrics.RecordMemoryEviction("ttl", removed)
	metrics.UpdateMemoryEntries(remaining)
	return removed, nil
}

// Stats implements SeenStore.
func (s *BadgerStore) Stats(ctx context.Context) (Stats, error) {
	if s.isClosed() {
		return Stats{}, ErrStoreClosed
	}

	st := Stats{
		Backend: BackendBadger,
		MaxIDs:  s.maxIDs,
		TTLDays: s.ttlDays,
	}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(badgerSeenKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec seenRecord
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			}); err != nil {
				continue
			}
			st.Entries++
			if st.OldestSeen == nil || rec.LastSeen.Before(*st.OldestSeen) {
				t := rec.LastSeen
				st.OldestSeen = &t
			}
			if st.NewestSeen == nil || rec.LastSeen.After(*st.NewestSeen) {
				t := rec.LastSeen
				st.NewestSeen = &t
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to gather seen store stats: %w", err)
	}
	return st, nil
}

// Close implements SeenStore. A store opened from a shared database leaves
// the database open for its other users.
func (s *BadgerStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}
