// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/lectern/internal/metrics"
)

// seenEntry is a node in the recency list.
type seenEntry struct {
	id       string
	lastSeen time.Time
	prev     *seenEntry
	next     *seenEntry
}

// MemoryStore is an in-memory SeenStore: a hashmap for O(1) lookup plus a
// doubly-linked list ordered by last-seen time, so capacity eviction pops
// the oldest entry in O(1) instead of scanning the map.
//
// head.next is the most recently seen entry, tail.prev the oldest.
type MemoryStore struct {
	mu sync.RWMutex

	maxIDs  int
	ttl     time.Duration
	ttlDays int

	items map[string]*seenEntry
	head  *seenEntry
	tail  *seenEntry

	closed bool
}

// NewMemoryStore creates an in-memory seen store.
func NewMemoryStore(opts Options) *MemoryStore {
	opts = opts.normalized()

	s := &MemoryStore{
		maxIDs:  opts.MaxIDs,
		ttl:     opts.ttl(),
		ttlDays: opts.TTLDays,
		items:   make(map[string]*seenEntry, opts.MaxIDs),
		head:    &seenEntry{},
		tail:    &seenEntry{},
	}
	s.head.next = s.tail
	s.tail.prev = s.head
	return s
}

// IsSuppressed implements SeenStore. Reads do not reorder entries: recency
// is mark time, not access time.
func (s *MemoryStore) IsSuppressed(ctx context.Context, id string, now time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, ErrStoreClosed
	}

	entry, ok := s.items[id]
	suppressed := ok && !expired(entry.lastSeen, now, s.ttl)
	metrics.RecordSuppressionCheck(suppressed)
	return suppressed, nil
}

// MarkSeen implements SeenStore.
func (s *MemoryStore) MarkSeen(ctx context.Context, ids []string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	marked := 0
	for _, id := range ids {
		if id == "" {
			continue
		}
		s.markLocked(id, now)
		marked++
	}

	evicted := s.enforceCapLocked()

	metrics.RecordMarkedSeen(marked)
	metrics.RecordMemoryEviction("cap", evicted)
	metrics.UpdateMemoryEntries(len(s.items))
	return nil
}

// Snapshot implements SeenStore.
func (s *MemoryStore) Snapshot(ctx context.Context) (map[string]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, ErrStoreClosed
	}

	out := make(map[string]time.Time, len(s.items))
	for id, entry := range s.items {
		out[id] = entry.lastSeen
	}
	return out, nil
}

// Prune implements SeenStore. The list is ordered by recency, so expired
// entries cluster at the tail; the walk still covers the whole list to stay
// correct if callers ever mark with non-monotonic clocks.
func (s *MemoryStore) Prune(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrStoreClosed
	}
	if s.ttl <= 0 {
		return 0, nil
	}

	removed := 0
	for entry := s.tail.prev; entry != s.head; {
		prev := entry.prev
		if expired(entry.lastSeen, now, s.ttl) {
			s.removeLocked(entry)
			removed++
		}
		entry = prev
	}

	metrics.RecordMemoryEviction("ttl", removed)
	metrics.UpdateMemoryEntries(len(s.items))
	return removed, nil
}

// Stats implements SeenStore.
func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return Stats{}, ErrStoreClosed
	}

	st := Stats{
		Backend: BackendMemory,
		Entries: len(s.items),
		MaxIDs:  s.maxIDs,
		TTLDays: s.ttlDays,
	}
	if oldest := s.tail.prev; oldest != s.head {
		t := oldest.lastSeen
		st.OldestSeen = &t
	}
	if newest := s.head.next; newest != s.tail {
		t := newest.lastSeen
		st.NewestSeen = &t
	}
	return st, nil
}

// Close implements SeenStore.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.items = nil
	s.head.next = s.tail
	s.tail.prev = s.head
	return nil
}

// seed inserts entries sorted oldest-first without touching metrics, for
// loading persisted state. The cap is enforced once at the end.
func (s *MemoryStore) seed(entries map[string]time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ordered := make([]seenEntry, 0, len(entries))
	for id, seen := range entries {
		ordered = append(ordered, seenEntry{id: id, lastSeen: seen})
	}
	// Oldest first, ties broken by id so loads are deterministic.
	sortSeedEntries(ordered)

	for _, e := range ordered {
		s.markLocked(e.id, e.lastSeen)
	}
	s.enforceCapLocked()
}

// markLocked inserts or refreshes id at the front of the recency list.
func (s *MemoryStore) markLocked(id string, now time.Time) {
	if entry, ok := s.items[id]; ok {
		entry.lastSeen = now
		s.moveToFrontLocked(entry)
		return
	}

	entry := &seenEntry{id: id, lastSeen: now}
	s.addToFrontLocked(entry)
	s.items[id] = entry
}

// enforceCapLocked evicts from the tail until the store is at capacity.
// Returns the number evicted.
func (s *MemoryStore) enforceCapLocked() int {
	evicted := 0
	for len(s.items) > s.maxIDs {
		oldest := s.tail.prev
		if oldest == s.head {
			break
		}
		s.removeLocked(oldest)
		evicted++
	}
	return evicted
}

func (s *MemoryStore) addToFrontLocked(entry *seenEntry) {
	entry.prev = s.head
	entry.next = s.head.next
	s.head.next.prev = entry
	s.head.next = entry
}

func (s *MemoryStore) moveToFrontLocked(entry *seenEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	s.addToFrontLocked(entry)
}

func (s *MemoryStore) removeLocked(entry *seenEntry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
	delete(s.items, entry.id)
}

func sortSeedEntries(entries []seenEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].lastSeen.Equal(entries[j].lastSeen) {
			return entries[i].id < entries[j].id
		}
		return entries[i].lastSeen.Before(entries[j].lastSeen)
	})
}
