// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// setupBadgerStore creates a BadgerDB in-memory instance for testing.
func setupBadgerStore(t *testing.T, opts Options) (*BadgerStore, func()) {
	t.Helper()

	badgerOpts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(badgerOpts)
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}

	s := NewBadgerStoreFromDB(db, opts)
	cleanup := func() {
		s.Close()
		db.Close()
	}
	return s, cleanup
}

func TestBadgerStoreMarkAndCheck(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupBadgerStore(t, Options{})
	defer cleanup()

	if err := s.MarkSeen(ctx, []string{"CorpusId:111", "CorpusId:222"}, testBase); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	suppressed, err := s.IsSuppressed(ctx, "CorpusId:111", testBase.Add(time.Hour))
	if err != nil {
		t.Fatalf("IsSuppressed failed: %v", err)
	}
	if !suppressed {
		t.Error("Expected marked id to be suppressed")
	}

	suppressed, err = s.IsSuppressed(ctx, "CorpusId:999", testBase.Add(time.Hour))
	if err != nil {
		t.Fatalf("IsSuppressed failed: %v", err)
	}
	if suppressed {
		t.Error("Expected unknown id to not be suppressed")
	}
}

func TestBadgerStoreSuppressionWindow(t *testing.T) {
	ctx := context.Background()
	ttl := time.Duration(DefaultTTLDays) * 24 * time.Hour

	s, cleanup := setupBadgerStore(t, Options{})
	defer cleanup()

	// Mark with the wall clock so Badger's own TTL stays in the future;
	// the suppression decision uses the caller's clock.
	markedAt := time.Now().UTC()
	if err := s.MarkSeen(ctx, []string{"CorpusId:111"}, markedAt); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	tests := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"just_marked", markedAt, true},
		{"one_second_before_expiry", markedAt.Add(ttl - time.Second), true},
		{"exactly_at_expiry", markedAt.Add(ttl), false},
		{"after_expiry", markedAt.Add(ttl + time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.IsSuppressed(ctx, "CorpusId:111", tt.now)
			if err != nil {
				t.Fatalf("IsSuppressed failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsSuppressed at %s = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestBadgerStoreCapacityEviction(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupBadgerStore(t, Options{MaxIDs: 3})
	defer cleanup()

	now := time.Now().UTC()
	ids := []string{"a", "b", "c", "d", "e"}
	for i, id := range ids {
		if err := s.MarkSeen(ctx, []string{id}, now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("MarkSeen failed for %q: %v", id, err)
		}
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap) != 3 {
		t.Fatalf("Snapshot has %d entries, want 3", len(snap))
	}
	for _, id := range []string{"c", "d", "e"} {
		if _, ok := snap[id]; !ok {
			t.Errorf("Expected %q to survive eviction", id)
		}
	}
	for _, id := range []string{"a", "b"} {
		if _, ok := snap[id]; ok {
			t.Errorf("Expected %q to be evicted", id)
		}
	}
}

func TestBadgerStoreEvictionTieBreak(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupBadgerStore(t, Options{MaxIDs: 2})
	defer cleanup()

	// A shared timestamp falls back to id order, oldest id first.
	now := time.Now().UTC()
	if err := s.MarkSeen(ctx, []string{"b", "c", "a"}, now); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap) != 2 {
		t.Fatalf("Snapshot has %d entries, want 2", len(snap))
	}
	if _, ok := snap["a"]; ok {
		t.Error("Expected lowest id to be evicted on timestamp tie")
	}
}

func TestBadgerStoreRemarkRefreshesRecency(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupBadgerStore(t, Options{MaxIDs: 2})
	defer cleanup()

	now := time.Now().UTC()
	if err := s.MarkSeen(ctx, []string{"old"}, now); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if err := s.MarkSeen(ctx, []string{"mid"}, now.Add(time.Minute)); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if err := s.MarkSeen(ctx, []string{"old"}, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if err := s.MarkSeen(ctx, []string{"new"}, now.Add(3*time.Minute)); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if _, ok := snap["mid"]; ok {
		t.Error("Expected least recently seen id to be evicted")
	}
	if _, ok := snap["old"]; !ok {
		t.Error("Expected re-marked id to survive eviction")
	}
}

func TestBadgerStoreSkipsEmptyIDs(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupBadgerStore(t, Options{})
	defer cleanup()

	if err := s.MarkSeen(ctx, []string{"", "CorpusId:111"}, time.Now().UTC()); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap) != 1 {
		t.Errorf("Snapshot has %d entries, want 1", len(snap))
	}
}

func TestBadgerStorePrune(t *testing.T) {
	ctx := context.Background()
	ttl := time.Duration(DefaultTTLDays) * 24 * time.Hour

	s, cleanup := setupBadgerStore(t, Options{})
	defer cleanup()

	now := time.Now().UTC()
	if err := s.MarkSeen(ctx, []string{"stale"}, now.Add(-ttl)); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if err := s.MarkSeen(ctx, []string{"fresh"}, now); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	removed, err := s.Prune(ctx, now)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune removed %d entries, want 1", removed)
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if _, ok := snap["stale"]; ok {
		t.Error("Expected stale entry to be pruned")
	}
	if _, ok := snap["fresh"]; !ok {
		t.Error("Expected fresh entry to survive prune")
	}
}

func TestBadgerStorePruneExpiryDisabled(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupBadgerStore(t, Options{TTLDays: 0})
	defer cleanup()

	now := time.Now().UTC()
	if err := s.MarkSeen(ctx, []string{"CorpusId:111"}, now.AddDate(-10, 0, 0)); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	removed, err := s.Prune(ctx, now)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 0 {
		t.Errorf("Prune removed %d entries, want 0", removed)
	}
}

func TestBadgerStoreStats(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupBadgerStore(t, Options{MaxIDs: 10, TTLDays: 30})
	defer cleanup()

	now := time.Now().UTC().Truncate(time.Second)
	if err := s.MarkSeen(ctx, []string{"old"}, now.Add(-time.Hour)); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if err := s.MarkSeen(ctx, []string{"new"}, now); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Backend != BackendBadger {
		t.Errorf("Backend = %q, want %q", st.Backend, BackendBadger)
	}
	if st.Entries != 2 {
		t.Errorf("Entries = %d, want 2", st.Entries)
	}
	if st.MaxIDs != 10 || st.TTLDays != 30 {
		t.Errorf("Expected configured limits in stats, got %+v", st)
	}
	if st.OldestSeen == nil || !st.OldestSeen.Equal(now.Add(-time.Hour)) {
		t.Errorf("OldestSeen = %v, want %s", st.OldestSeen, now.Add(-time.Hour))
	}
	if st.NewestSeen == nil || !st.NewestSeen.Equal(now) {
		t.Errorf("NewestSeen = %v, want %s", st.NewestSeen, now)
	}
}

func TestBadgerStoreClosed(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupBadgerStore(t, Options{})
	defer cleanup()

	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if _, err := s.IsSuppressed(ctx, "x", testBase); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("IsSuppressed after close: got %v, want ErrStoreClosed", err)
	}
	if err := s.MarkSeen(ctx, []string{"x"}, testBase); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("MarkSeen after close: got %v, want ErrStoreClosed", err)
	}
	if _, err := s.Snapshot(ctx); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Snapshot after close: got %v, want ErrStoreClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestBadgerStoreSharedDBLeftOpen(t *testing.T) {
	ctx := context.Background()

	badgerOpts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(badgerOpts)
	if err != nil {
		t.Fatalf("Failed to open badger: %v", err)
	}
	defer db.Close()

	s := NewBadgerStoreFromDB(db, Options{})
	if err := s.MarkSeen(ctx, []string{"CorpusId:111"}, time.Now().UTC()); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// The underlying database is still usable by other components.
	err = db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(badgerSeenKeyPrefix + "CorpusId:111"))
		return err
	})
	if err != nil {
		t.Errorf("Expected shared db to stay open and hold the entry: %v", err)
	}
}

func TestNewBadgerStoreOnDisk(t *testing.T) {
	ctx := context.Background()

	s, err := NewBadgerStore(t.TempDir(), Options{})
	if err != nil {
		t.Fatalf("NewBadgerStore failed: %v", err)
	}
	defer s.Close()

	now := time.Now().UTC()
	if err := s.MarkSeen(ctx, []string{"CorpusId:111"}, now); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	suppressed, err := s.IsSuppressed(ctx, "CorpusId:111", now)
	if err != nil {
		t.Fatalf("IsSuppressed failed: %v", err)
	}
	if !suppressed {
		t.Error("Expected marked id to be suppressed")
	}
}

func TestNewBadgerStoreRequiresPath(t *testing.T) {
	if _, err := NewBadgerStore("", Options{}); err == nil {
		t.Fatal("Expected error for empty path")
	}
}
