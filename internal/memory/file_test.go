// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func testMemoryFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "memory.json")
}

func TestFileStoreRequiresPath(t *testing.T) {
	if _, err := NewFileStore("", Options{}); err == nil {
		t.Fatal("Expected error for empty path")
	}
}

func TestFileStoreMissingFileStartsEmpty(t *testing.T) {
	ctx := context.Background()
	path := testMemoryFile(t)

	s, err := NewFileStore(path, Options{})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Entries != 0 {
		t.Errorf("Entries = %d, want 0", st.Entries)
	}

	// Nothing is written until the first mutation.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no file before first mark, stat err = %v", err)
	}
}

func TestFileStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := testMemoryFile(t)

	s1, err := NewFileStore(path, Options{})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := s1.MarkSeen(ctx, []string{"CorpusId:111", "CorpusId:222"}, testBase); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if err := s1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s2, err := NewFileStore(path, Options{})
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s2.Close()

	suppressed, err := s2.IsSuppressed(ctx, "CorpusId:111", testBase.Add(time.Hour))
	if err != nil {
		t.Fatalf("IsSuppressed failed: %v", err)
	}
	if !suppressed {
		t.Error("Expected mark to survive reopen")
	}

	snap, err := s2.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if got := snap["CorpusId:222"]; !got.Equal(testBase) {
		t.Errorf("last_seen = %s, want %s", got, testBase)
	}
}

func TestFileStoreMarkIsDurableWithoutClose(t *testing.T) {
	ctx := context.Background()
	path := testMemoryFile(t)

	s1, err := NewFileStore(path, Options{})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	if err := s1.MarkSeen(ctx, []string{"CorpusId:111"}, testBase); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	// A second store reading the same path sees the mark even though the
	// first was never closed, as if the process had crashed.
	s2, err := NewFileStore(path, Options{})
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer s2.Close()
	defer s1.Close()

	suppressed, err := s2.IsSuppressed(ctx, "CorpusId:111", testBase)
	if err != nil {
		t.Fatalf("IsSuppressed failed: %v", err)
	}
	if !suppressed {
		t.Error("Expected mark to be on disk before Close")
	}
}

func TestFileStoreDocumentShape(t *testing.T) {
	ctx := context.Background()
	path := testMemoryFile(t)

	s, err := NewFileStore(path, Options{MaxIDs: 10, TTLDays: 30})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	fixed := time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	if err := s.MarkSeen(ctx, []string{"CorpusId:111"}, testBase); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read memory file: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Failed to parse memory file: %v", err)
	}
	if doc.Version != DocumentVersion {
		t.Errorf("version = %q, want %q", doc.Version, DocumentVersion)
	}
	if !doc.UpdatedAt.Equal(fixed) {
		t.Errorf("updated_at = %s, want %s", doc.UpdatedAt, fixed)
	}
	if doc.MaxIDs != 10 {
		t.Errorf("max_ids = %d, want 10", doc.MaxIDs)
	}
	if doc.TTLDays != 30 {
		t.Errorf("ttl_days = %d, want 30", doc.TTLDays)
	}
	if got := doc.Seen["CorpusId:111"]; !got.Equal(testBase) {
		t.Errorf("seen timestamp = %s, want %s", got, testBase)
	}
}

func TestFileStoreInvalidFileResetsEmpty(t *testing.T) {
	ctx := context.Background()
	path := testMemoryFile(t)

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	s, err := NewFileStore(path, Options{})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Entries != 0 {
		t.Errorf("Entries = %d, want 0 after reset", st.Entries)
	}

	// The next mark replaces the corrupt file with a valid document.
	if err := s.MarkSeen(ctx, []string{"CorpusId:111"}, testBase); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read memory file: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Memory file still invalid after mark: %v", err)
	}
	if len(doc.Seen) != 1 {
		t.Errorf("seen has %d entries, want 1", len(doc.Seen))
	}
}

func TestFileStoreLoadSkipsBlankEntries(t *testing.T) {
	ctx := context.Background()
	path := testMemoryFile(t)

	doc := Document{
		Version: DocumentVersion,
		MaxIDs:  DefaultMaxIDs,
		TTLDays: DefaultTTLDays,
		Seen: map[string]time.Time{
			"":             testBase,
			"CorpusId:111": testBase,
			"CorpusId:222": {},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}

	s, err := NewFileStore(path, Options{})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap) != 1 {
		t.Errorf("Snapshot has %d entries, want 1", len(snap))
	}
	if _, ok := snap["CorpusId:111"]; !ok {
		t.Error("Expected valid entry to load")
	}
}

func TestFileStoreLoadEnforcesCap(t *testing.T) {
	ctx := context.Background()
	path := testMemoryFile(t)

	seen := make(map[string]time.Time)
	for i := 0; i < 5; i++ {
		seen[fmt.Sprintf("CorpusId:%d", i)] = testBase.Add(time.Duration(i) * time.Minute)
	}
	doc := Document{Version: DocumentVersion, Seen: seen}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document: %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("Failed to write document: %v", err)
	}

	s, err := NewFileStore(path, Options{MaxIDs: 3})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	snap, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(snap) != 3 {
		t.Fatalf("Snapshot has %d entries, want 3", len(snap))
	}
	// The three most recently seen survive.
	for i := 2; i < 5; i++ {
		if _, ok := snap[fmt.Sprintf("CorpusId:%d", i)]; !ok {
			t.Errorf("Expected entry %d to survive load cap", i)
		}
	}
}

func TestFileStorePrunePersists(t *testing.T) {
	ctx := context.Background()
	path := testMemoryFile(t)
	ttl := time.Duration(DefaultTTLDays) * 24 * time.Hour

	s, err := NewFileStore(path, Options{})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	if err := s.MarkSeen(ctx, []string{"stale"}, testBase.Add(-ttl)); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}
	if err := s.MarkSeen(ctx, []string{"fresh"}, testBase); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	removed, err := s.Prune(ctx, testBase)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("Prune removed %d entries, want 1", removed)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read memory file: %v", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("Failed to parse memory file: %v", err)
	}
	if _, ok := doc.Seen["stale"]; ok {
		t.Error("Expected pruned entry gone from disk")
	}
	if _, ok := doc.Seen["fresh"]; !ok {
		t.Error("Expected surviving entry on disk")
	}
}

func TestFileStorePruneWithoutRemovalsSkipsWrite(t *testing.T) {
	ctx := context.Background()
	path := testMemoryFile(t)

	s, err := NewFileStore(path, Options{})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	if err := s.MarkSeen(ctx, []string{"fresh"}, testBase); err != nil {
		t.Fatalf("MarkSeen failed: %v", err)
	}

	// Remove the file behind the store; a no-op prune must not recreate it.
	if err := os.Remove(path); err != nil {
		t.Fatalf("Failed to remove memory file: %v", err)
	}

	removed, err := s.Prune(ctx, testBase)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("Prune removed %d entries, want 0", removed)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no file after no-op prune, stat err = %v", err)
	}
}

func TestFileStoreStatsBackend(t *testing.T) {
	ctx := context.Background()

	s, err := NewFileStore(testMemoryFile(t), Options{})
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}
	defer s.Close()

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Backend != BackendFile {
		t.Errorf("Backend = %q, want %q", st.Backend, BackendFile)
	}
}
