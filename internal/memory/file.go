// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package memory

import (
	"context"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lectern/internal/fsatomic"
	"github.com/tomtom215/lectern/internal/logging"
)

// DocumentVersion is the current memory file document version.
const DocumentVersion = "v1"

// Document is the on-disk JSON shape of the anti-repetition memory.
type Document struct {
	Version   string               `json:"version"`
	UpdatedAt time.Time            `json:"updated_at"`
	MaxIDs    int                  `json:"max_ids"`
	TTLDays   int                  `json:"ttl_days"`
	Seen      map[string]time.Time `json:"seen"`
}

// FileStore is a SeenStore persisted as a JSON document. It keeps a
// MemoryStore as its working state and rewrites the file atomically after
// every mutation.
//
// The memory is a disposable cache, not a ledger: an unreadable or
// malformed file is reset to empty with a warning instead of failing
// startup, matching how a missing file is treated.
type FileStore struct {
	mu    sync.Mutex
	path  string
	inner *MemoryStore

	// now stamps updated_at; swappable for tests.
	now func() time.Time
}

// NewFileStore opens (or initializes) the memory file at path.
func NewFileStore(path string, opts Options) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("memory file path is required")
	}
	opts = opts.normalized()

	s := &FileStore{
		path:  path,
		inner: NewMemoryStore(opts),
		now:   time.Now,
	}
	s.load()
	return s, nil
}

// Path returns the memory file path.
func (s *FileStore) Path() string {
	return s.path
}

// load seeds the working state from disk. Invalid content resets to empty.
func (s *FileStore) load() {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		logging.Warn().Err(err).Str("path", s.path).
			Msg("Memory file unreadable, starting empty")
		return
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		logging.Warn().Err(err).Str("path", s.path).
			Msg("Memory file invalid, starting empty")
		return
	}

	seen := make(map[string]time.Time, len(doc.Seen))
	for id, ts := range doc.Seen {
		if id == "" || ts.IsZero() {
			continue
		}
		seen[id] = ts
	}
	s.inner.seed(seen)
}

// save writes the current state to disk atomically.
func (s *FileStore) save(ctx context.Context) error {
	seen, err := s.inner.Snapshot(ctx)
	if err != nil {
		return err
	}

	doc := Document{
		Version:   DocumentVersion,
		UpdatedAt: s.now().UTC(),
		MaxIDs:    s.inner.maxIDs,
		TTLDays:   s.inner.ttlDays,
		Seen:      seen,
	}
	return fsatomic.WriteJSON(s.path, doc, 0o600)
}

// IsSuppressed implements SeenStore.
func (s *FileStore) IsSuppressed(ctx context.Context, id string, now time.Time) (bool, error) {
	return s.inner.IsSuppressed(ctx, id, now)
}

// MarkSeen implements SeenStore. The file is rewritten before return, so a
// crash after MarkSeen cannot lose the marks.
func (s *FileStore) MarkSeen(ctx context.Context, ids []string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.inner.MarkSeen(ctx, ids, now); err != nil {
		return err
	}
	return s.save(ctx)
}

// Snapshot implements SeenStore.
func (s *FileStore) Snapshot(ctx context.Context) (map[string]time.Time, error) {
	return s.inner.Snapshot(ctx)
}

// Prune implements SeenStore. The file is only rewritten when something was
// removed.
func (s *FileStore) Prune(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, err := s.inner.Prune(ctx, now)
	if err != nil {
		return 0, err
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.save(ctx)
}

// Stats implements SeenStore.
func (s *FileStore) Stats(ctx context.Context) (Stats, error) {
	st, err := s.inner.Stats(ctx)
	if err != nil {
		return Stats{}, err
	}
	st.Backend = BackendFile
	return st, nil
}

// Close implements SeenStore.
func (s *FileStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inner.Close()
}
