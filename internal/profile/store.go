// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package profile

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lectern/internal/fsatomic"
)

// Document is the on-disk JSON shape of a preference profile.
type Document struct {
	PositivePaperIDs []string  `json:"positive_paper_ids"`
	NegativePaperIDs []string  `json:"negative_paper_ids"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Store reads and writes a preference profile file.
//
// All methods serialize on an internal mutex, so a scheduled apply run and
// an admin request cannot interleave a read-modify-write cycle.
type Store struct {
	path string
	mu   sync.Mutex

	// now is swappable for tests.
	now func() time.Time
}

// NewStore creates a store for the profile file at path. The file does not
// need to exist yet; a missing file loads as an empty profile.
func NewStore(path string) *Store {
	return &Store{
		path: path,
		now:  time.Now,
	}
}

// Path returns the profile file path.
func (s *Store) Path() string {
	return s.path
}

// Load reads the profile from disk. A missing file yields an empty profile.
func (s *Store) Load() (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Save writes the profile to disk atomically and stamps updated_at.
func (s *Store) Save(p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(p)
}

// Update loads the profile, applies fn, and saves the result, all under the
// store lock. If fn returns an error nothing is written. The saved profile
// is returned so callers can report its final state.
func (s *Store) Update(fn func(*Profile) error) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.loadLocked()
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	if err := s.saveLocked(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Store) loadLocked() (*Profile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse profile file %s: %w", s.path, err)
	}
	return FromDocument(doc), nil
}

func (s *Store) saveLocked(p *Profile) error {
	doc := p.Document()
	doc.UpdatedAt = s.now().UTC()
	return fsatomic.WriteJSON(s.path, doc, 0o600)
}

// Document converts the profile to its on-disk shape. UpdatedAt is left
// zero; Save stamps it.
func (p *Profile) Document() Document {
	positive, negative := p.Snapshot()
	return Document{
		PositivePaperIDs: positive,
		NegativePaperIDs: negative,
	}
}

// FromDocument builds a profile by replaying the document's arrays through
// the standard mutation methods. Ids are normalized, duplicates collapse,
// and an id present in both arrays resolves to the negative set, the same
// outcome the add ordering rule gives live feedback.
func FromDocument(doc Document) *Profile {
	p := New()
	for _, id := range doc.PositivePaperIDs {
		p.AddPositive(id)
	}
	for _, id := range doc.NegativePaperIDs {
		p.AddNegative(id)
	}
	return p
}
