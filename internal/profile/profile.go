// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package profile

import (
	"github.com/tomtom215/lectern/internal/models"
)

// orderedSet is a string set that preserves insertion order.
type orderedSet struct {
	order []string
	index map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[string]struct{})}
}

// add appends id if absent. Returns true if the set changed.
func (s *orderedSet) add(id string) bool {
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

// remove deletes id if present. Returns true if the set changed.
func (s *orderedSet) remove(id string) bool {
	if _, ok := s.index[id]; !ok {
		return false
	}
	delete(s.index, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *orderedSet) has(id string) bool {
	_, ok := s.index[id]
	return ok
}

// values returns a copy of the set in insertion order.
func (s *orderedSet) values() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *orderedSet) len() int {
	return len(s.order)
}

// Profile is the in-memory preference profile: two disjoint sets of
// normalized paper ids, each in insertion order.
//
// Profile is not safe for concurrent use. The apply engine is the only
// writer in normal operation; readers load their own copy through Store.
type Profile struct {
	positive *orderedSet
	negative *orderedSet
}

// New returns an empty profile.
func New() *Profile {
	return &Profile{
		positive: newOrderedSet(),
		negative: newOrderedSet(),
	}
}

// AddPositive inserts id into the positive set, removing it from the
// negative set if present. The id is normalized first. Returns true if
// the profile changed.
func (p *Profile) AddPositive(id string) bool {
	id = models.NormalizePaperID(id)
	if id == "" {
		return false
	}
	removed := p.negative.remove(id)
	added := p.positive.add(id)
	return removed || added
}

// AddNegative inserts id into the negative set, removing it from the
// positive set if present. The id is normalized first. Returns true if
// the profile changed.
func (p *Profile) AddNegative(id string) bool {
	id = models.NormalizePaperID(id)
	if id == "" {
		return false
	}
	removed := p.positive.remove(id)
	added := p.negative.add(id)
	return removed || added
}

// Has reports whether id is in either set.
func (p *Profile) Has(id string) bool {
	id = models.NormalizePaperID(id)
	return p.positive.has(id) || p.negative.has(id)
}

// IsPositive reports whether id is in the positive set.
func (p *Profile) IsPositive(id string) bool {
	return p.positive.has(models.NormalizePaperID(id))
}

// IsNegative reports whether id is in the negative set.
func (p *Profile) IsNegative(id string) bool {
	return p.negative.has(models.NormalizePaperID(id))
}

// Snapshot returns copies of both sets in insertion order.
func (p *Profile) Snapshot() (positive, negative []string) {
	return p.positive.values(), p.negative.values()
}

// PositiveCount returns the size of the positive set.
func (p *Profile) PositiveCount() int {
	return p.positive.len()
}

// NegativeCount returns the size of the negative set.
func (p *Profile) NegativeCount() int {
	return p.negative.len()
}
