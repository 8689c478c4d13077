// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package profile

import (
	"fmt"
	"reflect"
	"testing"
)

func TestAddPositive(t *testing.T) {
	t.Parallel()

	p := New()

	if changed := p.AddPositive("CorpusId:123"); !changed {
		t.Error("AddPositive() first insert = false, want true")
	}
	if changed := p.AddPositive("CorpusId:123"); changed {
		t.Error("AddPositive() duplicate insert = true, want false")
	}

	positive, negative := p.Snapshot()
	if !reflect.DeepEqual(positive, []string{"CorpusId:123"}) {
		t.Errorf("positive = %v, want [CorpusId:123]", positive)
	}
	if len(negative) != 0 {
		t.Errorf("negative = %v, want empty", negative)
	}
}

func TestAddNormalizesIDs(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddPositive("123456")
	p.AddPositive("CorpusId:123456")
	p.AddPositive("  123456  ")

	positive, _ := p.Snapshot()
	if !reflect.DeepEqual(positive, []string{"CorpusId:123456"}) {
		t.Errorf("positive = %v, want single normalized entry", positive)
	}
}

func TestAddEmptyIDIgnored(t *testing.T) {
	t.Parallel()

	p := New()
	if changed := p.AddPositive(""); changed {
		t.Error("AddPositive(\"\") = true, want false")
	}
	if changed := p.AddNegative("   "); changed {
		t.Error("AddNegative(whitespace) = true, want false")
	}
	if p.PositiveCount() != 0 || p.NegativeCount() != 0 {
		t.Errorf("counts = %d/%d, want 0/0", p.PositiveCount(), p.NegativeCount())
	}
}

func TestMutualExclusivity(t *testing.T) {
	t.Parallel()

	t.Run("positive then negative ends negative", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddPositive("CorpusId:1")
		p.AddNegative("CorpusId:1")

		if p.IsPositive("CorpusId:1") {
			t.Error("id still in positive set after AddNegative")
		}
		if !p.IsNegative("CorpusId:1") {
			t.Error("id not in negative set after AddNegative")
		}
	})

	t.Run("negative then positive ends positive", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddNegative("CorpusId:1")
		p.AddPositive("CorpusId:1")

		if !p.IsPositive("CorpusId:1") {
			t.Error("id not in positive set after AddPositive")
		}
		if p.IsNegative("CorpusId:1") {
			t.Error("id still in negative set after AddPositive")
		}
	})

	t.Run("moving sides reports a change", func(t *testing.T) {
		t.Parallel()

		p := New()
		p.AddPositive("CorpusId:1")
		if changed := p.AddNegative("CorpusId:1"); !changed {
			t.Error("AddNegative() on a positive id = false, want true")
		}
	})

	t.Run("disjoint after any sequence of adds", func(t *testing.T) {
		t.Parallel()

		p := New()
		for i := 0; i < 200; i++ {
			id := fmt.Sprintf("CorpusId:%d", i%17)
			if i%3 == 0 {
				p.AddNegative(id)
			} else {
				p.AddPositive(id)
			}

			positive, negative := p.Snapshot()
			seen := make(map[string]bool, len(positive))
			for _, v := range positive {
				seen[v] = true
			}
			for _, v := range negative {
				if seen[v] {
					t.Fatalf("step %d: %q present in both sets", i, v)
				}
			}
		}
	})
}

func TestInsertionOrderPreserved(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddPositive("CorpusId:3")
	p.AddPositive("CorpusId:1")
	p.AddPositive("CorpusId:2")

	positive, _ := p.Snapshot()
	want := []string{"CorpusId:3", "CorpusId:1", "CorpusId:2"}
	if !reflect.DeepEqual(positive, want) {
		t.Errorf("positive = %v, want %v", positive, want)
	}

	// Re-adding an existing id must not reorder it.
	p.AddPositive("CorpusId:3")
	positive, _ = p.Snapshot()
	if !reflect.DeepEqual(positive, want) {
		t.Errorf("positive after re-add = %v, want %v", positive, want)
	}

	// Switching sides appends to the end of the new side.
	p.AddNegative("CorpusId:9")
	p.AddNegative("CorpusId:1")
	_, negative := p.Snapshot()
	if !reflect.DeepEqual(negative, []string{"CorpusId:9", "CorpusId:1"}) {
		t.Errorf("negative = %v, want [CorpusId:9 CorpusId:1]", negative)
	}
	positive, _ = p.Snapshot()
	if !reflect.DeepEqual(positive, []string{"CorpusId:3", "CorpusId:2"}) {
		t.Errorf("positive after side switch = %v, want [CorpusId:3 CorpusId:2]", positive)
	}
}

func TestHas(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddPositive("CorpusId:10")
	p.AddNegative("CorpusId:20")

	tests := []struct {
		id   string
		want bool
	}{
		{"CorpusId:10", true},
		{"10", true},
		{"CorpusId:20", true},
		{"CorpusId:30", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := p.Has(tt.id); got != tt.want {
			t.Errorf("Has(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func TestSnapshotReturnsCopies(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddPositive("CorpusId:1")

	positive, _ := p.Snapshot()
	positive[0] = "mutated"

	fresh, _ := p.Snapshot()
	if fresh[0] != "CorpusId:1" {
		t.Errorf("profile affected by snapshot mutation: %v", fresh)
	}
}

func TestCounts(t *testing.T) {
	t.Parallel()

	p := New()
	p.AddPositive("CorpusId:1")
	p.AddPositive("CorpusId:2")
	p.AddNegative("CorpusId:3")
	p.AddNegative("CorpusId:1")

	if got := p.PositiveCount(); got != 1 {
		t.Errorf("PositiveCount() = %d, want 1", got)
	}
	if got := p.NegativeCount(); got != 2 {
		t.Errorf("NegativeCount() = %d, want 2", got)
	}
}
