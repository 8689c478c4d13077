// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lectern/internal/fsatomic"
	"github.com/tomtom215/lectern/internal/models"
)

var (
	// ErrNotFound indicates no manifest file exists for the requested run.
	ErrNotFound = errors.New("manifest not found")

	// ErrInvalidManifest indicates a manifest file exists but its content
	// fails validation.
	ErrInvalidManifest = errors.New("invalid manifest")
)

const (
	manifestFilePrefix = "run_feedback_manifest_"
	manifestFileSuffix = ".json"
)

// LoadFile reads and validates a single manifest file.
func LoadFile(path string) (*models.RunManifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m models.RunManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}
	if err := Validate(&m); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidManifest, path, err)
	}
	return &m, nil
}

// Validate checks the structural invariants of a manifest document:
// a canonical run id, at least one entry, and unique non-empty item ids.
func Validate(m *models.RunManifest) error {
	if m == nil {
		return errors.New("manifest is nil")
	}
	if !models.IsValidRunID(m.RunID) {
		return fmt.Errorf("run_id %q is not a canonical run identifier", m.RunID)
	}
	if len(m.Papers) == 0 {
		return errors.New("manifest has no papers")
	}

	seen := make(map[string]struct{}, len(m.Papers))
	for i, entry := range m.Papers {
		if entry.ItemID == "" {
			return fmt.Errorf("papers[%d] is missing item_id", i)
		}
		if _, dup := seen[entry.ItemID]; dup {
			return fmt.Errorf("duplicate item_id %q", entry.ItemID)
		}
		seen[entry.ItemID] = struct{}{}
	}
	return nil
}

// Dir is a directory of per-run manifest files.
type Dir struct {
	dir string
}

// NewDir creates a manifest directory handle. The directory is created on
// first save, not here.
func NewDir(dir string) *Dir {
	return &Dir{dir: dir}
}

// Path returns the manifest file path for runID.
func (d *Dir) Path(runID string) string {
	return filepath.Join(d.dir, manifestFilePrefix+runID+manifestFileSuffix)
}

// Load reads the manifest for runID. Returns ErrNotFound when no file
// exists, and ErrInvalidManifest when the stored document's run id does not
// match the file it was stored under.
func (d *Dir) Load(runID string) (*models.RunManifest, error) {
	m, err := LoadFile(d.Path(runID))
	if err != nil {
		return nil, err
	}
	if m.RunID != runID {
		return nil, fmt.Errorf("%w: run_id mismatch: manifest=%s, requested=%s",
			ErrInvalidManifest, m.RunID, runID)
	}
	return m, nil
}

// Save validates and writes the manifest atomically under its run id.
func (d *Dir) Save(m *models.RunManifest) error {
	if err := Validate(m); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	return fsatomic.WriteJSON(d.Path(m.RunID), m, 0o600)
}

// List returns the run ids that have a manifest file, sorted ascending.
// Run ids sort chronologically because of their fixed timestamp layout.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifests dir: %w", err)
	}

	var runIDs []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() ||
			!strings.HasPrefix(name, manifestFilePrefix) ||
			!strings.HasSuffix(name, manifestFileSuffix) {
			continue
		}
		runID := strings.TrimSuffix(strings.TrimPrefix(name, manifestFilePrefix), manifestFileSuffix)
		if models.IsValidRunID(runID) {
			runIDs = append(runIDs, runID)
		}
	}
	sort.Strings(runIDs)
	return runIDs, nil
}
