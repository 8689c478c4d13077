// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package api

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/lectern/internal/apply"
	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/manifest"
	"github.com/tomtom215/lectern/internal/memory"
	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/profile"
)

const testSecret = "api-test-signing-secret"

// testDBSemaphore serializes database creation. Concurrent DuckDB CGO
// operations can hang under CI resource pressure, so only one test holds an
// active connection at a time. Released via t.Cleanup when the test completes.
var testDBSemaphore = make(chan struct{}, 1)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	return &config.Config{
		Feedback: config.FeedbackConfig{
			Secret:         testSecret,
			TokenTTL:       45 * 24 * time.Hour,
			BaseURL:        "http://localhost:8080",
			AllowedSources: []string{"email_link", "web_viewer"},
		},
		Memory: config.MemoryConfig{
			Backend: "memory",
			MaxIDs:  100,
		},
		Profile:   config.ProfileConfig{Path: filepath.Join(dir, "profile.json")},
		Manifests: config.ManifestsConfig{Dir: filepath.Join(dir, "manifests")},
		API:       config.APIConfig{DefaultPageSize: 50, MaxPageSize: 500},
		Security: config.SecurityConfig{
			AuthMode:        "none",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
	}
}

// setupTestHandler builds a handler over an in-memory event store, a
// memory-backend seen store, and temp-dir profile and manifest storage.
func setupTestHandler(t *testing.T) *Handler {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	db, err := database.New(&config.DatabaseConfig{
		Path:        ":memory:",
		MaxMemory:   "1GB",
		SkipIndexes: true,
	})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close test database: %v", err)
		}
	})

	cfg := testConfig(t)

	seen, err := memory.Open(memory.Options{Backend: cfg.Memory.Backend, MaxIDs: cfg.Memory.MaxIDs})
	if err != nil {
		t.Fatalf("Failed to open seen store: %v", err)
	}
	t.Cleanup(func() {
		if err := seen.Close(); err != nil {
			t.Errorf("Failed to close seen store: %v", err)
		}
	})

	return NewHandler(
		db,
		cfg,
		nil, // jwtManager: auth mode none
		nil, // basicAuth
		seen,
		profile.NewStore(cfg.Profile.Path),
		manifest.NewDir(cfg.Manifests.Dir),
		apply.NewEngine(),
	)
}

// decodeAPIResponse unmarshals a JSON envelope and re-marshals Data into out.
func decodeAPIResponse(t *testing.T, body []byte, out interface{}) *models.APIResponse {
	t.Helper()

	var resp models.APIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("Failed to decode response envelope: %v", err)
	}
	if out != nil && resp.Data != nil {
		raw, err := json.Marshal(resp.Data)
		if err != nil {
			t.Fatalf("Failed to re-marshal data: %v", err)
		}
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("Failed to decode data payload: %v", err)
		}
	}
	return &resp
}
