// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package main

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/lectern/internal/apply"
	"github.com/tomtom215/lectern/internal/config"
	"github.com/tomtom215/lectern/internal/database"
	"github.com/tomtom215/lectern/internal/manifest"
	"github.com/tomtom215/lectern/internal/profile"
	"github.com/tomtom215/lectern/internal/remote"
)

var applyFlags struct {
	manifestPath string
	manifestsDir string
	feedback     string
	fromQueue    string
	fromStore    string
	fromRemote   string
	apiKey       string
	runID        string
	profilePath  string
	dryRun       bool
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply pending feedback events to the preference profile",
	Long: `Apply drains feedback events from one source, resolves each item to its
canonical paper id, and applies decisive labels to the preference profile.
Every event settles as applied or rejected; the batch report is printed
as JSON.

Usage:
  lectern apply --feedback review.json --manifest manifest.json --profile profile.json
  lectern apply --from-queue clicks.jsonl --manifests-dir /data/manifests --profile profile.json
  lectern apply --from-store /data/lectern.duckdb --run-id 2026-08-21T07-30-00Z --profile profile.json
  lectern apply --from-remote https://relay.example.com --api-key k --manifest m.json --profile p.json --dry-run`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

func init() {
	f := applyCmd.Flags()
	f.StringVar(&applyFlags.manifestPath, "manifest", "", "Path to a single run manifest JSON")
	f.StringVar(&applyFlags.manifestsDir, "manifests-dir", "", "Directory of per-run manifests (run_feedback_manifest_<run_id>.json)")
	f.StringVar(&applyFlags.feedback, "feedback", "", "Questionnaire file to apply")
	f.StringVar(&applyFlags.fromQueue, "from-queue", "", "Queue file (JSON array or JSONL) to apply")
	f.StringVar(&applyFlags.fromStore, "from-store", "", "DuckDB event store path to drain")
	f.StringVar(&applyFlags.fromRemote, "from-remote", "", "Remote feedback relay URL to drain")
	f.StringVar(&applyFlags.apiKey, "api-key", "", "API key for the remote relay")
	f.StringVar(&applyFlags.runID, "run-id", "", "Restrict the batch to one run")
	f.StringVar(&applyFlags.profilePath, "profile", "", "Preference profile path (required)")
	f.BoolVar(&applyFlags.dryRun, "dry-run", false, "Report without settling events or writing the profile")
	_ = applyCmd.MarkFlagRequired("profile")
}

func runApply(cmd *cobra.Command, _ []string) error {
	source, cleanup, err := applySource()
	if err != nil {
		return err
	}
	defer cleanup()

	resolver, err := applyResolver()
	if err != nil {
		return err
	}

	report, err := apply.NewEngine().Apply(cmd.Context(), apply.Request{
		RunID:     applyFlags.runID,
		DryRun:    applyFlags.dryRun,
		Trigger:   apply.TriggerCLI,
		Source:    source,
		Manifests: resolver,
		Profile:   profile.NewStore(applyFlags.profilePath),
	})
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// applySource builds the event source selected by the flags. Exactly one
// source flag must be set.
func applySource() (apply.EventSource, func(), error) {
	noop := func() {}

	set := 0
	for _, v := range []string{applyFlags.feedback, applyFlags.fromQueue, applyFlags.fromStore, applyFlags.fromRemote} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, noop, fmt.Errorf("exactly one of --feedback, --from-queue, --from-store, --from-remote is required")
	}

	switch {
	case applyFlags.feedback != "":
		return apply.NewQuestionnaireSource(applyFlags.feedback), noop, nil

	case applyFlags.fromQueue != "":
		return apply.NewQueueSource(applyFlags.fromQueue), noop, nil

	case applyFlags.fromStore != "":
		db, err := database.New(&config.DatabaseConfig{Path: applyFlags.fromStore})
		if err != nil {
			return nil, noop, fmt.Errorf("open event store: %w", err)
		}
		return db, func() { _ = db.Close() }, nil

	default:
		return remote.NewClient(&config.RemoteConfig{
			URL:    applyFlags.fromRemote,
			APIKey: applyFlags.apiKey,
		}), noop, nil
	}
}

// applyResolver builds the manifest resolver, or nil when no manifest
// flag is set (only self-resolved events will apply).
func applyResolver() (apply.ManifestResolver, error) {
	if applyFlags.manifestPath != "" && applyFlags.manifestsDir != "" {
		return nil, fmt.Errorf("--manifest and --manifests-dir are mutually exclusive")
	}
	if applyFlags.manifestPath != "" {
		m, err := manifest.LoadFile(applyFlags.manifestPath)
		if err != nil {
			return nil, fmt.Errorf("load manifest: %w", err)
		}
		return apply.FixedManifest{Manifest: m}, nil
	}
	if applyFlags.manifestsDir != "" {
		return manifest.NewDir(applyFlags.manifestsDir), nil
	}
	return nil, nil
}
