// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/lectern/internal/manifest"
	"github.com/tomtom215/lectern/internal/memory"
	"github.com/tomtom215/lectern/internal/models"
)

var memoryFlags struct {
	memoryPath   string
	manifestPath string
	reportPath   string
	maxIDs       int
	ttlDays      int
}

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and maintain the anti-repetition seen store",
}

var memoryMarkCmd = &cobra.Command{
	Use:   "mark",
	Short: "Mark a run's delivered items as seen",
	Long: `Mark records the manifest entries that actually appeared in the rendered
report as seen, so later runs suppress them. Entries whose URL is absent
from the report HTML were cut before delivery and stay unmarked.

Usage:
  lectern memory mark --memory seen.json --manifest manifest.json --report report.html`,
	Args: cobra.NoArgs,
	RunE: runMemoryMark,
}

var memoryPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Drop expired and over-cap entries from the seen store",
	Args:  cobra.NoArgs,
	RunE:  runMemoryPrune,
}

var memoryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print seen store statistics",
	Args:  cobra.NoArgs,
	RunE:  runMemoryStats,
}

func init() {
	pf := memoryCmd.PersistentFlags()
	pf.StringVar(&memoryFlags.memoryPath, "memory", "", "Seen store file path (required)")
	pf.IntVar(&memoryFlags.maxIDs, "max-ids", 0, "Entry cap (0 = default)")
	pf.IntVar(&memoryFlags.ttlDays, "ttl-days", -1, "Suppression window in days (0 disables expiry, -1 = default)")
	_ = memoryCmd.MarkPersistentFlagRequired("memory")

	f := memoryMarkCmd.Flags()
	f.StringVar(&memoryFlags.manifestPath, "manifest", "", "Path to the run manifest JSON (required)")
	f.StringVar(&memoryFlags.reportPath, "report", "", "Rendered report HTML path (required)")
	_ = memoryMarkCmd.MarkFlagRequired("manifest")
	_ = memoryMarkCmd.MarkFlagRequired("report")

	memoryCmd.AddCommand(memoryMarkCmd)
	memoryCmd.AddCommand(memoryPruneCmd)
	memoryCmd.AddCommand(memoryStatsCmd)
}

// openSeenStore opens the file-backed seen store named by the persistent
// flags.
func openSeenStore() (memory.SeenStore, error) {
	store, err := memory.Open(memory.Options{
		Backend: memory.BackendFile,
		Path:    memoryFlags.memoryPath,
		MaxIDs:  memoryFlags.maxIDs,
		TTLDays: memoryFlags.ttlDays,
	})
	if err != nil {
		return nil, fmt.Errorf("open seen store: %w", err)
	}
	return store, nil
}

func runMemoryMark(cmd *cobra.Command, _ []string) error {
	m, err := manifest.LoadFile(memoryFlags.manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}
	html, err := os.ReadFile(memoryFlags.reportPath)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}

	var ids []string
	for _, entry := range manifest.VisibleEntries(m, string(html)) {
		id := models.NormalizePaperID(entry.SemanticPaperID)
		if id == "" {
			id = manifest.NormalizeURL(entry.URL)
		}
		if id != "" {
			ids = append(ids, id)
		}
	}

	store, err := openSeenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.MarkSeen(cmd.Context(), ids, time.Now()); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Marked %d of %d manifest items as seen for run %s\n",
		len(ids), len(m.Papers), m.RunID)
	return nil
}

func runMemoryPrune(cmd *cobra.Command, _ []string) error {
	store, err := openSeenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Prune(cmd.Context(), time.Now())
	if err != nil {
		return fmt.Errorf("prune: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d entries\n", count)
	return nil
}

func runMemoryStats(cmd *cobra.Command, _ []string) error {
	store, err := openSeenStore()
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
