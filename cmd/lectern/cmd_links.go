// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package main

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/lectern/internal/manifest"
)

var linksFlags struct {
	manifestPath string
	secret       string
	baseURL      string
	ttl          time.Duration
	reviewer     string
}

var linksCmd = &cobra.Command{
	Use:   "links",
	Short: "Mint signed feedback links for a run manifest",
	Long: `Links signs a positive and a negative one-click feedback URL for every
item in a run manifest and prints them as JSON. The delivery pipeline
embeds these URLs in the digest email.

Usage:
  lectern links --manifest manifest.json --secret "$FEEDBACK_SECRET" \
    --base-url https://lectern.example.com`,
	Args: cobra.NoArgs,
	RunE: runLinks,
}

func init() {
	f := linksCmd.Flags()
	f.StringVar(&linksFlags.manifestPath, "manifest", "", "Path to the run manifest JSON (required)")
	f.StringVar(&linksFlags.secret, "secret", "", "HMAC signing secret (required)")
	f.StringVar(&linksFlags.baseURL, "base-url", "", "Public feedback endpoint prefix (required)")
	f.DurationVar(&linksFlags.ttl, "ttl", 1080*time.Hour, "Token validity window")
	f.StringVar(&linksFlags.reviewer, "reviewer", "", "Reviewer embedded in every claim")
	_ = linksCmd.MarkFlagRequired("manifest")
	_ = linksCmd.MarkFlagRequired("secret")
	_ = linksCmd.MarkFlagRequired("base-url")
}

func runLinks(cmd *cobra.Command, _ []string) error {
	m, err := manifest.LoadFile(linksFlags.manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	now := time.Now()
	links, err := manifest.BuildFeedbackLinks(m, manifest.LinkOptions{
		Secret:   []byte(linksFlags.secret),
		BaseURL:  linksFlags.baseURL,
		TTL:      linksFlags.ttl,
		Reviewer: linksFlags.reviewer,
		Now:      now,
	})
	if err != nil {
		return fmt.Errorf("build links: %w", err)
	}

	out := struct {
		RunID     string                  `json:"run_id"`
		ExpiresAt time.Time               `json:"expires_at"`
		Links     []manifest.FeedbackLink `json:"links"`
	}{
		RunID:     m.RunID,
		ExpiresAt: now.Add(linksFlags.ttl).UTC(),
		Links:     links,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal links: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
