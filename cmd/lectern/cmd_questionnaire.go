// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/lectern/internal/manifest"
)

var questionnaireFlags struct {
	manifestPath string
	out          string
}

var questionnaireCmd = &cobra.Command{
	Use:   "questionnaire",
	Short: "Export an offline review template for a run",
	Long: `Questionnaire exports a review template with one row per manifest item,
every label set to undecided. Edit the labels by hand, then feed the file
back through "lectern apply --feedback".

Usage:
  lectern questionnaire --manifest manifest.json --out review.json`,
	Args: cobra.NoArgs,
	RunE: runQuestionnaire,
}

func init() {
	f := questionnaireCmd.Flags()
	f.StringVar(&questionnaireFlags.manifestPath, "manifest", "", "Path to the run manifest JSON (required)")
	f.StringVar(&questionnaireFlags.out, "out", "", "Output path for the template (required)")
	_ = questionnaireCmd.MarkFlagRequired("manifest")
	_ = questionnaireCmd.MarkFlagRequired("out")
}

func runQuestionnaire(cmd *cobra.Command, _ []string) error {
	m, err := manifest.LoadFile(questionnaireFlags.manifestPath)
	if err != nil {
		return fmt.Errorf("load manifest: %w", err)
	}

	q := manifest.BuildQuestionnaire(m)
	if err := manifest.SaveQuestionnaire(questionnaireFlags.out, q); err != nil {
		return fmt.Errorf("write questionnaire: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Questionnaire for run %s written to %s (%d items)\n",
		m.RunID, questionnaireFlags.out, len(q.Reviews))
	return nil
}
