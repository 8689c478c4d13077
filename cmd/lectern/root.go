// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/lectern/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	logLevel  string
	logFormat string
}

var rootCmd = &cobra.Command{
	Use:   "lectern",
	Short: "Feedback and preference memory for recurring reading-feed runs",
	Long: "Lectern applies reviewer feedback to a preference profile, mints signed\n" +
		"feedback links, and maintains the anti-repetition seen store that keeps\n" +
		"recommended papers from reappearing across runs.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Config{
			Level:  rootFlags.logLevel,
			Format: rootFlags.logFormat,
		})
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "console", "Log format: json or console")

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(questionnaireCmd)
	rootCmd.AddCommand(memoryCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
