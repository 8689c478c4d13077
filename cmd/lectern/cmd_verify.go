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

	"github.com/tomtom215/lectern/internal/models"
	"github.com/tomtom215/lectern/internal/token"
)

var verifyFlags struct {
	secret         string
	token          string
	allowUndecided bool
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a signed feedback token and print its claim",
	Long: `Verify checks a feedback token against the signing secret and prints the
decoded claim, or the rejection reason. Useful for debugging links from a
digest email.

Usage:
  lectern verify --secret "$FEEDBACK_SECRET" --token "$TOKEN"`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	f := verifyCmd.Flags()
	f.StringVar(&verifyFlags.secret, "secret", "", "HMAC signing secret (required)")
	f.StringVar(&verifyFlags.token, "token", "", "Token to verify (required)")
	f.BoolVar(&verifyFlags.allowUndecided, "allow-undecided", false, "Accept undecided labels")
	_ = verifyCmd.MarkFlagRequired("secret")
	_ = verifyCmd.MarkFlagRequired("token")
}

func runVerify(cmd *cobra.Command, _ []string) error {
	allowed := models.DecisiveLabels
	if verifyFlags.allowUndecided {
		allowed = models.ValidLabels
	}

	claim, err := token.VerifyWithLabels(verifyFlags.token, []byte(verifyFlags.secret), allowed, time.Now())
	if err != nil {
		return fmt.Errorf("token rejected: %w", err)
	}

	out := struct {
		token.Claim
		ExpiresAtTime time.Time `json:"expires_at_time"`
	}{
		Claim:         claim,
		ExpiresAtTime: claim.ExpiryTime().UTC(),
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal claim: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
