// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package token

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

// FuzzVerify tests token verification against malformed, tampered, and
// malicious inputs.
func FuzzVerify(f *testing.F) {
	secret := []byte("fuzz-secret-0123456789abcdef0123")
	now := time.Date(2026, 8, 21, 7, 30, 0, 0, time.UTC)

	valid, err := Sign(Claim{
		RunID:     "2026-08-21T07-30-00Z",
		ItemID:    "p03",
		Label:     models.LabelPositive,
		ExpiresAt: now.Add(time.Hour).Unix(),
	}, secret)
	if err != nil {
		f.Fatal(err)
	}

	// Seed corpus with known valid and invalid tokens
	f.Add(valid)                          // Valid token
	f.Add("")                             // Empty string
	f.Add(".")                            // Bare delimiter
	f.Add("..")                           // Two delimiters
	f.Add("not-a-token")                  // No delimiter
	f.Add(valid + ".extra")               // Extra segment
	f.Add(valid[:len(valid)-3])           // Truncated signature
	f.Add(strings.ToUpper(valid))         // Case-mangled
	f.Add("!!!.!!!")                      // Invalid base64 both sides
	f.Add("\x00" + valid)                 // Null byte prefix
	f.Add(valid + "\x00")                 // Null byte suffix
	f.Add(strings.Repeat("A", 10000))     // Very long input
	f.Add("eyJydW5faWQiOiJyMSJ9.c2ln")    // Well-formed, wrong signature

	f.Fuzz(func(t *testing.T, tok string) {
		// Verification should never panic, regardless of input.
		claim, err := Verify(tok, secret, now)

		if err != nil {
			return
		}

		// Anything that verifies must be a complete, in-date claim.
		if claim.RunID == "" || claim.ItemID == "" {
			t.Errorf("Verify accepted claim with missing ids: %+v", claim)
		}
		if !claim.Label.IsDecisive() {
			t.Errorf("Verify accepted non-decisive label %q", claim.Label)
		}
		if claim.Expired(now) {
			t.Error("Verify accepted expired claim")
		}

		// A verified claim must round-trip through the codec.
		resigned, err := Sign(claim, secret)
		if err != nil {
			t.Fatalf("Sign() on verified claim: %v", err)
		}
		if _, err := Verify(resigned, secret, now); err != nil {
			t.Errorf("re-signed token failed verification: %v", err)
		}
	})
}
