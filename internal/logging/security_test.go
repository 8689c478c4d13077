// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"short token fully masked", "abc123", "***"},
		{"boundary fully masked", "123456789012", "***"},
		{"long token keeps edges", "eyJydW5faWQiOiIyMDI2LTA4In0", "eyJy...4In0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeToken(tt.input); got != tt.want {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeUsername(t *testing.T) {
	if got := SanitizeUsername("johndoe"); got != "jo***" {
		t.Errorf("expected 'jo***', got %q", got)
	}
	if got := SanitizeUsername("jo"); got != "***" {
		t.Errorf("expected '***' for short username, got %q", got)
	}
	if got := SanitizeUsername(""); got != "" {
		t.Errorf("expected empty result, got %q", got)
	}
}

func TestSanitizeError(t *testing.T) {
	if got := SanitizeError("invalid password for user"); got != "authentication error" {
		t.Errorf("expected sensitive error to be replaced, got %q", got)
	}
	if got := SanitizeError("connection refused"); got != "connection refused" {
		t.Errorf("expected benign error preserved, got %q", got)
	}

	long := strings.Repeat("x", 300)
	if got := SanitizeError(long); len(got) != 203 {
		t.Errorf("expected long error truncated to 203 chars, got %d", len(got))
	}
}

func TestSanitizeValue(t *testing.T) {
	if got := SanitizeValue("api_key", "sk-aaaaaaaaaaaaaaaa"); got == "sk-aaaaaaaaaaaaaaaa" {
		t.Error("expected api_key value to be masked")
	}
	if got := SanitizeValue("run_id", "2026-08-21T07-30-00Z"); got != "2026-08-21T07-30-00Z" {
		t.Errorf("expected benign value preserved, got %q", got)
	}
}

func TestSecurityLoggerMasksSensitiveFields(t *testing.T) {
	var buf bytes.Buffer
	secLogger := NewSecurityLoggerWithLogger(NewTestLogger(&buf))

	secLogger.LogLoginFailure("johndoe", "jwt", "10.0.0.1", "curl/8.0", "bad password attempt")

	output := buf.String()
	if strings.Contains(output, "johndoe") {
		t.Errorf("expected username masked, got: %s", output)
	}
	if !strings.Contains(output, `"username":"jo***"`) {
		t.Errorf("expected masked username field, got: %s", output)
	}
	if !strings.Contains(output, `"error":"authentication error"`) {
		t.Errorf("expected sanitized error, got: %s", output)
	}
	if !strings.Contains(output, `"event":"login_failed"`) {
		t.Errorf("expected login_failed event, got: %s", output)
	}
}

func TestSecurityLoggerTokenRejected(t *testing.T) {
	var buf bytes.Buffer
	secLogger := NewSecurityLoggerWithLogger(NewTestLogger(&buf))

	token := "eyJydW5faWQiOiIyMDI2LTA4LTIxIn0.c2lnbmF0dXJl"
	secLogger.LogTokenRejected(token, "invalid signature", "10.0.0.1")

	output := buf.String()
	if strings.Contains(output, token) {
		t.Errorf("expected full token to never appear in logs, got: %s", output)
	}
	if !strings.Contains(output, `"event":"token_rejected"`) {
		t.Errorf("expected token_rejected event, got: %s", output)
	}
}
