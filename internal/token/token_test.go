// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/lectern/internal/models"
)

var (
	testSecret  = []byte("0123456789abcdef0123456789abcdef")
	wrongSecret = []byte("fedcba9876543210fedcba9876543210")
	testNow     = time.Date(2026, 8, 21, 7, 30, 0, 0, time.UTC)
)

// testClaim returns a claim that verifies cleanly at testNow.
func testClaim() Claim {
	return Claim{
		RunID:           "2026-08-21T07-30-00Z",
		ItemID:          "p03",
		Label:           models.LabelPositive,
		SemanticPaperID: "CorpusId:235458009",
		Reviewer:        "tom",
		ExpiresAt:       testNow.Add(45 * 24 * time.Hour).Unix(),
	}
}

func mustSign(t *testing.T, claim Claim, secret []byte) string {
	t.Helper()
	tok, err := Sign(claim, secret)
	if err != nil {
		t.Fatalf("Sign() error = %v", err)
	}
	return tok
}

// signBytes computes the raw MAC for hand-built payloads.
func signBytes(payload, secret []byte) []byte {
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	return mac.Sum(nil)
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	want := testClaim()
	tok := mustSign(t, want, testSecret)

	got, err := Verify(tok, testSecret, testNow)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if got != want {
		t.Errorf("Verify() = %+v, want %+v", got, want)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	t.Parallel()

	tok := mustSign(t, testClaim(), testSecret)

	_, err := Verify(tok, wrongSecret, testNow)
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("Verify() error = %v, want ErrSignatureMismatch", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	t.Parallel()

	claim := testClaim()
	claim.ExpiresAt = testNow.Add(-time.Hour).Unix()
	tok := mustSign(t, claim, testSecret)

	// Correct signature, past expiry.
	_, err := Verify(tok, testSecret, testNow)
	if !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify() error = %v, want ErrTokenExpired", err)
	}
}

func TestVerifyExpiredWithWrongSecret(t *testing.T) {
	t.Parallel()

	// Signature is checked before expiry: an expired token signed with a
	// different secret reports the signature problem, not the expiry.
	claim := testClaim()
	claim.ExpiresAt = testNow.Add(-time.Hour).Unix()
	tok := mustSign(t, claim, testSecret)

	_, err := Verify(tok, wrongSecret, testNow)
	if !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("Verify() error = %v, want ErrSignatureMismatch before expiry check", err)
	}
}

func TestVerifyExpiryBoundary(t *testing.T) {
	t.Parallel()

	claim := testClaim()
	claim.ExpiresAt = testNow.Unix()
	tok := mustSign(t, claim, testSecret)

	// A claim expiring exactly now is expired.
	if _, err := Verify(tok, testSecret, testNow); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Verify() at expiry instant error = %v, want ErrTokenExpired", err)
	}

	// One second earlier it still verifies.
	if _, err := Verify(tok, testSecret, testNow.Add(-time.Second)); err != nil {
		t.Errorf("Verify() before expiry error = %v, want nil", err)
	}
}

func TestVerifyMalformed(t *testing.T) {
	t.Parallel()

	valid := mustSign(t, testClaim(), testSecret)

	tests := []struct {
		name string
		tok  string
	}{
		{name: "empty", tok: ""},
		{name: "no delimiter", tok: strings.ReplaceAll(valid, ".", "")},
		{name: "duplicated delimiter", tok: valid + ".extra"},
		{name: "invalid base64 payload", tok: "!!!." + strings.Split(valid, ".")[1]},
		{name: "invalid base64 signature", tok: strings.Split(valid, ".")[0] + ".!!!"},
		{name: "padded base64", tok: valid + "=="},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Verify(tt.tok, testSecret, testNow)
			if !errors.Is(err, ErrMalformedToken) {
				t.Errorf("Verify(%q) error = %v, want ErrMalformedToken", tt.tok, err)
			}
		})
	}

	// A bare delimiter splits cleanly into two empty segments; it fails at
	// the signature stage, not the structure stage.
	t.Run("only delimiter", func(t *testing.T) {
		t.Parallel()

		_, err := Verify(".", testSecret, testNow)
		if !errors.Is(err, ErrSignatureMismatch) {
			t.Errorf("Verify(\".\") error = %v, want ErrSignatureMismatch", err)
		}
	})
}

func TestVerifyTamperedPayload(t *testing.T) {
	t.Parallel()

	tok := mustSign(t, testClaim(), testSecret)
	parts := strings.Split(tok, ".")

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}

	// Flip one bit in each payload byte in turn; the MAC must catch every
	// single-bit change.
	for i := range payload {
		tampered := make([]byte, len(payload))
		copy(tampered, payload)
		tampered[i] ^= 0x01

		forged := base64.RawURLEncoding.EncodeToString(tampered) + "." + parts[1]
		if _, err := Verify(forged, testSecret, testNow); !errors.Is(err, ErrSignatureMismatch) {
			t.Fatalf("Verify() with bit flip at payload byte %d error = %v, want ErrSignatureMismatch", i, err)
		}
	}
}

func TestVerifyTamperedSignature(t *testing.T) {
	t.Parallel()

	tok := mustSign(t, testClaim(), testSecret)
	parts := strings.Split(tok, ".")

	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		t.Fatalf("decoding signature: %v", err)
	}

	for i := range sig {
		tampered := make([]byte, len(sig))
		copy(tampered, sig)
		tampered[i] ^= 0x80

		forged := parts[0] + "." + base64.RawURLEncoding.EncodeToString(tampered)
		if _, err := Verify(forged, testSecret, testNow); !errors.Is(err, ErrSignatureMismatch) {
			t.Fatalf("Verify() with bit flip at signature byte %d error = %v, want ErrSignatureMismatch", i, err)
		}
	}
}

func TestVerifyInvalidClaim(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		claim Claim
	}{
		{
			name:  "missing run id",
			claim: Claim{ItemID: "p01", Label: models.LabelPositive, ExpiresAt: testNow.Add(time.Hour).Unix()},
		},
		{
			name:  "missing item id",
			claim: Claim{RunID: "2026-08-21T07-30-00Z", Label: models.LabelNegative, ExpiresAt: testNow.Add(time.Hour).Unix()},
		},
		{
			name:  "empty claim",
			claim: Claim{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tok := mustSign(t, tt.claim, testSecret)
			_, err := Verify(tok, testSecret, testNow)
			if !errors.Is(err, ErrInvalidClaim) {
				t.Errorf("Verify() error = %v, want ErrInvalidClaim", err)
			}
		})
	}
}

func TestVerifyNonClaimPayload(t *testing.T) {
	t.Parallel()

	// A correctly signed payload that is not a claim object fails claim
	// decoding, not signature verification.
	payload := []byte(`"just a string"`)
	sig := signBytes(payload, testSecret)
	tok := base64.RawURLEncoding.EncodeToString(payload) + "." + base64.RawURLEncoding.EncodeToString(sig)

	_, err := Verify(tok, testSecret, testNow)
	if !errors.Is(err, ErrInvalidClaim) {
		t.Errorf("Verify() error = %v, want ErrInvalidClaim", err)
	}
}

func TestVerifyLabelVariants(t *testing.T) {
	t.Parallel()

	undecided := testClaim()
	undecided.Label = models.LabelUndecided
	tok := mustSign(t, undecided, testSecret)

	// The default variant only takes decisive labels.
	if _, err := Verify(tok, testSecret, testNow); !errors.Is(err, ErrLabelNotAllowed) {
		t.Errorf("Verify() error = %v, want ErrLabelNotAllowed for undecided", err)
	}

	// The questionnaire variant accepts undecided.
	got, err := VerifyWithLabels(tok, testSecret, models.ValidLabels, testNow)
	if err != nil {
		t.Fatalf("VerifyWithLabels() error = %v", err)
	}
	if got.Label != models.LabelUndecided {
		t.Errorf("Label = %q, want undecided", got.Label)
	}

	// Unknown labels are rejected by every variant.
	bogus := testClaim()
	bogus.Label = models.Label("excellent")
	tok = mustSign(t, bogus, testSecret)
	if _, err := VerifyWithLabels(tok, testSecret, models.ValidLabels, testNow); !errors.Is(err, ErrLabelNotAllowed) {
		t.Errorf("VerifyWithLabels() error = %v, want ErrLabelNotAllowed for unknown label", err)
	}
}

func TestVerify015Scenario(t *testing.T) {
	t.Parallel()

	claim := Claim{
		RunID:     "r1",
		ItemID:    "p03",
		Label:     models.LabelPositive,
		ExpiresAt: testNow.Add(time.Hour).Unix(),
	}
	tok := mustSign(t, claim, []byte("S"))

	got, err := Verify(tok, []byte("S"), testNow)
	if err != nil {
		t.Fatalf("Verify() with signing secret error = %v", err)
	}
	if got != claim {
		t.Errorf("Verify() = %+v, want %+v", got, claim)
	}

	if _, err := Verify(tok, []byte("wrong-secret"), testNow); !errors.Is(err, ErrSignatureMismatch) {
		t.Errorf("Verify() with wrong secret error = %v, want ErrSignatureMismatch", err)
	}
}

func TestTokenIsURLSafe(t *testing.T) {
	t.Parallel()

	tok := mustSign(t, testClaim(), testSecret)

	if strings.ContainsAny(tok, "+/= \n") {
		t.Errorf("token %q contains characters unsafe in URLs", tok)
	}
	if strings.Count(tok, ".") != 1 {
		t.Errorf("token %q has %d delimiters, want 1", tok, strings.Count(tok, "."))
	}
}

func TestExpiryTime(t *testing.T) {
	t.Parallel()

	claim := testClaim()
	want := time.Unix(claim.ExpiresAt, 0).UTC()
	if got := claim.ExpiryTime(); !got.Equal(want) {
		t.Errorf("ExpiryTime() = %v, want %v", got, want)
	}
	if got := claim.ExpiryTime().Location(); got != time.UTC {
		t.Errorf("ExpiryTime() location = %v, want UTC", got)
	}
}

func BenchmarkSign(b *testing.B) {
	claim := Claim{
		RunID:           "2026-08-21T07-30-00Z",
		ItemID:          "p03",
		Label:           models.LabelPositive,
		SemanticPaperID: "CorpusId:235458009",
		ExpiresAt:       testNow.Add(time.Hour).Unix(),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Sign(claim, testSecret); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkVerify(b *testing.B) {
	claim := Claim{
		RunID:           "2026-08-21T07-30-00Z",
		ItemID:          "p03",
		Label:           models.LabelPositive,
		SemanticPaperID: "CorpusId:235458009",
		ExpiresAt:       testNow.Add(time.Hour).Unix(),
	}
	tok, err := Sign(claim, testSecret)
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Verify(tok, testSecret, testNow); err != nil {
			b.Fatal(err)
		}
	}
}
