// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

// Package token implements the signed feedback link codec.
//
// A feedback token carries one claim: a reviewer's verdict on one item in
// one run. Tokens are minted when a report is rendered and travel inside
// mailto/GET links, so they must survive URL contexts unescaped and verify
// without any server-side state beyond the shared secret.
//
// # Wire Format
//
//	base64url(payload) "." base64url(HMAC-SHA256(payload))
//
// Both segments use unpadded URL-safe base64. The payload is the claim
// serialized as JSON; the MAC is computed over the raw payload bytes with
// the shared secret as the key.
//
// # Verification Order
//
// Verify checks the token in a fixed order and reports the first failure:
//
//  1. structure: exactly one delimiter, both segments decodable (ErrMalformedToken)
//  2. signature: constant-time MAC comparison (ErrSignatureMismatch)
//  3. claim shape: payload decodes, run_id and item_id present (ErrInvalidClaim)
//  4. label: within the accepted set for the endpoint variant (ErrLabelNotAllowed)
//  5. expiry: expires_at not yet passed (ErrTokenExpired)
//
// Signature verification precedes all payload inspection: an expired token
// with a bad signature reports ErrSignatureMismatch, never ErrTokenExpired.
// Payload contents are untrusted until the MAC holds.
//
// All functions are pure; callers supply the clock.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/lectern/internal/models"
)

// Token verification errors, ordered by verification stage.
var (
	// ErrMalformedToken indicates the token structure is wrong: missing or
	// duplicated delimiter, or a segment that is not valid base64url.
	ErrMalformedToken = errors.New("malformed token")

	// ErrSignatureMismatch indicates the MAC does not match the payload.
	ErrSignatureMismatch = errors.New("signature mismatch")

	// ErrTokenExpired indicates the claim's expires_at has passed.
	ErrTokenExpired = errors.New("token expired")

	// ErrInvalidClaim indicates the payload is not a claim: undecodable
	// JSON or missing run_id/item_id.
	ErrInvalidClaim = errors.New("invalid claim")

	// ErrLabelNotAllowed indicates a recognized claim whose label is
	// outside the set accepted by this endpoint variant.
	ErrLabelNotAllowed = errors.New("label not allowed")
)

// Claim is the payload of a signed feedback token.
//
// ExpiresAt is Unix seconds rather than a formatted timestamp to keep the
// encoded token short enough for mail clients that truncate long hrefs.
type Claim struct {
	RunID           string       `json:"run_id"`
	ItemID          string       `json:"item_id"`
	Label           models.Label `json:"label"`
	SemanticPaperID string       `json:"semantic_paper_id,omitempty"`
	Reviewer        string       `json:"reviewer,omitempty"`
	ExpiresAt       int64        `json:"expires_at"`
}

// ExpiryTime returns the claim expiry as a time.Time in UTC.
func (c Claim) ExpiryTime() time.Time {
	return time.Unix(c.ExpiresAt, 0).UTC()
}

// Expired reports whether the claim has expired at the given instant.
// A claim expiring exactly now is treated as expired.
func (c Claim) Expired(now time.Time) bool {
	return now.Unix() >= c.ExpiresAt
}

// Sign serializes the claim and returns the signed token string.
//
// Sign does not validate the claim; tokens for incomplete claims can be
// minted but will fail Verify. This keeps Sign usable in tests that need
// deliberately broken tokens.
func Sign(claim Claim, secret []byte) (string, error) {
	payload, err := json.Marshal(claim)
	if err != nil {
		return "", fmt.Errorf("encoding claim: %w", err)
	}

	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	sig := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(payload) +
		"." +
		base64.RawURLEncoding.EncodeToString(sig), nil
}

// Verify checks a token against the secret and returns the claim. Only
// decisive labels (positive, negative) are accepted; questionnaire-style
// endpoints that also take undecided use VerifyWithLabels.
func Verify(tok string, secret []byte, now time.Time) (Claim, error) {
	return VerifyWithLabels(tok, secret, models.DecisiveLabels, now)
}

// VerifyWithLabels checks a token against the secret, accepting any label
// in allowed. See the package comment for the verification order.
func VerifyWithLabels(tok string, secret []byte, allowed []models.Label, now time.Time) (Claim, error) {
	parts := strings.Split(tok, ".")
	if len(parts) != 2 {
		return Claim{}, ErrMalformedToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return Claim{}, ErrMalformedToken
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return Claim{}, ErrMalformedToken
	}

	// The MAC is checked before the payload is even parsed. hmac.Equal is
	// constant-time, so verification cost does not depend on where the
	// signatures first differ.
	mac := hmac.New(sha256.New, secret)
	mac.Write(payload)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return Claim{}, ErrSignatureMismatch
	}

	var claim Claim
	if err := json.Unmarshal(payload, &claim); err != nil {
		return Claim{}, fmt.Errorf("%w: %s", ErrInvalidClaim, "payload is not a claim")
	}
	if claim.RunID == "" || claim.ItemID == "" {
		return Claim{}, fmt.Errorf("%w: %s", ErrInvalidClaim, "missing run_id/item_id")
	}

	if !labelAllowed(claim.Label, allowed) {
		return Claim{}, ErrLabelNotAllowed
	}

	if claim.Expired(now) {
		return Claim{}, ErrTokenExpired
	}

	return claim, nil
}

func labelAllowed(label models.Label, allowed []models.Label) bool {
	for _, l := range allowed {
		if label == l {
			return true
		}
	}
	return false
}
