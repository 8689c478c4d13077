// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/lectern/internal/config"
)

func newTestJWTManager(t *testing.T) *JWTManager {
	t.Helper()
	m, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "test-secret-that-is-at-least-32-chars!!",
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}
	return m
}

func TestJWTManagerRequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewJWTManager(&config.SecurityConfig{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	t.Parallel()
	m := newTestJWTManager(t)

	token, expiresAt, err := m.GenerateToken("tom", "admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}
	if remaining := time.Until(expiresAt); remaining < 59*time.Minute || remaining > time.Hour {
		t.Errorf("unexpected expiry window: %v", remaining)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.Username != "tom" || claims.Role != "admin" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	t.Parallel()
	m := newTestJWTManager(t)

	other, err := NewJWTManager(&config.SecurityConfig{
		JWTSecret:      "another-secret-that-is-32-characters!!!!",
		SessionTimeout: time.Hour,
	})
	if err != nil {
		t.Fatalf("NewJWTManager failed: %v", err)
	}

	token, _, err := other.GenerateToken("tom", "admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	if _, err := m.ValidateToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateTokenExpired(t *testing.T) {
	t.Parallel()
	m := newTestJWTManager(t)

	token, _, err := m.GenerateTokenWithTimeout("tom", "admin", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateTokenWithTimeout failed: %v", err)
	}
	if _, err := m.ValidateToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for expired token, got %v", err)
	}
}

func TestValidateTokenRejectsUnsignedAlgorithm(t *testing.T) {
	t.Parallel()
	m := newTestJWTManager(t)

	// alg=none token with valid claim structure.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Username: "tom", Role: "admin"})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing unsigned token failed: %v", err)
	}

	if _, err := m.ValidateToken(tokenString); err == nil {
		t.Fatal("expected rejection of alg=none token")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	t.Parallel()
	m := newTestJWTManager(t)

	for _, tok := range []string{"", "garbage", "a.b", strings.Repeat("x", 4096)} {
		if _, err := m.ValidateToken(tok); err == nil {
			t.Errorf("expected error for token %q", tok)
		}
	}
}
