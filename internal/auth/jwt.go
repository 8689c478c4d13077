// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/lectern/internal/config"
)

// JWT validation errors.
var (
	// ErrTokenInvalid indicates a token that failed parsing, signature
	// verification, or expiry checks.
	ErrTokenInvalid = errors.New("invalid token")

	// ErrUnexpectedSigningMethod indicates a token signed with an
	// algorithm other than HMAC. Rejecting these prevents algorithm
	// confusion attacks (e.g. alg=none or an RS256 public key used as
	// an HMAC secret).
	ErrUnexpectedSigningMethod = errors.New("unexpected signing method")
)

// Claims carries the authenticated identity inside a session token.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// JWTManager mints and validates admin session tokens. Tokens are
// HS256-signed and stateless; revocation before expiry is not supported,
// which is acceptable for a single-operator tool with short sessions.
type JWTManager struct {
	secret  []byte
	timeout time.Duration
}

// NewJWTManager builds a manager from the security configuration. The
// secret length is enforced by config validation; this constructor only
// refuses an empty one so a zero-value config cannot mint tokens.
func NewJWTManager(cfg *config.SecurityConfig) (*JWTManager, error) {
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required but was empty")
	}

	timeout := cfg.SessionTimeout
	if timeout <= 0 {
		timeout = 24 * time.Hour
	}

	return &JWTManager{
		secret:  []byte(cfg.JWTSecret),
		timeout: timeout,
	}, nil
}

// GenerateToken mints a signed session token for username with the given
// role, valid for the configured session timeout.
func (m *JWTManager) GenerateToken(username, role string) (string, time.Time, error) {
	return m.GenerateTokenWithTimeout(username, role, m.timeout)
}

// GenerateTokenWithTimeout mints a token with an explicit validity
// window. Used for remember-me logins that outlive the default session.
func (m *JWTManager) GenerateTokenWithTimeout(username, role string, timeout time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(timeout)

	claims := &Claims{
		Username: username,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken parses and verifies a session token, returning its
// claims. Signature, algorithm, expiry, and not-before are all checked.
func (m *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedSigningMethod, token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
