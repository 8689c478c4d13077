// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package auth

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// BasicAuthManager validates HTTP Basic credentials against a single
// configured username and bcrypt password hash. The hash is minted
// offline (lectern never stores or receives a plaintext admin password
// through configuration).
type BasicAuthManager struct {
	username     string
	passwordHash []byte
}

// NewBasicAuthManager builds a manager from the configured credential.
// passwordHash must be a bcrypt hash; config validation checks the
// shape, this constructor verifies it is actually parseable.
func NewBasicAuthManager(username, passwordHash string) (*BasicAuthManager, error) {
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("password hash is required")
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("password hash is not a valid bcrypt hash: %w", err)
	}

	return &BasicAuthManager{
		username:     username,
		passwordHash: []byte(passwordHash),
	}, nil
}

// ValidateCredentials checks an Authorization header carrying Basic
// credentials and returns the username when they match.
func (m *BasicAuthManager) ValidateCredentials(authHeader string) (string, error) {
	if !strings.HasPrefix(authHeader, "Basic ") {
		return "", fmt.Errorf("invalid authorization header format")
	}

	credentials, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authHeader, "Basic "))
	if err != nil {
		return "", fmt.Errorf("failed to decode credentials")
	}

	parts := strings.SplitN(string(credentials), ":", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid credentials format")
	}

	if !m.validate(parts[0], parts[1]) {
		return "", fmt.Errorf("invalid username or password")
	}
	return parts[0], nil
}

// ValidatePassword checks a bare password against the configured hash.
// Used by the JWT login endpoint, which shares the same credential.
func (m *BasicAuthManager) ValidatePassword(username, password string) bool {
	return m.validate(username, password)
}

// validate compares both parts in constant time. The username check uses
// subtle.ConstantTimeCompare; bcrypt's comparison is timing-safe by
// construction. Both comparisons always run so a username miss costs the
// same as a password miss.
func (m *BasicAuthManager) validate(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(m.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password)) == nil
	return usernameMatch && passwordMatch
}

// GetWWWAuthenticateHeader returns the challenge header sent with 401
// responses, as the HTTP spec requires.
func (m *BasicAuthManager) GetWWWAuthenticateHeader() string {
	return `Basic realm="lectern", charset="UTF-8"`
}
