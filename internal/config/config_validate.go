// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validation bounds. Values outside these ranges almost always indicate a
// typo in an environment variable rather than an intentional setting.
const (
	minPort = 1
	maxPort = 65535

	minFeedbackSecretLength = 16
	minJWTSecretLength      = 32

	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour

	minApplyInterval = time.Second
	maxApplyBatch    = 10000

	minJanitorInterval = time.Second
)

// placeholderPatterns flags secrets that were copied from documentation
// instead of generated.
var placeholderPatterns = []string{
	"CHANGEME",
	"CHANGE_ME",
	"REPLACE",
	"EXAMPLE",
	"YOUR_SECRET",
	"YOUR-SECRET",
	"INSERT",
	"TODO",
	"XXX",
}

// validAuthModes defines the allowed authentication modes.
var validAuthModes = map[string]bool{
	"none":  true,
	"jwt":   true,
	"basic": true,
}

// validMemoryBackends defines the allowed seen-store backends.
var validMemoryBackends = map[string]bool{
	"memory": true,
	"file":   true,
	"badger": true,
}

// validFeedbackSources defines the recognized feedback source labels.
var validFeedbackSources = map[string]bool{
	"email_link":    true,
	"web_viewer":    true,
	"questionnaire": true,
	"queue":         true,
	"remote":        true,
}

// validLogLevels defines the accepted LOG_LEVEL values.
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for errors. It returns the first
// problem found, naming the environment variable to fix.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateFeedback,
		c.validateMemory,
		c.validateProfile,
		c.validateManifests,
		c.validateApply,
		c.validateRemote,
		c.validateAPI,
		c.validateSecurity,
		c.validateLogging,
	}

	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < minPort || c.Server.Port > maxPort {
		return fmt.Errorf("HTTP_PORT must be between %d and %d", minPort, maxPort)
	}
	if c.Server.Host == "" {
		return fmt.Errorf("HTTP_HOST cannot be empty")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("ENVIRONMENT must be development or production")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH cannot be empty")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS cannot be negative")
	}
	return nil
}

func (c *Config) validateFeedback() error {
	if err := c.validateFeedbackSecret(); err != nil {
		return err
	}
	if c.Feedback.TokenTTL <= 0 {
		return fmt.Errorf("FEEDBACK_TOKEN_TTL must be positive")
	}
	if c.Feedback.BaseURL != "" {
		if err := validateHTTPURL(c.Feedback.BaseURL, "FEEDBACK_BASE_URL"); err != nil {
			return err
		}
	}
	for _, src := range c.Feedback.AllowedSources {
		if !validFeedbackSources[src] {
			return fmt.Errorf("FEEDBACK_ALLOWED_SOURCES contains unknown source %q", src)
		}
	}
	return nil
}

func (c *Config) validateFeedbackSecret() error {
	if c.Feedback.Secret == "" {
		return fmt.Errorf("FEEDBACK_SECRET is required")
	}
	if len(c.Feedback.Secret) < minFeedbackSecretLength {
		return fmt.Errorf("FEEDBACK_SECRET must be at least %d characters", minFeedbackSecretLength)
	}
	if containsPlaceholder(c.Feedback.Secret) {
		return fmt.Errorf("FEEDBACK_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

func (c *Config) validateMemory() error {
	if !validMemoryBackends[c.Memory.Backend] {
		return fmt.Errorf("MEMORY_BACKEND must be one of: memory, file, badger")
	}
	if c.Memory.Backend != "memory" && c.Memory.Path == "" {
		return fmt.Errorf("MEMORY_PATH is required when MEMORY_BACKEND=%s", c.Memory.Backend)
	}
	if c.Memory.MaxIDs <= 0 {
		return fmt.Errorf("MEMORY_MAX_IDS must be positive")
	}
	if c.Memory.TTLDays < 0 {
		return fmt.Errorf("MEMORY_TTL_DAYS cannot be negative (0 disables expiry)")
	}
	if c.Memory.JanitorInterval < minJanitorInterval {
		return fmt.Errorf("MEMORY_JANITOR_INTERVAL must be at least %v", minJanitorInterval)
	}
	return nil
}

func (c *Config) validateProfile() error {
	if c.Profile.Path == "" {
		return fmt.Errorf("PROFILE_PATH cannot be empty")
	}
	return nil
}

func (c *Config) validateManifests() error {
	if c.Manifests.Dir == "" {
		return fmt.Errorf("MANIFESTS_DIR cannot be empty")
	}
	return nil
}

func (c *Config) validateApply() error {
	if !c.Apply.Enabled {
		return nil
	}
	if c.Apply.Interval < minApplyInterval {
		return fmt.Errorf("APPLY_INTERVAL must be at least %v", minApplyInterval)
	}
	if c.Apply.BatchSize < 1 || c.Apply.BatchSize > maxApplyBatch {
		return fmt.Errorf("APPLY_BATCH_SIZE must be between 1 and %d", maxApplyBatch)
	}
	return nil
}

func (c *Config) validateRemote() error {
	if c.Remote.URL == "" {
		return nil // Relay disabled
	}
	if err := validateHTTPURL(c.Remote.URL, "REMOTE_URL"); err != nil {
		return err
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("REMOTE_TIMEOUT must be positive")
	}
	if c.Remote.RateLimitRPS <= 0 {
		return fmt.Errorf("REMOTE_RATE_LIMIT_RPS must be positive")
	}
	if c.Remote.RateLimitBurst < 1 {
		return fmt.Errorf("REMOTE_RATE_LIMIT_BURST must be at least 1")
	}
	if c.Remote.BreakerMaxFailures < 1 {
		return fmt.Errorf("REMOTE_BREAKER_MAX_FAILURES must be at least 1")
	}
	if c.Remote.BreakerOpenTimeout <= 0 {
		return fmt.Errorf("REMOTE_BREAKER_OPEN_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.DefaultPageSize < 1 {
		return fmt.Errorf("API_DEFAULT_PAGE_SIZE must be at least 1")
	}
	if c.API.MaxPageSize < c.API.DefaultPageSize {
		return fmt.Errorf("API_MAX_PAGE_SIZE must be >= API_DEFAULT_PAGE_SIZE")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if err := c.validateAuthMode(); err != nil {
		return err
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateAuthModeConfig()
}

func (c *Config) validateAuthMode() error {
	if !validAuthModes[c.Security.AuthMode] {
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt, basic")
	}

	// Refuse to start with AUTH_MODE=none in production. This prevents
	// accidental deployment of an open admin API.
	if c.Security.AuthMode == "none" && c.IsProduction() {
		return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production. " +
			"Either set AUTH_MODE to a secure option (jwt, basic) " +
			"or use ENVIRONMENT=development for testing purposes")
	}

	return nil
}

func (c *Config) validateAuthModeConfig() error {
	switch c.Security.AuthMode {
	case "jwt":
		if err := c.validateJWTSecret(); err != nil {
			return err
		}
		return c.validateAdminCredentials("jwt")
	case "basic":
		return c.validateAdminCredentials("basic")
	default:
		return nil // "none" mode has no additional validation
	}
}

func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required when AUTH_MODE is jwt")
	}
	if len(c.Security.JWTSecret) < minJWTSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for security", minJWTSecretLength)
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

func (c *Config) validateAdminCredentials(authMode string) error {
	if c.Security.AdminUsername == "" {
		return fmt.Errorf("ADMIN_USERNAME is required when AUTH_MODE is %s", authMode)
	}
	if c.Security.AdminPasswordHash == "" {
		return fmt.Errorf("ADMIN_PASSWORD_HASH is required when AUTH_MODE is %s", authMode)
	}
	if !isBcryptHash(c.Security.AdminPasswordHash) {
		return fmt.Errorf("ADMIN_PASSWORD_HASH must be a bcrypt hash - generate one with: htpasswd -bnBC 12 '' 'password' | tr -d ':\\n'")
	}
	return nil
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateCORS() error {
	// Wildcard CORS combined with authentication is a credential theft
	// vector; refuse the combination in production.
	if c.Security.AuthMode != "none" && c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production with authentication enabled. " +
			"Either set specific origins: CORS_ORIGINS=https://yourdomain.com " +
			"or use ENVIRONMENT=development for testing purposes")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// containsPlaceholder reports whether a secret looks like documentation
// boilerplate rather than a generated value.
func containsPlaceholder(value string) bool {
	upper := strings.ToUpper(value)
	for _, pattern := range placeholderPatterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}
	return false
}

// isBcryptHash reports whether s has the shape of a bcrypt hash. It checks
// the version prefix only; cost and salt are validated by bcrypt itself at
// comparison time.
func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") ||
		strings.HasPrefix(s, "$2b$") ||
		strings.HasPrefix(s, "$2y$")
}
