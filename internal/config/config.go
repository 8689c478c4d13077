// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package config

import (
	"time"
)

// Config holds all application configuration grouped by component.
//
// Fields are populated by Load from defaults, an optional YAML file, and
// environment variables, then checked by Validate. Zero values are never
// used directly; always construct through Load or defaultConfig.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Feedback  FeedbackConfig  `koanf:"feedback"`
	Memory    MemoryConfig    `koanf:"memory"`
	Profile   ProfileConfig   `koanf:"profile"`
	Manifests ManifestsConfig `koanf:"manifests"`
	Apply     ApplyConfig     `koanf:"apply"`
	Remote    RemoteConfig    `koanf:"remote"`
	API       APIConfig       `koanf:"api"`
	Security  SecurityConfig  `koanf:"security"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development or production
}

// DatabaseConfig contains DuckDB connection settings.
type DatabaseConfig struct {
	Path        string `koanf:"path"`
	MaxMemory   string `koanf:"max_memory"`
	Threads     int    `koanf:"threads"` // 0 = runtime.NumCPU()
	SkipIndexes bool   `koanf:"skip_indexes"`
}

// FeedbackConfig contains settings for signed feedback links and the public
// ingestion endpoint.
type FeedbackConfig struct {
	// Secret is the HMAC-SHA256 signing key for feedback tokens. Required
	// whenever the server is started; links signed with a different secret
	// are rejected with a signature mismatch.
	Secret string `koanf:"secret"`

	// TokenTTL bounds how long a signed link stays valid after minting.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// BaseURL is the externally reachable prefix embedded in generated
	// links, e.g. https://lectern.example.com.
	BaseURL string `koanf:"base_url"`

	// AllowedSources restricts the src query parameter on the ingestion
	// endpoint. Unknown values fall back to email_link.
	AllowedSources []string `koanf:"allowed_sources"`

	// AllowUndecided accepts undecided labels on signed links. Off by
	// default: links are minted per decisive label.
	AllowUndecided bool `koanf:"allow_undecided"`
}

// MemoryConfig contains anti-repetition seen-store settings.
type MemoryConfig struct {
	Backend         string        `koanf:"backend"` // memory, file, or badger
	Path            string        `koanf:"path"`
	MaxIDs          int           `koanf:"max_ids"`
	TTLDays         int           `koanf:"ttl_days"` // 0 disables expiry
	JanitorInterval time.Duration `koanf:"janitor_interval"`
}

// ProfileConfig locates the preference profile file.
type ProfileConfig struct {
	Path string `koanf:"path"`
}

// ManifestsConfig locates run manifests used to resolve item positions to
// canonical paper identifiers.
type ManifestsConfig struct {
	Dir string `koanf:"dir"`
}

// ApplyConfig controls the background apply scheduler.
type ApplyConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Interval  time.Duration `koanf:"interval"`
	BatchSize int           `koanf:"batch_size"`
}

// RemoteConfig controls the remote feedback relay client. An empty URL
// disables the relay entirely.
type RemoteConfig struct {
	URL                string        `koanf:"url"`
	APIKey             string        `koanf:"api_key"`
	Timeout            time.Duration `koanf:"timeout"`
	RateLimitRPS       float64       `koanf:"rate_limit_rps"`
	RateLimitBurst     int           `koanf:"rate_limit_burst"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`
}

// APIConfig contains admin API pagination limits.
type APIConfig struct {
	DefaultPageSize int `koanf:"default_page_size"`
	MaxPageSize     int `koanf:"max_page_size"`
}

// SecurityConfig contains authentication and abuse-protection settings.
type SecurityConfig struct {
	// AuthMode selects admin API authentication: none, jwt, or basic.
	// none logs a loud warning at startup and is refused in production.
	AuthMode string `koanf:"auth_mode"`

	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`
	AdminUsername  string        `koanf:"admin_username"`

	// AdminPasswordHash is a bcrypt hash. Plaintext passwords are never
	// accepted from the environment.
	AdminPasswordHash string `koanf:"admin_password_hash"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins    []string `koanf:"cors_origins"`
	TrustedProxies []string `koanf:"trusted_proxies"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // json or console
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from defaults, an optional YAML file, and
// environment variables, validates it, and returns the result.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// IsProduction reports whether the server runs with production safety
// checks enabled.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return !c.IsProduction()
}

// AuthDisabled reports whether the admin API accepts unauthenticated
// requests.
func (c *Config) AuthDisabled() bool {
	return c.Security.AuthMode == "none"
}

// RemoteEnabled reports whether a remote feedback relay is configured.
func (c *Config) RemoteEnabled() bool {
	return c.Remote.URL != ""
}
