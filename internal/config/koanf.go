// Lectern - Reading Feed Feedback and Preference Memory
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/lectern

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/lectern/config.yaml",
	"/etc/lectern/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config
// file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the built-in defaults. These form the lowest layer
// of the configuration stack; a config file and environment variables
// override them.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development", // Set ENVIRONMENT=production for production checks
		},
		Database: DatabaseConfig{
			Path:        "/data/lectern.duckdb",
			MaxMemory:   "2GB",
			Threads:     0, // 0 = use runtime.NumCPU()
			SkipIndexes: false,
		},
		Feedback: FeedbackConfig{
			Secret:         "",
			TokenTTL:       1080 * time.Hour, // 45 days, matches the newsletter cadence
			BaseURL:        "http://localhost:8080",
			AllowedSources: []string{"email_link", "web_viewer"},
			AllowUndecided: false,
		},
		Memory: MemoryConfig{
			Backend:         "badger",
			Path:            "/data/memory",
			MaxIDs:          5000,
			TTLDays:         120,
			JanitorInterval: 1 * time.Hour,
		},
		Profile: ProfileConfig{
			Path: "/data/profile.json",
		},
		Manifests: ManifestsConfig{
			Dir: "/data/manifests",
		},
		Apply: ApplyConfig{
			Enabled:   false,
			Interval:  5 * time.Minute,
			BatchSize: 500,
		},
		Remote: RemoteConfig{
			URL:                "", // Empty disables the relay
			APIKey:             "",
			Timeout:            30 * time.Second,
			RateLimitRPS:       5,
			RateLimitBurst:     10,
			BreakerMaxFailures: 5,
			BreakerOpenTimeout: 30 * time.Second,
		},
		API: APIConfig{
			DefaultPageSize: 100,
			MaxPageSize:     1000,
		},
		Security: SecurityConfig{
			AuthMode:          "none", // Single-user tool; production requires jwt or basic
			JWTSecret:         "",
			SessionTimeout:    24 * time.Hour,
			AdminUsername:     "",
			AdminPasswordHash: "",
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using the koanf library with proper
// layering: defaults → config file → environment variables.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// Transform environment variable names to koanf paths:
	// FEEDBACK_SECRET -> feedback.secret
	// LECTERN_MEMORY_MAX_IDS -> memory.max_ids
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile locates the config file from CONFIG_PATH or the default
// search paths. Returns "" when no file exists, which is not an error.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths lists config paths that hold string slices. Environment
// variables supply them as comma-separated strings; YAML supplies real
// sequences. Both forms must end up as []string before unmarshaling.
var sliceConfigPaths = []string{
	"feedback.allowed_sources",
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values into string
// slices for the paths listed in sliceConfigPaths.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML or defaults), nothing to do
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envMappings maps flat environment variable names (lowercased) to koanf
// config paths. Unmapped variables are ignored so that unrelated environment
// entries never leak into the configuration.
var envMappings = map[string]string{
	// Server mappings
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	// Database mappings
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"skip_indexes":      "database.skip_indexes",

	// Feedback link mappings
	"feedback_secret":          "feedback.secret",
	"feedback_token_ttl":       "feedback.token_ttl",
	"feedback_base_url":        "feedback.base_url",
	"feedback_allowed_sources": "feedback.allowed_sources",
	"feedback_allow_undecided": "feedback.allow_undecided",

	// Anti-repetition memory mappings
	"memory_backend":          "memory.backend",
	"memory_path":             "memory.path",
	"memory_max_ids":          "memory.max_ids",
	"memory_ttl_days":         "memory.ttl_days",
	"memory_janitor_interval": "memory.janitor_interval",

	// Profile mappings
	"profile_path": "profile.path",

	// Manifest mappings
	"manifests_dir": "manifests.dir",

	// Apply scheduler mappings
	"apply_enabled":    "apply.enabled",
	"apply_interval":   "apply.interval",
	"apply_batch_size": "apply.batch_size",

	// Remote relay mappings
	"remote_url":                  "remote.url",
	"remote_api_key":              "remote.api_key",
	"remote_timeout":              "remote.timeout",
	"remote_rate_limit_rps":       "remote.rate_limit_rps",
	"remote_rate_limit_burst":     "remote.rate_limit_burst",
	"remote_breaker_max_failures": "remote.breaker_max_failures",
	"remote_breaker_open_timeout": "remote.breaker_open_timeout",

	// API mappings
	"api_default_page_size": "api.default_page_size",
	"api_max_page_size":     "api.max_page_size",

	// Security mappings
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"admin_username":      "security.admin_username",
	"admin_password_hash": "security.admin_password_hash",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",

	// Metrics mappings
	"metrics_enabled": "metrics.enabled",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf config paths.
// Names may optionally carry a LECTERN_ prefix; both HTTP_PORT and
// LECTERN_HTTP_PORT address server.port.
func envTransformFunc(key string) string {
	key = strings.ToLower(key)
	key = strings.TrimPrefix(key, "lectern_")

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them. This prevents
	// random environment variables from polluting the config.
	return ""
}
