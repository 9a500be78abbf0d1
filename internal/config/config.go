// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package config loads Gatewarden configuration from a YAML file and
// command-line flags, flags taking precedence.
package config

import (
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Session backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
)

// Config is the full service configuration.
type Config struct {
	Listen      string         `koanf:"listen"`
	MetricsAddr string         `koanf:"metrics_addr"`
	LogFormat   string         `koanf:"log_format"`
	Database    DatabaseConfig `koanf:"database"`
	Session     SessionConfig  `koanf:"session"`
	Auth        AuthConfig     `koanf:"auth"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// SessionConfig configures session issuance and storage.
type SessionConfig struct {
	// CookieName is the cookie the session token travels in.
	CookieName string `koanf:"cookie_name"`

	// TTLSeconds is the session lifetime; <= 0 means sessions never expire.
	TTLSeconds int `koanf:"ttl_seconds"`

	// Backend selects the session store variant: memory or postgres.
	Backend string `koanf:"backend"`

	// ReapIntervalSeconds enables the in-memory expired-session reaper
	// when > 0. Ignored for the postgres backend.
	ReapIntervalSeconds int `koanf:"reap_interval_seconds"`
}

// TTL returns the session lifetime as a duration.
func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLSeconds) * time.Second
}

// ReapInterval returns the reaper interval as a duration.
func (s SessionConfig) ReapInterval() time.Duration {
	return time.Duration(s.ReapIntervalSeconds) * time.Second
}

// AuthConfig configures request authentication.
type AuthConfig struct {
	// ExcludedPaths lists path prefixes exempt from authentication.
	// A trailing "*" marks an explicit wildcard.
	ExcludedPaths []string `koanf:"excluded_paths"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		Listen:      "127.0.0.1:8080",
		MetricsAddr: "127.0.0.1:9100",
		LogFormat:   "json",
		Session: SessionConfig{
			CookieName: "gw_session",
			TTLSeconds: 0,
			Backend:    BackendMemory,
		},
		Auth: AuthConfig{
			ExcludedPaths: []string{"/healthz", "/api/v1/status", "/api/v1/auth/*"},
		},
	}
}

// Load reads configuration from the optional YAML file at path, then
// overlays values from flags. Flag names use dots matching the config
// keys (e.g. session.ttl_seconds).
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, oops.Code("CONFIG_FILE_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_FLAGS_FAILED").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_UNMARSHAL_FAILED").Wrap(err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.LogFormat).
			Errorf("log_format must be json or text")
	}
	if c.Session.CookieName == "" {
		return oops.Code("CONFIG_INVALID").Errorf("session.cookie_name cannot be empty")
	}
	switch c.Session.Backend {
	case BackendMemory, BackendPostgres:
	default:
		return oops.Code("CONFIG_INVALID").
			With("backend", c.Session.Backend).
			Errorf("session.backend must be memory or postgres")
	}
	return nil
}
