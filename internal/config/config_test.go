// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/config"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gatewarden.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "127.0.0.1:8080", cfg.Listen)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "gw_session", cfg.Session.CookieName)
	assert.Equal(t, config.BackendMemory, cfg.Session.Backend)
	assert.Contains(t, cfg.Auth.ExcludedPaths, "/healthz")
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("no file and no flags yields defaults", func(t *testing.T) {
		cfg, err := config.Load("", nil)
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := writeConfigFile(t, `
listen: "0.0.0.0:9999"
session:
  cookie_name: custom_session
  ttl_seconds: 3600
  backend: postgres
database:
  url: postgres://localhost/gatewarden
auth:
  excluded_paths:
    - /ping
`)

		cfg, err := config.Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0:9999", cfg.Listen)
		assert.Equal(t, "custom_session", cfg.Session.CookieName)
		assert.Equal(t, time.Hour, cfg.Session.TTL())
		assert.Equal(t, config.BackendPostgres, cfg.Session.Backend)
		assert.Equal(t, []string{"/ping"}, cfg.Auth.ExcludedPaths)
	})

	t.Run("flags override the file", func(t *testing.T) {
		path := writeConfigFile(t, `listen: "0.0.0.0:9999"`)

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("listen", config.Default().Listen, "")
		require.NoError(t, flags.Set("listen", "127.0.0.1:7777"))

		cfg, err := config.Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:7777", cfg.Listen)
	})

	t.Run("unset flags do not mask file values", func(t *testing.T) {
		path := writeConfigFile(t, `listen: "0.0.0.0:9999"`)

		flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
		flags.String("listen", config.Default().Listen, "")

		cfg, err := config.Load(path, flags)
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0:9999", cfg.Listen)
	})

	t.Run("missing file fails", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), nil)
		assert.Error(t, err)
	})

	t.Run("malformed yaml fails", func(t *testing.T) {
		path := writeConfigFile(t, "listen: [unterminated")
		_, err := config.Load(path, nil)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := config.Default()

	t.Run("defaults validate", func(t *testing.T) {
		assert.NoError(t, valid.Validate())
	})

	t.Run("rejects unknown log format", func(t *testing.T) {
		cfg := valid
		cfg.LogFormat = "xml"
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects empty cookie name", func(t *testing.T) {
		cfg := valid
		cfg.Session.CookieName = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects unknown session backend", func(t *testing.T) {
		cfg := valid
		cfg.Session.Backend = "redis"
		assert.Error(t, cfg.Validate())
	})
}

func TestSessionDurations(t *testing.T) {
	s := config.SessionConfig{TTLSeconds: 120, ReapIntervalSeconds: 30}
	assert.Equal(t, 2*time.Minute, s.TTL())
	assert.Equal(t, 30*time.Second, s.ReapInterval())

	unbounded := config.SessionConfig{}
	assert.Equal(t, time.Duration(0), unbounded.TTL())
}
