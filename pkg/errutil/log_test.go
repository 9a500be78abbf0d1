// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package errutil_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/pkg/errutil"
)

func jsonLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, nil))
}

func TestLogError(t *testing.T) {
	t.Run("oops error carries code and context", func(t *testing.T) {
		var buf bytes.Buffer
		err := oops.Code("SESSION_INVALID").With("token", "abc").Errorf("boom")

		errutil.LogError(jsonLogger(&buf), "resolve failed", err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "resolve failed", entry["msg"])
		assert.Equal(t, "SESSION_INVALID", entry["code"])
		assert.Contains(t, entry["error"], "boom")
	})

	t.Run("plain error logs the message only", func(t *testing.T) {
		var buf bytes.Buffer
		errutil.LogError(jsonLogger(&buf), "something failed", errors.New("plain failure"))

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "something failed", entry["msg"])
		assert.Equal(t, "plain failure", entry["error"])
		assert.NotContains(t, entry, "code")
	})
}

func TestAssertHelpers(t *testing.T) {
	err := oops.Code("USER_NOT_FOUND").With("id", "01ABC").Errorf("missing")
	errutil.AssertErrorCode(t, err, "USER_NOT_FOUND")
	errutil.AssertErrorContext(t, err, "id", "01ABC")
}
