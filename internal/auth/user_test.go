// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatewarden/gatewarden/internal/auth"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"simple address", "user@example.com", false},
		{"subdomain", "user@mail.example.com", false},
		{"plus addressing", "user+tag@example.com", false},
		{"empty", "", true},
		{"missing domain", "user@", true},
		{"missing local part", "@example.com", true},
		{"no at sign", "userexample.com", true},
		{"two at signs", "user@foo@example.com", true},
		{"embedded whitespace", "us er@example.com", true},
		{"too long", strings.Repeat("a", auth.MaxEmailLength) + "@example.com", true},
		{"at the length limit", strings.Repeat("a", auth.MaxEmailLength-12) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := auth.ValidateEmail(tt.email)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewUser(t *testing.T) {
	t.Run("creates a user with fresh identity", func(t *testing.T) {
		user, err := auth.NewUser("alice@example.com", "$argon2id$fake")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Equal(t, "$argon2id$fake", user.PasswordHash)
		assert.Nil(t, user.ResetToken)
		assert.False(t, user.CreatedAt.IsZero())
	})

	t.Run("distinct users get distinct IDs", func(t *testing.T) {
		u1, err := auth.NewUser("a@example.com", "hash")
		require.NoError(t, err)
		u2, err := auth.NewUser("b@example.com", "hash")
		require.NoError(t, err)
		assert.NotEqual(t, u1.ID, u2.ID)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		_, err := auth.NewUser("not-an-email", "hash")
		assert.Error(t, err)
	})

	t.Run("rejects empty hash", func(t *testing.T) {
		_, err := auth.NewUser("alice@example.com", "")
		assert.Error(t, err)
	})
}
