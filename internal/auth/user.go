// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"regexp"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Email validation constraints.
const MaxEmailLength = 254

// emailRegex is a deliberately loose shape check: one '@' with non-empty
// local and domain parts. Anything stricter belongs to the mail layer.
var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

// User represents a registered identity the engine authenticates against.
// The ID is immutable; PasswordHash and ResetToken are mutable.
type User struct {
	ID           ulid.ULID
	Email        string
	PasswordHash string
	ResetToken   *string // nil unless a password reset is pending
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser creates a validated User with a fresh ULID.
// The password hash must already be produced by a PasswordHasher.
func NewUser(email, passwordHash string) (*User, error) {
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if passwordHash == "" {
		return nil, oops.Code("AUTH_INVALID_HASH").Errorf("password hash cannot be empty")
	}

	now := time.Now()
	return &User{
		ID:           ulid.Make(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ValidateEmail validates the shape of an email address.
func ValidateEmail(email string) error {
	if email == "" {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("max", MaxEmailLength).
			Errorf("email must be at most %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email must contain a local part and a domain")
	}
	return nil
}

// UserRepository manages user persistence.
//
// Email uniqueness is enforced by the backing store (unique index), not
// re-derived here; lookups by email take the single matching row.
type UserRepository interface {
	// Create stores a new user.
	// Returns ErrAlreadyExists (wrapped) if the email is taken.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByResetToken retrieves the user holding the given reset token.
	GetByResetToken(ctx context.Context, token string) (*User, error)

	// SetResetToken stores a pending reset token on the user record,
	// replacing any previous one.
	SetResetToken(ctx context.Context, id ulid.ULID, token string) error

	// UpdatePassword stores a new password hash and clears the reset token
	// in the same update. Clearing both together is what makes a reset
	// token single-use.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// Delete removes a user.
	Delete(ctx context.Context, id ulid.ULID) error
}
