// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// ResetService issues and redeems single-use password-reset tokens.
//
// The token lives as a field on the user record. Redeeming stores the new
// password hash and clears the field in the same update, so a second
// redemption of the same token cannot find a user and fails - single-use
// by construction, with no separate revocation bookkeeping.
type ResetService struct {
	users  UserRepository
	hasher PasswordHasher
}

// NewResetService creates a ResetService.
func NewResetService(users UserRepository, hasher PasswordHasher) (*ResetService, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	return &ResetService{users: users, hasher: hasher}, nil
}

// Issue generates a fresh reset token for the identity matching email,
// persists it on the user record (replacing any pending token), and
// returns it. An unknown email fails with RESET_UNKNOWN_IDENTITY; the
// caller maps that to a generic failure rather than an existence oracle.
func (s *ResetService) Issue(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", oops.Code("RESET_UNKNOWN_IDENTITY").Wrap(err)
		}
		return "", oops.Code("RESET_ISSUE_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	token, err := uuid.NewRandom()
	if err != nil {
		return "", oops.Code("RESET_ISSUE_FAILED").
			With("operation", "generate token").
			Wrap(err)
	}

	if err := s.users.SetResetToken(ctx, user.ID, token.String()); err != nil {
		return "", oops.Code("RESET_ISSUE_FAILED").
			With("operation", "persist token").
			Wrap(err)
	}

	return token.String(), nil
}

// Redeem looks up the identity holding the reset token, stores the hash
// of the new password, and clears the token field in the same update. A
// token that was never issued, or was already redeemed, fails with
// RESET_TOKEN_INVALID.
func (s *ResetService) Redeem(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return oops.Code("RESET_TOKEN_INVALID").Errorf("reset token cannot be empty")
	}

	user, err := s.users.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("RESET_TOKEN_INVALID").Wrap(err)
		}
		return oops.Code("RESET_REDEEM_FAILED").
			With("operation", "get user by reset token").
			Wrap(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_REDEEM_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	// UpdatePassword clears the reset token in the same statement.
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return oops.Code("RESET_REDEEM_FAILED").
			With("operation", "update password").
			Wrap(err)
	}

	return nil
}
