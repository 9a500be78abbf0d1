// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// UserRepository implements auth.UserRepository using PostgreSQL.
type UserRepository struct {
	pool Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new user. A unique-violation on the email index is
// surfaced as auth.ErrAlreadyExists.
func (r *UserRepository) Create(ctx context.Context, user *auth.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, reset_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		user.ID.String(),
		user.Email,
		user.PasswordHash,
		user.ResetToken,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return oops.Code("USER_EXISTS").
				With("email", user.Email).
				Wrap(auth.ErrAlreadyExists)
		}
		return oops.Code("USER_CREATE_FAILED").
			With("operation", "insert user").
			With("email", user.Email).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, reset_token, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id.String())

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_ID_FAILED").
			With("operation", "get user by id").
			With("id", id.String()).
			Wrap(err)
	}
	return user, nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, reset_token, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_EMAIL_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}
	return user, nil
}

// GetByResetToken retrieves the user holding the given reset token.
func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, email, password_hash, reset_token, created_at, updated_at
		FROM users
		WHERE reset_token = $1
	`, token)

	user, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("USER_GET_BY_RESET_TOKEN_FAILED").
			With("operation", "get user by reset token").
			Wrap(err)
	}
	return user, nil
}

// SetResetToken stores a pending reset token on the user record.
func (r *UserRepository) SetResetToken(ctx context.Context, id ulid.ULID, token string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET reset_token = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), token, time.Now())
	if err != nil {
		return oops.Code("USER_SET_RESET_TOKEN_FAILED").
			With("operation", "update reset_token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword stores a new password hash and clears the reset token in
// the same statement, which is what makes a reset token single-use.
func (r *UserRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $2, reset_token = NULL, updated_at = $3
		WHERE id = $1
	`, id.String(), passwordHash, time.Now())
	if err != nil {
		return oops.Code("USER_UPDATE_PASSWORD_FAILED").
			With("operation", "update password_hash").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM users WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("USER_DELETE_FAILED").
			With("operation", "delete user").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanUser scans a single row into a User.
// Callers are responsible for handling pgx.ErrNoRows.
func scanUser(row pgx.Row) (*auth.User, error) {
	var (
		idStr        string
		email        string
		passwordHash string
		resetToken   *string
		createdAt    time.Time
		updatedAt    time.Time
	)

	if err := row.Scan(&idStr, &email, &passwordHash, &resetToken, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // callers wrap with context-specific info
		}
		return nil, oops.Code("USER_SCAN_FAILED").
			With("operation", "scan user").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("USER_INVALID_ID").
			With("operation", "parse user id").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		ResetToken:   resetToken,
		CreatedAt:    createdAt,
		UpdatedAt:    updatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.UserRepository = (*UserRepository)(nil)
