// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// SessionRepository implements auth.SessionRepository using PostgreSQL.
type SessionRepository struct {
	pool Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// Create stores a new session.
func (r *SessionRepository) Create(ctx context.Context, session *auth.Session) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO sessions (token, user_id, created_at)
		VALUES ($1, $2, $3)
	`,
		session.Token,
		session.UserID.String(),
		session.CreatedAt,
	)
	if err != nil {
		return oops.Code("SESSION_CREATE_FAILED").
			With("operation", "insert session").
			With("user_id", session.UserID.String()).
			Wrap(err)
	}
	return nil
}

// GetByToken retrieves a session by its token.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*auth.Session, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT token, user_id, created_at
		FROM sessions
		WHERE token = $1
	`, token)

	var (
		tok       string
		userIDStr string
		createdAt time.Time
	)
	err := row.Scan(&tok, &userIDStr, &createdAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("SESSION_GET_BY_TOKEN_FAILED").
			With("operation", "get session by token").
			Wrap(err)
	}

	userID, err := ulid.Parse(userIDStr)
	if err != nil {
		return nil, oops.Code("SESSION_INVALID_USER_ID").
			With("operation", "parse user id").
			With("user_id", userIDStr).
			Wrap(err)
	}

	return &auth.Session{
		Token:     tok,
		UserID:    userID,
		CreatedAt: createdAt,
	}, nil
}

// Delete removes a session by token.
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM sessions WHERE token = $1
	`, token)
	if err != nil {
		return oops.Code("SESSION_DELETE_FAILED").
			With("operation", "delete session").
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return nil
}

// DeleteByUser removes all sessions for a user.
// No ErrNotFound when nothing matched - that is a valid state.
func (r *SessionRepository) DeleteByUser(ctx context.Context, userID ulid.ULID) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM sessions WHERE user_id = $1
	`, userID.String())
	if err != nil {
		return oops.Code("SESSION_DELETE_BY_USER_FAILED").
			With("operation", "delete sessions by user").
			With("user_id", userID.String()).
			Wrap(err)
	}
	return nil
}

// DeleteExpired removes sessions created before the cutoff and returns the
// count of deleted records.
func (r *SessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM sessions WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, oops.Code("SESSION_DELETE_EXPIRED_FAILED").
			With("operation", "delete expired sessions").
			Wrap(err)
	}
	return result.RowsAffected(), nil
}

// Compile-time interface check.
var _ auth.SessionRepository = (*SessionRepository)(nil)
