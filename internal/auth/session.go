// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Session represents an issued session token bound to exactly one user.
// Tokens are opaque bearer credentials; they are created on login,
// destroyed on logout or expiry, and never reused.
type Session struct {
	Token     string
	UserID    ulid.ULID
	CreatedAt time.Time
}

// NewSession creates a validated Session with a fresh random token.
func NewSession(userID ulid.ULID) (*Session, error) {
	if userID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("SESSION_INVALID_USER").Errorf("user ID cannot be zero")
	}
	token, err := NewSessionToken()
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:     token,
		UserID:    userID,
		CreatedAt: time.Now(),
	}, nil
}

// ExpiresAt returns the instant the session stops resolving under the given
// lifetime. A non-positive ttl means the session never expires.
func (s *Session) ExpiresAt(ttl time.Duration) (time.Time, bool) {
	if ttl <= 0 {
		return time.Time{}, false
	}
	return s.CreatedAt.Add(ttl), true
}

// NewSessionToken generates an opaque session token with UUIDv4 entropy.
// Collision is treated as practically impossible and not checked.
func NewSessionToken() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("operation", "uuid.NewRandom").
			Wrap(err)
	}
	return id.String(), nil
}

// SessionStore creates, resolves, and destroys session tokens. The three
// variants (in-memory, expiring, durable) share this contract and differ
// only in persistence and expiry enforcement.
type SessionStore interface {
	// Create issues a new token bound to the user.
	// Rejects a zero user ID without creating anything.
	Create(ctx context.Context, userID ulid.ULID) (string, error)

	// Resolve returns the user ID the token is bound to.
	// An unknown, destroyed, or expired token yields an error wrapping
	// ErrNotFound; expiry never distinguishes itself from absence.
	Resolve(ctx context.Context, token string) (ulid.ULID, error)

	// Destroy removes the token. Returns false if the token was absent
	// or the removal failed, true once removed. A destroyed token never
	// resolves again.
	Destroy(ctx context.Context, token string) bool
}

// SessionRepository persists sessions for the durable store variant.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *Session) error

	// GetByToken retrieves a session by its token.
	GetByToken(ctx context.Context, token string) (*Session, error)

	// Delete removes a session by token.
	// Returns ErrNotFound (wrapped) if no session matched.
	Delete(ctx context.Context, token string) error

	// DeleteByUser removes all sessions for a user.
	DeleteByUser(ctx context.Context, userID ulid.ULID) error

	// DeleteExpired removes sessions created before the cutoff and
	// returns the count of deleted records.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
