// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package authtest provides in-memory repository implementations for tests.
package authtest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// UserRepository is an in-memory auth.UserRepository.
// Errors can be injected per method via the Err* fields.
type UserRepository struct {
	mu    sync.Mutex
	users map[ulid.ULID]*auth.User

	ErrCreate error
	ErrGet    error
	ErrUpdate error
}

// NewUserRepository creates an empty in-memory user repository.
func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[ulid.ULID]*auth.User)}
}

// Create stores a new user, enforcing email uniqueness like the real
// backing store's unique index does.
func (r *UserRepository) Create(_ context.Context, user *auth.User) error {
	if r.ErrCreate != nil {
		return r.ErrCreate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return oops.Code("USER_EXISTS").Wrap(auth.ErrAlreadyExists)
		}
	}
	r.users[user.ID] = cloneUser(user)
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(_ context.Context, id ulid.ULID) (*auth.User, error) {
	if r.ErrGet != nil {
		return nil, r.ErrGet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	return cloneUser(u), nil
}

// GetByEmail retrieves a user by email (case-insensitive).
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*auth.User, error) {
	if r.ErrGet != nil {
		return nil, r.ErrGet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return cloneUser(u), nil
		}
	}
	return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
}

// GetByResetToken retrieves the user holding the given reset token.
func (r *UserRepository) GetByResetToken(_ context.Context, token string) (*auth.User, error) {
	if r.ErrGet != nil {
		return nil, r.ErrGet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.ResetToken != nil && *u.ResetToken == token {
			return cloneUser(u), nil
		}
	}
	return nil, oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
}

// SetResetToken stores a pending reset token on the user record.
func (r *UserRepository) SetResetToken(_ context.Context, id ulid.ULID, token string) error {
	if r.ErrUpdate != nil {
		return r.ErrUpdate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	u.ResetToken = &token
	u.UpdatedAt = time.Now()
	return nil
}

// UpdatePassword stores a new hash and clears the reset token, mirroring
// the single-statement semantics of the real repository.
func (r *UserRepository) UpdatePassword(_ context.Context, id ulid.ULID, passwordHash string) error {
	if r.ErrUpdate != nil {
		return r.ErrUpdate
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	u.PasswordHash = passwordHash
	u.ResetToken = nil
	u.UpdatedAt = time.Now()
	return nil
}

// Delete removes a user.
func (r *UserRepository) Delete(_ context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return oops.Code("USER_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	delete(r.users, id)
	return nil
}

func cloneUser(u *auth.User) *auth.User {
	c := *u
	if u.ResetToken != nil {
		t := *u.ResetToken
		c.ResetToken = &t
	}
	return &c
}

// SessionRepository is an in-memory auth.SessionRepository.
type SessionRepository struct {
	mu       sync.Mutex
	sessions map[string]*auth.Session

	ErrCreate error
	ErrGet    error
	ErrDelete error
}

// NewSessionRepository creates an empty in-memory session repository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*auth.Session)}
}

// Create stores a new session.
func (r *SessionRepository) Create(_ context.Context, session *auth.Session) error {
	if r.ErrCreate != nil {
		return r.ErrCreate
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s := *session
	r.sessions[session.Token] = &s
	return nil
}

// GetByToken retrieves a session by token.
func (r *SessionRepository) GetByToken(_ context.Context, token string) (*auth.Session, error) {
	if r.ErrGet != nil {
		return nil, r.ErrGet
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok {
		return nil, oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	c := *s
	return &c, nil
}

// Delete removes a session by token.
func (r *SessionRepository) Delete(_ context.Context, token string) error {
	if r.ErrDelete != nil {
		return r.ErrDelete
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[token]; !ok {
		return oops.Code("SESSION_NOT_FOUND").Wrap(auth.ErrNotFound)
	}
	delete(r.sessions, token)
	return nil
}

// DeleteByUser removes all sessions for a user.
func (r *SessionRepository) DeleteByUser(_ context.Context, userID ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for token, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, token)
		}
	}
	return nil
}

// DeleteExpired removes sessions created before the cutoff.
func (r *SessionRepository) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for token, s := range r.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(r.sessions, token)
			n++
		}
	}
	return n, nil
}

// Compile-time interface checks.
var (
	_ auth.UserRepository    = (*UserRepository)(nil)
	_ auth.SessionRepository = (*SessionRepository)(nil)
)
