// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// MemorySessionStore is the ephemeral SessionStore variant: the token map
// lives only in process memory and is lost on restart.
//
// The map is shared by concurrently executing request handlers, so every
// access goes through mu. The store is a pure multimap keyed by token:
// multiple logins by the same user yield multiple live tokens, and no
// at-most-one-token-per-user rule is enforced.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewMemorySessionStore creates an empty MemorySessionStore.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

// Create issues a new token bound to the user.
func (s *MemorySessionStore) Create(_ context.Context, userID ulid.ULID) (string, error) {
	session, err := NewSession(userID)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session.Token, nil
}

// Resolve returns the user ID bound to the token.
func (s *MemorySessionStore) Resolve(_ context.Context, token string) (ulid.ULID, error) {
	session, ok := s.lookup(token)
	if !ok {
		return ulid.ULID{}, oops.Code("SESSION_INVALID").Wrap(ErrNotFound)
	}
	return session.UserID, nil
}

// Destroy removes the token. Returns false if it was absent.
func (s *MemorySessionStore) Destroy(_ context.Context, token string) bool {
	if token == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[token]; !ok {
		return false
	}
	delete(s.sessions, token)
	return true
}

// lookup fetches a session under the lock.
func (s *MemorySessionStore) lookup(token string) (*Session, bool) {
	if token == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	return session, ok
}

// Len returns the number of live entries, expired ones included.
func (s *MemorySessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Compile-time interface check.
var _ SessionStore = (*MemorySessionStore)(nil)
