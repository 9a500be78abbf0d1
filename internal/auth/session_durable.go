// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DurableSessionStore is the SessionStore variant backed by a persistent
// record store, so tokens survive process restart. Consistency is
// delegated to the backing store's own transaction guarantees.
//
// The expiry window is the same lazy check as the in-memory expiring
// variant, evaluated against the persisted creation timestamp; expired
// records are not deleted on read, only Destroy deletes.
type DurableSessionStore struct {
	repo SessionRepository
	ttl  time.Duration
}

// NewDurableSessionStore creates a DurableSessionStore with the given
// session lifetime. A non-positive TTL means sessions never expire.
func NewDurableSessionStore(repo SessionRepository, ttl time.Duration) (*DurableSessionStore, error) {
	if repo == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("session repository is required")
	}
	return &DurableSessionStore{repo: repo, ttl: ttl}, nil
}

// Create issues a new token bound to the user and persists it.
func (s *DurableSessionStore) Create(ctx context.Context, userID ulid.ULID) (string, error) {
	session, err := NewSession(userID)
	if err != nil {
		return "", err
	}

	if err := s.repo.Create(ctx, session); err != nil {
		return "", oops.Code("SESSION_CREATE_FAILED").
			With("operation", "persist session").
			Wrap(err)
	}

	return session.Token, nil
}

// Resolve returns the user ID bound to the token if the persisted session
// has not passed created-at + TTL.
func (s *DurableSessionStore) Resolve(ctx context.Context, token string) (ulid.ULID, error) {
	if token == "" {
		return ulid.ULID{}, oops.Code("SESSION_INVALID").Wrap(ErrNotFound)
	}

	session, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		// Lookup failures of any kind resolve to "no such session".
		return ulid.ULID{}, oops.Code("SESSION_INVALID").Wrap(errors.Join(ErrNotFound, err))
	}

	if expiry, bounded := session.ExpiresAt(s.ttl); bounded && time.Now().After(expiry) {
		return ulid.ULID{}, oops.Code("SESSION_EXPIRED").Wrap(ErrNotFound)
	}

	return session.UserID, nil
}

// Destroy deletes the persisted session. Returns false if no record
// matched or the delete failed.
func (s *DurableSessionStore) Destroy(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	return s.repo.Delete(ctx, token) == nil
}

// Compile-time interface check.
var _ SessionStore = (*DurableSessionStore)(nil)
