// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// ExpiringSessionStore wraps the ephemeral store with a session lifetime.
// A non-positive TTL means sessions never expire. Expiry is evaluated
// lazily on Resolve; the expired entry is left in place, not deleted on
// read. An optional background reaper can be started to purge expired
// entries so memory does not grow over long uptimes.
type ExpiringSessionStore struct {
	inner *MemorySessionStore
	ttl   time.Duration

	reapOnce sync.Once
	done     chan struct{}
	stopped  chan struct{}
}

// NewExpiringSessionStore creates an ExpiringSessionStore with the given
// session lifetime.
func NewExpiringSessionStore(ttl time.Duration) *ExpiringSessionStore {
	return &ExpiringSessionStore{
		inner: NewMemorySessionStore(),
		ttl:   ttl,
	}
}

// Create issues a new token bound to the user.
func (s *ExpiringSessionStore) Create(ctx context.Context, userID ulid.ULID) (string, error) {
	return s.inner.Create(ctx, userID)
}

// Resolve returns the user ID bound to the token if the session has not
// passed created-at + TTL. An expired session resolves exactly like an
// unknown token and stays in the map.
func (s *ExpiringSessionStore) Resolve(_ context.Context, token string) (ulid.ULID, error) {
	session, ok := s.inner.lookup(token)
	if !ok {
		return ulid.ULID{}, oops.Code("SESSION_INVALID").Wrap(ErrNotFound)
	}

	if expiry, bounded := session.ExpiresAt(s.ttl); bounded && time.Now().After(expiry) {
		return ulid.ULID{}, oops.Code("SESSION_EXPIRED").Wrap(ErrNotFound)
	}

	return session.UserID, nil
}

// Destroy removes the token. Returns false if it was absent.
func (s *ExpiringSessionStore) Destroy(ctx context.Context, token string) bool {
	return s.inner.Destroy(ctx, token)
}

// Len returns the number of live entries, expired ones included.
func (s *ExpiringSessionStore) Len() int {
	return s.inner.Len()
}

// StartReaper launches a background goroutine that purges expired entries
// every interval. This is an optional extension on top of the lazy expiry
// check; the store is fully correct without it. No-op if the TTL is
// unbounded. Safe to call once per store.
func (s *ExpiringSessionStore) StartReaper(interval time.Duration, logger *slog.Logger) {
	if s.ttl <= 0 || interval <= 0 {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	s.reapOnce.Do(func() {
		s.done = make(chan struct{})
		s.stopped = make(chan struct{})

		go func() {
			defer close(s.stopped)
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					if n := s.inner.purge(time.Now().Add(-s.ttl)); n > 0 {
						logger.Debug("reaped expired sessions", "count", n)
					}
				case <-s.done:
					return
				}
			}
		}()
	})
}

// Stop terminates the reaper goroutine, if one was started, and waits for
// it to exit.
func (s *ExpiringSessionStore) Stop() {
	if s.done == nil {
		return
	}
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	<-s.stopped
}

// purge deletes entries created before the cutoff and returns the count.
func (s *MemorySessionStore) purge(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for token, session := range s.sessions {
		if session.CreatedAt.Before(cutoff) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

// Compile-time interface check.
var _ SessionStore = (*ExpiringSessionStore)(nil)
