// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"errors"

	"github.com/samber/oops"
)

// Request carries the already-parsed credential material of one inbound
// request. The core is transport-agnostic: the HTTP layer extracts the
// path, Authorization header, and cookies before calling in.
type Request struct {
	Path          string
	Authorization string            // raw Authorization header value, "" if absent
	Cookies       map[string]string // cookie name -> value
}

// Cookie returns the named cookie value, or "" if absent.
func (r Request) Cookie(name string) string {
	return r.Cookies[name]
}

// Authenticator resolves the identity behind an inbound request. The two
// strategies - BasicAuthenticator and SessionAuthenticator - are
// independent implementations composed from the same building blocks,
// not a subclass chain.
type Authenticator interface {
	// RequireAuth reports whether the path is protected.
	RequireAuth(path string) bool

	// CurrentUser returns the authenticated identity, or an
	// AUTH_UNAUTHENTICATED error if none can be resolved. Failure never
	// reveals which step of the resolution chain failed.
	CurrentUser(ctx context.Context, req Request) (*User, error)
}

// SessionAuthenticator resolves identities from a session cookie via a
// SessionStore. Any store variant works: the durability and expiry
// behavior is the store's, not the authenticator's.
type SessionAuthenticator struct {
	users      UserRepository
	store      SessionStore
	guard      *Guard
	cookieName string
}

// NewSessionAuthenticator creates a SessionAuthenticator reading the
// session token from the named cookie.
func NewSessionAuthenticator(users UserRepository, store SessionStore, guard *Guard, cookieName string) (*SessionAuthenticator, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("user repository is required")
	}
	if store == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("session store is required")
	}
	if cookieName == "" {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("cookie name is required")
	}
	if guard == nil {
		guard = NewGuard(nil)
	}
	return &SessionAuthenticator{
		users:      users,
		store:      store,
		guard:      guard,
		cookieName: cookieName,
	}, nil
}

// RequireAuth reports whether the path is protected.
func (a *SessionAuthenticator) RequireAuth(path string) bool {
	return a.guard.RequiresAuth(path)
}

// CurrentUser resolves the session cookie to a user. An absent cookie,
// an unknown or expired token, and a dangling user record all degrade to
// the same AUTH_UNAUTHENTICATED outcome.
func (a *SessionAuthenticator) CurrentUser(ctx context.Context, req Request) (*User, error) {
	token := req.Cookie(a.cookieName)
	if token == "" {
		return nil, errUnauthenticated()
	}

	userID, err := a.store.Resolve(ctx, token)
	if err != nil {
		return nil, errUnauthenticated()
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_UNAUTHENTICATED").Wrap(err)
		}
		return nil, errUnauthenticated()
	}

	return user, nil
}

// dummyPasswordHash is verified against when a login names an unknown
// email, so that the unknown-email and wrong-password paths cost the
// same. It is a fake hash that matches no password.
//
//nolint:gosec // G101: intentionally fake hash for timing consistency, not a credential
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Engine is the authentication façade used by the outer HTTP layer. It is
// injected explicitly at startup; nothing in this package reaches for
// process-global state.
type Engine struct {
	users  UserRepository
	store  SessionStore
	hasher PasswordHasher
}

// NewEngine creates an Engine.
func NewEngine(users UserRepository, store SessionStore, hasher PasswordHasher) (*Engine, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("user repository is required")
	}
	if store == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("session store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	return &Engine{users: users, store: store, hasher: hasher}, nil
}

// RequireAuth reports whether path is protected given the exclusion set.
func (e *Engine) RequireAuth(path string, exclusions []string) bool {
	return RequiresAuth(path, exclusions)
}

// Register creates a new identity. A duplicate email surfaces as a
// distinct AUTH_USER_EXISTS conflict so the HTTP layer can answer with a
// specific status.
func (e *Engine) Register(ctx context.Context, email, password string) (*User, error) {
	hash, err := e.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user, err := NewUser(email, hash)
	if err != nil {
		return nil, err
	}

	if err := e.users.Create(ctx, user); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return nil, oops.Code("AUTH_USER_EXISTS").
				With("email", email).
				Wrap(err)
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			Wrap(err)
	}

	return user, nil
}

// Login verifies the password for the identity matching email and, on
// success, issues a new session token bound to it. A missing identity and
// a wrong password fail with the same AUTH_INVALID_CREDENTIALS outcome;
// the password is verified either way to keep the two paths at the same
// cost.
func (e *Engine) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, lookupErr := e.users.GetByEmail(ctx, email)

	targetHash := dummyPasswordHash
	userExists := false
	if lookupErr == nil {
		targetHash = user.PasswordHash
		userExists = true
	} else if !errors.Is(lookupErr, ErrNotFound) {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by email").
			Wrap(lookupErr)
	}

	valid, verifyErr := e.hasher.Verify(password, targetHash)
	if verifyErr != nil && userExists {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}

	if !userExists || !valid {
		return nil, "", oops.Code("AUTH_INVALID_CREDENTIALS").Errorf("invalid email or password")
	}

	token, err := e.store.Create(ctx, user.ID)
	if err != nil {
		return nil, "", oops.Code("AUTH_SESSION_CREATE_FAILED").
			With("operation", "create session").
			Wrap(err)
	}

	return user, token, nil
}

// Logout destroys the session. Returns false when no token was supplied
// or the token was already absent.
func (e *Engine) Logout(ctx context.Context, token string) bool {
	if token == "" {
		return false
	}
	return e.store.Destroy(ctx, token)
}
