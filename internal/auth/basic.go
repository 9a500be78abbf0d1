// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/samber/oops"
)

// basicPrefix is the literal scheme prefix of a Basic Authorization header,
// including the trailing space.
const basicPrefix = "Basic "

// ExtractEncoded returns the Base64 payload of a Basic Authorization header:
// the first whitespace-delimited token after the "Basic " prefix.
// Returns "" for an absent header or any other scheme.
func ExtractEncoded(header string) string {
	if !strings.HasPrefix(header, basicPrefix) {
		return ""
	}
	fields := strings.Fields(header[len(basicPrefix):])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// DecodeCredentials base64-decodes the payload of a Basic Authorization
// header. Decoding is strict: non-canonical padding, invalid characters,
// and non-UTF-8 bytes all yield ok=false. Never panics or errors out.
func DecodeCredentials(encoded string) (string, bool) {
	if encoded == "" {
		return "", false
	}
	raw, err := base64.StdEncoding.Strict().DecodeString(encoded)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// SplitCredentials splits a decoded Basic payload into identifier and
// secret on the first colon only; the secret may itself contain colons.
// A payload without a colon yields ok=false.
func SplitCredentials(decoded string) (identifier, secret string, ok bool) {
	identifier, secret, ok = strings.Cut(decoded, ":")
	if !ok {
		return "", "", false
	}
	return identifier, secret, true
}

// BasicAuthenticator resolves identities from Basic Authorization headers.
type BasicAuthenticator struct {
	users  UserRepository
	hasher PasswordHasher
	guard  *Guard
}

// NewBasicAuthenticator creates a BasicAuthenticator.
func NewBasicAuthenticator(users UserRepository, hasher PasswordHasher, guard *Guard) (*BasicAuthenticator, error) {
	if users == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("user repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_NIL_DEPENDENCY").Errorf("password hasher is required")
	}
	if guard == nil {
		guard = NewGuard(nil)
	}
	return &BasicAuthenticator{users: users, hasher: hasher, guard: guard}, nil
}

// RequireAuth reports whether the path is protected.
func (a *BasicAuthenticator) RequireAuth(path string) bool {
	return a.guard.RequiresAuth(path)
}

// CurrentUser resolves the identity behind the request's Authorization
// header: header -> encoded -> decoded -> (identifier, secret) -> lookup ->
// password verify. Every failing step degrades to the same
// AUTH_UNAUTHENTICATED outcome; a missing user and a wrong password are
// indistinguishable to the caller.
func (a *BasicAuthenticator) CurrentUser(ctx context.Context, req Request) (*User, error) {
	encoded := ExtractEncoded(req.Authorization)
	decoded, ok := DecodeCredentials(encoded)
	if !ok {
		return nil, errUnauthenticated()
	}
	identifier, secret, ok := SplitCredentials(decoded)
	if !ok {
		return nil, errUnauthenticated()
	}

	user, err := a.users.GetByEmail(ctx, identifier)
	if err != nil {
		// Backing-store failures degrade to "not authenticated" on the
		// read path; they never propagate raw past the engine boundary.
		if !errors.Is(err, ErrNotFound) {
			return nil, oops.Code("AUTH_UNAUTHENTICATED").Wrap(err)
		}
		return nil, errUnauthenticated()
	}

	valid, err := a.hasher.Verify(secret, user.PasswordHash)
	if err != nil || !valid {
		return nil, errUnauthenticated()
	}

	return user, nil
}

// errUnauthenticated is the uniform failure for an unresolvable identity.
func errUnauthenticated() error {
	return oops.Code("AUTH_UNAUTHENTICATED").Errorf("not authenticated")
}

// Compile-time interface check.
var _ Authenticator = (*BasicAuthenticator)(nil)
