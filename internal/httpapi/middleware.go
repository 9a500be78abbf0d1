// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package httpapi

import (
	"context"
	"net/http"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// userContextKey is the context key the authenticated user travels under.
type userContextKey struct{}

// UserFromContext returns the authenticated user injected by RequireAuth.
func UserFromContext(ctx context.Context) (*auth.User, bool) {
	u, ok := ctx.Value(userContextKey{}).(*auth.User)
	return u, ok
}

// RequireAuth authenticates every request whose path the authenticator's
// guard protects. Excluded paths pass through untouched; protected paths
// fail closed with 401 when no identity resolves.
func RequireAuth(authn auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !authn.RequireAuth(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			user, err := authn.CurrentUser(r.Context(), coreRequest(r))
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
