// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package httpapi is the thin HTTP layer over the authentication core.
// It parses transport details (headers, cookies, forms) into core types
// and maps core outcomes to status codes; no invariants live here.
package httpapi

import (
	"net/http"

	"github.com/gatewarden/gatewarden/internal/auth"
)

// coreRequest converts an HTTP request into the transport-agnostic
// credential material the core consumes.
func coreRequest(r *http.Request) auth.Request {
	cookies := make(map[string]string)
	for _, c := range r.Cookies() {
		cookies[c.Name] = c.Value
	}
	return auth.Request{
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		Cookies:       cookies,
	}
}
