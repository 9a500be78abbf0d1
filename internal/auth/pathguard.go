// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"strings"

	"github.com/gobwas/glob"
)

// Guard decides whether a request path requires authentication, given a set
// of exclusion patterns. The pattern set is configuration: read-only after
// construction, so patterns are compiled once.
//
// An exclusion is a path prefix. A trailing "/" is normalized away; a
// trailing "*" marks an explicit wildcard but the match is by prefix either
// way. The first matching exclusion exempts the path; no match (or an empty
// pattern set) means the path is protected - the guard fails safe.
type Guard struct {
	patterns []glob.Glob
}

// NewGuard compiles an exclusion pattern set into a Guard.
// Patterns that fail to compile are dropped, which leaves the affected
// paths protected rather than exposed.
func NewGuard(exclusions []string) *Guard {
	patterns := make([]glob.Glob, 0, len(exclusions))
	for _, exc := range exclusions {
		prefix := normalizeExclusion(exc)
		g, err := glob.Compile(glob.QuoteMeta(prefix) + "*")
		if err != nil {
			continue
		}
		patterns = append(patterns, g)
	}
	return &Guard{patterns: patterns}
}

// RequiresAuth reports whether path is protected.
// An empty path or an empty pattern set is always protected.
func (g *Guard) RequiresAuth(path string) bool {
	if path == "" || len(g.patterns) == 0 {
		return true
	}

	path = strings.TrimSuffix(path, "/")

	for _, p := range g.patterns {
		if p.Match(path) {
			return false
		}
	}
	return true
}

// RequiresAuth reports whether path is protected given the exclusion set.
// Pure function of its inputs; see Guard for the matching rules.
func RequiresAuth(path string, exclusions []string) bool {
	if path == "" || len(exclusions) == 0 {
		return true
	}
	return NewGuard(exclusions).RequiresAuth(path)
}

// normalizeExclusion strips an explicit trailing wildcard, then one
// trailing slash, leaving the bare prefix to match against.
func normalizeExclusion(exc string) string {
	exc = strings.TrimSuffix(exc, "*")
	exc = strings.TrimSuffix(exc, "/")
	return exc
}
