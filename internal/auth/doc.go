// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package auth is the authentication core of Gatewarden.
//
// # Domain Types
//
// Domain types (User, Session) should be created using their constructors:
//   - NewUser - creates a User with a validated email and password hash
//   - NewSession - creates a Session bound to a user ID
//
// Direct struct initialization bypasses validation and may create invalid
// state. Repository implementations receive pre-validated types from these
// constructors.
//
// # Components
//
//   - Guard / RequiresAuth - decides whether a request path is exempt from
//     authentication, given a read-only exclusion pattern set
//   - ExtractEncoded / DecodeCredentials / SplitCredentials - Basic-Auth
//     header codec; malformed input degrades to "not authenticated",
//     never to an error
//   - PasswordHasher - salted one-way hashing with verification
//   - SessionStore - ephemeral, expiring, and durable session token stores
//     sharing one contract
//   - Engine - orchestrates the above to answer "who is making this
//     request" and whether it may proceed
//   - ResetService - single-use password-reset token lifecycle
//
// Stores and strategies are composed, not subclassed: the session
// authenticator works against any SessionStore variant.
package auth
