// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/argon2"
)

// argon2id parameters (OWASP-recommended).
const (
	hashTime    = 1         // iterations
	hashMemory  = 64 * 1024 // KiB
	hashThreads = 4
	hashSaltLen = 16
	hashKeyLen  = 32
)

// ErrEmptyPassword is returned when attempting to hash an empty password.
var ErrEmptyPassword = oops.Code("AUTH_EMPTY_PASSWORD").Errorf("password cannot be empty")

// PasswordHasher provides salted one-way password hashing and verification.
// Hashing the same password twice yields different hashes because a fresh
// random salt is drawn per call; Verify recovers the salt from the stored
// hash string.
type PasswordHasher interface {
	// Hash produces a salted hash of the password.
	Hash(password string) (string, error)

	// Verify checks the password against a stored hash.
	// Returns (true, nil) on match, (false, nil) on mismatch, or an error
	// on a malformed stored hash.
	Verify(password, hash string) (bool, error)
}

// Argon2idHasher implements PasswordHasher using argon2id in PHC string
// format: $argon2id$v=19$m=65536,t=1,p=4$<salt>$<hash>.
type Argon2idHasher struct{}

// NewArgon2idHasher creates a new Argon2idHasher.
func NewArgon2idHasher() *Argon2idHasher {
	return &Argon2idHasher{}
}

// Hash produces an argon2id hash of the password with a fresh random salt.
func (h *Argon2idHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", oops.Code("AUTH_SALT_FAILED").Wrap(err)
	}

	key := argon2.IDKey([]byte(password), salt, hashTime, hashMemory, hashThreads, hashKeyLen)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		hashMemory, hashTime, hashThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify checks the password against a PHC-encoded argon2id hash.
// The comparison is constant-time.
func (h *Argon2idHasher) Verify(password, encodedHash string) (bool, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("not an argon2id PHC string")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if version != argon2.Version {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("unsupported argon2 version: %d", version)
	}

	var memory, time, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if threads == 0 || threads > 255 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("parallelism %d out of range", threads)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, oops.Code("AUTH_INVALID_HASH").Wrap(err)
	}
	if len(key) == 0 || len(key) > 1024 {
		return false, oops.Code("AUTH_INVALID_HASH").Errorf("key length %d out of range", len(key))
	}

	computed := argon2.IDKey([]byte(password), salt, time, memory, uint8(threads), uint32(len(key)))

	return subtle.ConstantTimeCompare(computed, key) == 1, nil
}
