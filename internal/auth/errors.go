// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package auth

import "errors"

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when creating an entity that would violate a
// uniqueness constraint (e.g. registering a duplicate email).
var ErrAlreadyExists = errors.New("already exists")
