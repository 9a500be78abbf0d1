// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package postgres implements the auth repositories on PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool is the subset of pgxpool.Pool the repositories use. Declared as an
// interface so tests can substitute a pgxmock pool.
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
