// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

// Package store provides database connectivity and schema management.
package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection retry parameters for startup. The database frequently comes
// up a moment after the service under orchestration, so the first pings
// are retried with backoff instead of failing the process.
const (
	connectBaseDelay   = 500 * time.Millisecond
	connectMaxAttempts = 6
)

// Connect opens a pgx pool for the given DSN and verifies connectivity,
// retrying the initial ping with capped exponential backoff.
func Connect(ctx context.Context, dsn string, logger *slog.Logger) (*pgxpool.Pool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "create pool").
			Wrap(err)
	}

	backoff := retry.WithMaxRetries(connectMaxAttempts, retry.NewExponential(connectBaseDelay))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := pool.Ping(ctx); pingErr != nil {
			logger.Warn("database not reachable yet, retrying", "error", pingErr)
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("DB_CONNECT_FAILED").
			With("operation", "ping").
			Wrap(err)
	}

	return pool, nil
}
