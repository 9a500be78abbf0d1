// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatewarden/gatewarden/internal/auth"
	authpg "github.com/gatewarden/gatewarden/internal/auth/postgres"
	"github.com/gatewarden/gatewarden/internal/config"
	"github.com/gatewarden/gatewarden/internal/httpapi"
	"github.com/gatewarden/gatewarden/internal/logging"
	"github.com/gatewarden/gatewarden/internal/observability"
	"github.com/gatewarden/gatewarden/internal/store"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication service",
		Long: `Start the HTTP service that guards API routes, issues sessions,
and handles registration and password resets.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), cmd)
		},
	}

	// Flag names use dots matching the config file keys so the flag layer
	// can overlay the file layer directly. Flag defaults mirror the config
	// defaults so unset flags do not mask file values with zero values.
	def := config.Default()
	cmd.Flags().String("listen", def.Listen, "API listen address")
	cmd.Flags().String("metrics_addr", def.MetricsAddr, "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log_format", def.LogFormat, "log format (json or text)")
	cmd.Flags().String("database.url", def.Database.URL, "PostgreSQL connection URL")
	cmd.Flags().String("session.backend", def.Session.Backend, "session store backend (memory or postgres)")
	cmd.Flags().Int("session.ttl_seconds", def.Session.TTLSeconds, "session lifetime in seconds (0 = unbounded)")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}

	logger := logging.Setup("gatewarden", version, cfg.LogFormat, os.Stderr)
	slog.SetDefault(logger)

	logger.Info("starting gatewarden",
		"listen", cfg.Listen,
		"session_backend", cfg.Session.Backend,
		"log_format", cfg.LogFormat,
	)

	pool, err := store.Connect(ctx, cfg.Database.URL, logger)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info("connected to database")

	users := authpg.NewUserRepository(pool)
	hasher := auth.NewArgon2idHasher()
	guard := auth.NewGuard(cfg.Auth.ExcludedPaths)

	var sessions auth.SessionStore
	var reaper *auth.ExpiringSessionStore
	switch cfg.Session.Backend {
	case config.BackendPostgres:
		durable, storeErr := auth.NewDurableSessionStore(authpg.NewSessionRepository(pool), cfg.Session.TTL())
		if storeErr != nil {
			return storeErr
		}
		sessions = durable
	default:
		expiring := auth.NewExpiringSessionStore(cfg.Session.TTL())
		if cfg.Session.ReapInterval() > 0 {
			expiring.StartReaper(cfg.Session.ReapInterval(), logger)
			reaper = expiring
		}
		sessions = expiring
	}
	if reaper != nil {
		defer reaper.Stop()
	}

	engine, err := auth.NewEngine(users, sessions, hasher)
	if err != nil {
		return err
	}
	resets, err := auth.NewResetService(users, hasher)
	if err != nil {
		return err
	}
	authn, err := auth.NewSessionAuthenticator(users, sessions, guard, cfg.Session.CookieName)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Start observability server if configured.
	var metrics *observability.Metrics
	var obsServer *observability.Server
	if cfg.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.MetricsAddr, func() bool { return true })
		metrics = obsServer.Metrics()
		obsErrChan, obsErr := obsServer.Start()
		if obsErr != nil {
			return obsErr
		}
		go monitorServerErrors(ctx, cancel, obsErrChan, "observability")
	}

	api, err := httpapi.New(engine, resets, authn, cfg.Session.CookieName, logger, httpapi.Options{
		SessionTTL:     cfg.Session.TTL(),
		Metrics:        metrics,
		SessionBackend: cfg.Session.Backend,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           api.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if serveErr := httpServer.ListenAndServe(); serveErr != nil && serveErr != http.ErrServerClosed {
			errChan <- serveErr
		}
	}()

	cmd.Println("Gatewarden started")
	logger.Info("gatewarden ready", "listen", cfg.Listen)

	// Handle signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig)
	case serveErr := <-errChan:
		return oops.Code("SERVER_FAILED").Wrap(serveErr)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping HTTP server", "error", err)
	}
	if obsServer != nil {
		if err := obsServer.Stop(shutdownCtx); err != nil {
			logger.Warn("error stopping observability server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// monitorServerErrors cancels the context when a background server fails,
// so the failure triggers graceful shutdown of the whole process. Exits
// on error, channel close, or context cancellation.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, serverName string) {
	select {
	case err, ok := <-errCh:
		if !ok {
			return
		}
		if err != nil {
			slog.Error("server error, triggering shutdown",
				"server", serverName,
				"error", err,
			)
			cancel()
		}
	case <-ctx.Done():
	}
}
