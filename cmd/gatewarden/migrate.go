// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/gatewarden/gatewarden/internal/config"
	"github.com/gatewarden/gatewarden/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	cmd.PersistentFlags().String("database.url", "", "PostgreSQL connection URL")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Up(); err != nil {
					return err
				}
				cmd.Println("Migrations completed successfully")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				if err := m.Steps(-1); err != nil {
					return err
				}
				cmd.Println("Rolled back one migration")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(cmd, func(m *store.Migrator) error {
				version, dirty, err := m.Version()
				if err != nil {
					return err
				}
				cmd.Printf("version: %d dirty: %v\n", version, dirty)
				return nil
			})
		},
	})

	return cmd
}

// withMigrator resolves the database URL, opens a migrator, runs fn, and
// closes the migrator.
func withMigrator(cmd *cobra.Command, fn func(*store.Migrator) error) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database.url is required")
	}

	m, err := store.NewMigrator(cfg.Database.URL)
	if err != nil {
		return err
	}
	defer func() {
		//nolint:errcheck // close error after a completed run is not actionable
		m.Close()
	}()

	return fn(m)
}
