// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Gatewarden Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Gatewarden CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gatewarden",
		Short: "Gatewarden - authentication service for web APIs",
		Long: `Gatewarden guards web API routes: it registers identities, verifies
credentials, issues session tokens, and handles password resets.`,
	}

	// Global flag for config file path
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())

	return cmd
}
