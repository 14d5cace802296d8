// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for the modelkit toolbox using
// the Cobra library. It defines the root command, subcommands (migrate,
// maintain, tables, dump, restore, browse), flags, and the entry point.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinwheel/modelkit"
	"github.com/tinwheel/modelkit/internal/config"
	"github.com/tinwheel/modelkit/internal/i18n"
	"github.com/tinwheel/modelkit/internal/logging"
	"github.com/tinwheel/modelkit/migrate"
)

var version = "dev" // this will be set by the linker

var (
	cfgFile     string
	askPassword bool
	cfg         config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// The error is already printed by Cobra on failure.
		os.Exit(1)
	}
}

// newRootCmd creates and configures a new root cobra command. Fresh
// instances keep tests isolated.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "modelkit",
		Short:         i18n.T("cli.short"),
		Long:          i18n.T("cli.long"),
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			defaults := map[string]any{
				"database.type": "sqlite",
				"database.dsn":  "./modelkit.db",
				"language":      "en",
				"log_level":     "info",
			}
			c, err := config.Load(cmd, defaults, cfgFile)
			if err != nil {
				return err
			}
			cfg = c
			i18n.Init(cfg.Language)
			logging.SetLevel(cfg.LogLevel)
			if cfg.LogLevel == "debug" {
				modelkit.SetDebug(true)
			}
			return nil
		},
	}

	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newMaintainCmd())
	cmd.AddCommand(newTablesCmd())
	cmd.AddCommand(newDumpCmd())
	cmd.AddCommand(newRestoreCmd())
	cmd.AddCommand(newBrowseCmd())
	cmd.AddCommand(newConfigCmd())

	cmd.Version = version

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is the modelkit.yaml search path)")
	cmd.PersistentFlags().String("db-type", "sqlite", "Database type (sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("db-dsn", "./modelkit.db", "Database connection string (DSN)")
	cmd.PersistentFlags().String("lang", "en", `CLI language ("en", "de")`)
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&askPassword, "ask-password", false, "Prompt for a password and substitute ${password} in the DSN")

	return cmd
}

// openDB opens the configured database, applying the password prompt when
// requested.
func openDB(ctx context.Context) (*modelkit.DB, error) {
	dsn := cfg.Database.DSN
	if askPassword {
		pw, err := promptPassword(i18n.T("cli.password_prompt"))
		if err != nil {
			return nil, err
		}
		dsn = substitutePassword(dsn, pw)
	}
	db, err := modelkit.Open(cfg.Database.Type, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", i18n.T("cli.error_open_db"), err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", i18n.T("cli.error_open_db"), err)
	}
	return db, nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate DIR",
		Short: i18n.T("migrate.short"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			before, err := migrate.Applied(ctx, db.SQL(), cfg.Database.Type)
			if err != nil {
				return err
			}
			if err := migrate.Run(ctx, db.SQL(), os.DirFS(args[0]), cfg.Database.Type); err != nil {
				return err
			}
			after, err := migrate.Applied(ctx, db.SQL(), cfg.Database.Type)
			if err != nil {
				return err
			}
			if len(after) == len(before) {
				cmd.Println(i18n.T("migrate.none_pending"))
			} else {
				cmd.Printf("%s: %d\n", i18n.T("migrate.applied"), len(after)-len(before))
			}
			return nil
		},
	}
}

func newMaintainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maintain",
		Short: i18n.T("maintain.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn := cfg.Database.DSN
			if askPassword {
				pw, err := promptPassword(i18n.T("cli.password_prompt"))
				if err != nil {
					return err
				}
				dsn = substitutePassword(dsn, pw)
			}
			if err := modelkit.Maintain(cmd.Context(), cfg.Database.Type, dsn); err != nil {
				return err
			}
			cmd.Println(i18n.T("maintain.done"))
			return nil
		},
	}
}
