// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"github.com/spf13/cobra"

	"github.com/tinwheel/modelkit/internal/config"
	"github.com/tinwheel/modelkit/internal/i18n"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: i18n.T("config.short"),
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

// newConfigInitCmd writes a starter config file with the currently effective
// settings. Existing files are left alone.
func newConfigInitCmd() *cobra.Command {
	var system bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: i18n.T("config.init.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Path(system)
			if err != nil {
				return err
			}
			if err := config.WriteDefault(path, cfg); err != nil {
				return err
			}
			cmd.Printf("%s: %s\n", i18n.T("config.init.written"), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&system, "system", false, "Write the system-wide config file")
	return cmd
}
