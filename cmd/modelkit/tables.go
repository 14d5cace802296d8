// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tinwheel/modelkit/internal/i18n"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))

func newTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: i18n.T("tables.short"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			tables, err := listTables(ctx, db)
			if err != nil {
				return err
			}

			width := len(i18n.T("tables.header.table"))
			for _, t := range tables {
				if len(t) > width {
					width = len(t)
				}
			}
			cmd.Println(headerStyle.Render(fmt.Sprintf("%-*s  %s",
				width, i18n.T("tables.header.table"), i18n.T("tables.header.rows"))))
			for _, t := range tables {
				n, err := countRows(ctx, db, t)
				if err != nil {
					return err
				}
				cmd.Printf("%-*s  %d\n", width, t, n)
			}
			return nil
		},
	}
}
