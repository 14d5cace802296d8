// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"errors"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/tinwheel/modelkit/internal/i18n"
	"github.com/tinwheel/modelkit/util/slicest"
)

const (
	browseRowLimit = 500
	browseColWidth = 40
)

var (
	colorSubtle    = lipgloss.Color("240")
	colorHighlight = lipgloss.Color("212")
	colorWhite     = lipgloss.Color("229")
)

func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse TABLE",
		Short: i18n.T("browse.short"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			cols, rows, err := fetchRows(ctx, db, args[0], browseRowLimit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				return errors.New(i18n.T("browse.empty"))
			}

			m := newBrowseModel(cols, rows)
			_, err = tea.NewProgram(m).Run()
			return err
		},
	}
}

type browseModel struct {
	table table.Model
}

func newBrowseModel(cols []string, rows []map[string]any) browseModel {
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = len(c)
	}
	tableRows := slicest.Map(rows, func(row map[string]any) table.Row {
		cells := make(table.Row, len(cols))
		for i, c := range cols {
			cells[i] = cellString(row[c])
			if len(cells[i]) > widths[i] {
				widths[i] = len(cells[i])
			}
		}
		return cells
	})

	columns := slicest.MapI(cols, func(i int, c string) table.Column {
		w := widths[i]
		if w > browseColWidth {
			w = browseColWidth
		}
		return table.Column{Title: c, Width: w}
	})

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colorSubtle).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colorWhite).
		Background(colorHighlight).
		Bold(false)
	t.SetStyles(s)

	return browseModel{table: t}
}

func (m browseModel) Init() tea.Cmd { return nil }

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 4)
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m browseModel) View() string {
	return lipgloss.NewStyle().Padding(1).Render(m.table.View()) + "\n"
}
