// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/tinwheel/modelkit"
	"github.com/tinwheel/modelkit/internal/i18n"
)

// snapshot is the on-disk layout of a dump: zstd-compressed JSON.
type snapshot struct {
	SchemaVersion int                         `json:"schema_version"`
	DatabaseType  string                      `json:"database_type"`
	Tables        map[string][]map[string]any `json:"tables"`
}

const snapshotSchemaVersion = 1

func newDumpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dump FILE",
		Short: i18n.T("dump.short"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			if err := writeSnapshot(ctx, db, f); err != nil {
				return err
			}
			cmd.Printf("%s: %s\n", i18n.T("dump.done"), args[0])
			return nil
		},
	}
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore FILE",
		Short: i18n.T("restore.short"),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			if err := readSnapshot(ctx, db, f); err != nil {
				return err
			}
			cmd.Printf("%s: %s\n", i18n.T("restore.done"), args[0])
			return nil
		},
	}
}

// writeSnapshot exports every table's rows as zstd-compressed JSON.
func writeSnapshot(ctx context.Context, db *modelkit.DB, w io.Writer) error {
	tables, err := listTables(ctx, db)
	if err != nil {
		return err
	}

	snap := snapshot{
		SchemaVersion: snapshotSchemaVersion,
		DatabaseType:  db.Type(),
		Tables:        make(map[string][]map[string]any, len(tables)),
	}
	for _, t := range tables {
		_, rows, err := fetchRows(ctx, db, t, 0)
		if err != nil {
			return fmt.Errorf("dump table %s: %w", t, err)
		}
		snap.Tables[t] = rows
	}

	bw := bufio.NewWriter(w)
	zw, err := zstd.NewWriter(bw)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(&snap); err != nil {
		_ = zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return bw.Flush()
}

// readSnapshot wipes and re-fills each table found in a snapshot, inside a
// single transaction.
func readSnapshot(ctx context.Context, db *modelkit.DB, r io.Reader) error {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	var snap snapshot
	if err := json.NewDecoder(zr).Decode(&snap); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}
	if snap.SchemaVersion != snapshotSchemaVersion {
		return fmt.Errorf("unsupported snapshot schema version %d", snap.SchemaVersion)
	}

	return modelkit.WithTx(ctx, db, func(ctx context.Context, tx *modelkit.Tx) error {
		// Deterministic order keeps failures reproducible.
		names := make([]string, 0, len(snap.Tables))
		for name := range snap.Tables {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			if _, err := modelkit.ExecRaw(ctx, tx, fmt.Sprintf("DELETE FROM %s", name)); err != nil {
				return fmt.Errorf("wipe table %s: %w", name, err)
			}
			for _, row := range snap.Tables[name] {
				if err := insertRow(ctx, tx, name, row); err != nil {
					return fmt.Errorf("restore table %s: %w", name, err)
				}
			}
		}
		return nil
	})
}

// insertRow builds a positional INSERT for one generic row.
func insertRow(ctx context.Context, tx *modelkit.Tx, table string, row map[string]any) error {
	cols := make([]string, 0, len(row))
	for c := range row {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	args := make([]any, 0, len(cols))
	for _, c := range cols {
		args = append(args, row[c])
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	_, err := modelkit.ExecRaw(ctx, tx, query, args...)
	return err
}
