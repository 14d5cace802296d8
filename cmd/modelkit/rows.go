// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"sort"

	"github.com/tinwheel/modelkit"
)

// listTables returns the user tables of the connected database, sorted by
// name. SQLite internal tables are excluded; schema_migrations stays in so
// snapshots round-trip.
func listTables(ctx context.Context, db *modelkit.DB) ([]string, error) {
	var query string
	switch db.Type() {
	case "sqlite":
		query = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'"
	case "postgres":
		query = "SELECT tablename FROM pg_tables WHERE schemaname = 'public'"
	case "mysql":
		query = "SHOW TABLES"
	default:
		return nil, fmt.Errorf("unsupported db type for table listing: %s", db.Type())
	}

	var tables []string
	if err := modelkit.QueryRawInto(ctx, db, &tables, query); err != nil {
		return nil, err
	}
	sort.Strings(tables)
	return tables, nil
}

// countRows returns SELECT COUNT(*) for a table.
func countRows(ctx context.Context, db *modelkit.DB, table string) (int64, error) {
	var n int64
	err := modelkit.QueryRawInto(ctx, db, &n, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	return n, err
}

// fetchRows reads up to limit rows of a table into generic maps, column
// order preserved separately. limit <= 0 means no limit.
func fetchRows(ctx context.Context, db *modelkit.DB, table string, limit int) ([]string, []map[string]any, error) {
	query := fmt.Sprintf("SELECT * FROM %s", table)
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			row[c] = normalizeValue(vals[i])
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

// normalizeValue converts driver-specific scan results into JSON-friendly
// values. []byte becomes string; everything else passes through.
func normalizeValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	default:
		return v
	}
}

// cellString renders a single value for display.
func cellString(v any) string {
	if v == nil {
		return "NULL"
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
