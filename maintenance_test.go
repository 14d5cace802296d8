// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package modelkit

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestMaintain_Sqlite(t *testing.T) {
	dir := t.TempDir()
	dsn := filepath.Join(dir, "maintain.db")

	// Seed a real database file so VACUUM and integrity_check have work to do.
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if _, err := db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO items (name) VALUES ('a'), ('b')`); err != nil {
		t.Fatalf("failed to seed rows: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM items WHERE name = 'a'`); err != nil {
		t.Fatalf("failed to delete row: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("failed to close seed connection: %v", err)
	}

	if err := Maintain(context.Background(), "sqlite", dsn); err != nil {
		t.Fatalf("Maintain failed: %v", err)
	}

	if _, err := os.Stat(dsn); err != nil {
		t.Fatalf("database file missing after maintenance: %v", err)
	}
}

func TestMaintain_UnsupportedType(t *testing.T) {
	err := Maintain(context.Background(), "oracle", "whatever")
	if err == nil {
		t.Fatalf("expected error for unsupported db type")
	}
}
