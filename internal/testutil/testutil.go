// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

// Package testutil provides small helpers shared by tests.
package testutil

import "testing"

// MemoryDSN returns a shared-cache in-memory SQLite DSN unique to the test.
// The shared cache keeps the database visible across pooled connections for
// the lifetime of the test process.
func MemoryDSN(t *testing.T) string {
	t.Helper()
	return "file:" + t.Name() + "?mode=memory&cache=shared"
}
