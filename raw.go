package modelkit

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"
)

// ExecRaw executes a raw SQL statement using the provided Bun DB or
// transaction and returns the standard sql.Result.
func ExecRaw(ctx context.Context, idb bun.IDB, query string, args ...any) (sql.Result, error) {
	return idb.NewRaw(query, args...).Exec(ctx)
}

// QueryRawInto runs a raw query and scans the result into dest using Bun's
// RawQuery.Scan.
func QueryRawInto(ctx context.Context, idb bun.IDB, dest any, query string, args ...any) error {
	return idb.NewRaw(query, args...).Scan(ctx, dest)
}
