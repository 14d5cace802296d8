// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package modelkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/tinwheel/modelkit/watch"
)

// Delete removes the row identified by model's primary key. Deleting a row
// that no longer exists is not an error.
func Delete[T any](ctx context.Context, idb bun.IDB, model *T) error {
	table, err := pkTableOf[T](idb)
	if err != nil {
		return err
	}
	res, err := idb.NewDelete().Model(model).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	if rows, err := res.RowsAffected(); err == nil && rows > 0 {
		notify(idb, table.Name, watch.OpDelete, pkValue(table, model))
	}
	return nil
}

// DeleteWhere removes all rows of T's table matching cond and reports how
// many were deleted.
func DeleteWhere[T any](ctx context.Context, idb bun.IDB, cond string, args ...any) (int64, error) {
	table := tableOf[T](idb)
	res, err := idb.NewDelete().Model((*T)(nil)).Where(cond, args...).Exec(ctx)
	if err != nil {
		return 0, err
	}
	rows, _ := res.RowsAffected()
	if rows > 0 {
		// Table-level event: individual keys are not known for bulk deletes.
		notify(idb, table.Name, watch.OpDelete, nil)
	}
	return rows, nil
}

// DeleteAll empties T's table. Bun refuses unconditioned DELETE queries, so
// an always-true condition is supplied.
func DeleteAll[T any](ctx context.Context, idb bun.IDB) (int64, error) {
	return DeleteWhere[T](ctx, idb, "1 = 1")
}
