// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package modelkit

import (
	"context"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"

	"github.com/tinwheel/modelkit/watch"
)

// notifier is satisfied by *DB and *Tx; plain bun handles produce no events.
type notifier interface {
	publish(watch.Event)
}

func notify(idb bun.IDB, table string, op watch.Op, pk any) {
	if n, ok := idb.(notifier); ok {
		n.publish(watch.Event{Table: table, Op: op, PK: pk})
	}
}

// Save persists model, deciding between insert and update by primary key:
// a zero-valued key inserts (Bun backfills generated ids), a set key updates
// the existing row and falls back to an insert when the row does not exist
// yet. The model must declare a primary key.
func Save[T any](ctx context.Context, idb bun.IDB, model *T) error {
	table, err := pkTableOf[T](idb)
	if err != nil {
		return err
	}
	if hasZeroPK(table, model) {
		return Insert(ctx, idb, model)
	}

	res, err := idb.NewUpdate().Model(model).WherePK().Exec(ctx)
	if err != nil {
		return MapError(err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		// Either the row does not exist yet (caller assigned the key) or the
		// update changed nothing. Only insert in the former case.
		exists, err := idb.NewSelect().Model(model).WherePK().Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return Insert(ctx, idb, model)
		}
	}
	notify(idb, table.Name, watch.OpUpdate, pkValue(table, model))
	return nil
}

// Insert adds model as a new row. Generated primary keys are written back to
// the model by Bun.
func Insert[T any](ctx context.Context, idb bun.IDB, model *T) error {
	table := tableOf[T](idb)
	if _, err := idb.NewInsert().Model(model).Exec(ctx); err != nil {
		return MapError(err)
	}
	var pk any
	if len(table.PKs) > 0 {
		pk = pkValue(table, model)
	}
	notify(idb, table.Name, watch.OpInsert, pk)
	return nil
}

// Update overwrites the row identified by model's primary key. The key must
// be set.
func Update[T any](ctx context.Context, idb bun.IDB, model *T) error {
	table, err := pkTableOf[T](idb)
	if err != nil {
		return err
	}
	if hasZeroPK(table, model) {
		return ErrNoPrimaryKey
	}
	if _, err := idb.NewUpdate().Model(model).WherePK().Exec(ctx); err != nil {
		return MapError(err)
	}
	notify(idb, table.Name, watch.OpUpdate, pkValue(table, model))
	return nil
}

// Upsert inserts model, replacing the column values of an existing row on a
// primary-key conflict. It uses the dialect's native conflict clause where
// one exists (ON CONFLICT DO UPDATE, ON DUPLICATE KEY UPDATE) and Save's
// update-then-insert behavior otherwise.
func Upsert[T any](ctx context.Context, idb bun.IDB, model *T) error {
	table, err := pkTableOf[T](idb)
	if err != nil {
		return err
	}

	isPK := make(map[string]bool, len(table.PKs))
	cols := make([]string, 0, len(table.PKs))
	for _, pk := range table.PKs {
		isPK[pk.Name] = true
		cols = append(cols, pk.Name)
	}
	var updatable []string
	for _, f := range table.Fields {
		if !isPK[f.Name] {
			updatable = append(updatable, f.Name)
		}
	}

	// Checked up front so the published event can distinguish a conflict
	// update from a fresh insert.
	existed, err := idb.NewSelect().Model(model).WherePK().Exists(ctx)
	if err != nil {
		return err
	}

	q := idb.NewInsert().Model(model)
	features := idb.Dialect().Features()
	switch {
	case len(updatable) == 0:
		// Nothing to update on conflict (all columns are key columns).
		q = q.Ignore()
	case features.Has(feature.InsertOnConflict):
		q = q.On("CONFLICT (?) DO UPDATE", bun.Safe(strings.Join(cols, ", ")))
		for _, name := range updatable {
			q = q.Set("? = EXCLUDED.?", bun.Ident(name), bun.Ident(name))
		}
	case features.Has(feature.InsertOnDuplicateKey):
		q = q.On("DUPLICATE KEY UPDATE")
		for _, name := range updatable {
			q = q.Set("? = VALUES(?)", bun.Ident(name), bun.Ident(name))
		}
	default:
		return Save(ctx, idb, model)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return MapError(err)
	}
	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		// Conflict was ignored; nothing changed.
		return nil
	}
	op := watch.OpInsert
	if existed {
		op = watch.OpUpdate
	}
	notify(idb, table.Name, op, pkValue(table, model))
	return nil
}

// SaveAll saves every model inside a single transaction.
func SaveAll[T any](ctx context.Context, db *DB, models []T) error {
	return WithTx(ctx, db, func(ctx context.Context, tx *Tx) error {
		for i := range models {
			if err := Save(ctx, tx, &models[i]); err != nil {
				return err
			}
		}
		return nil
	})
}
