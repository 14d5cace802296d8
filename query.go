// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package modelkit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
)

// QueryOption narrows or orders a query built by Find, First, Last, Count,
// Exists, and DeleteWhere. Options are applied in the order given.
type QueryOption func(*bun.SelectQuery) *bun.SelectQuery

// Where adds an ANDed condition. Placeholders follow Bun's rules, so
// bun.Ident and friends work as arguments.
func Where(cond string, args ...any) QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery { return q.Where(cond, args...) }
}

// WhereOr adds an ORed condition.
func WhereOr(cond string, args ...any) QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery { return q.WhereOr(cond, args...) }
}

// Order adds ORDER BY clauses such as "title ASC".
func Order(orders ...string) QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery { return q.Order(orders...) }
}

// OrderExpr adds an ORDER BY expression with placeholder support.
func OrderExpr(expr string, args ...any) QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery { return q.OrderExpr(expr, args...) }
}

// Limit caps the number of returned rows.
func Limit(n int) QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery { return q.Limit(n) }
}

// Offset skips the first n rows.
func Offset(n int) QueryOption {
	return func(q *bun.SelectQuery) *bun.SelectQuery { return q.Offset(n) }
}

func applyOptions(q *bun.SelectQuery, opts []QueryOption) *bun.SelectQuery {
	for _, opt := range opts {
		q = opt(q)
	}
	return q
}

// All returns every row of T's table.
func All[T any](ctx context.Context, idb bun.IDB) ([]T, error) {
	return Find[T](ctx, idb)
}

// Find returns the rows of T's table matching the given options.
func Find[T any](ctx context.Context, idb bun.IDB, opts ...QueryOption) ([]T, error) {
	var ts []T
	q := applyOptions(idb.NewSelect().Model(&ts), opts)
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return ts, nil
}

// First returns the first row ordered by primary key, or (nil, nil) when no
// row matches. Options are applied before the primary-key ordering, so an
// explicit Order option takes precedence.
func First[T any](ctx context.Context, idb bun.IDB, opts ...QueryOption) (*T, error) {
	return firstOrdered[T](ctx, idb, "ASC", opts)
}

// Last returns the last row ordered by primary key, or (nil, nil) when no
// row matches.
func Last[T any](ctx context.Context, idb bun.IDB, opts ...QueryOption) (*T, error) {
	return firstOrdered[T](ctx, idb, "DESC", opts)
}

func firstOrdered[T any](ctx context.Context, idb bun.IDB, dir string, opts []QueryOption) (*T, error) {
	table, err := pkTableOf[T](idb)
	if err != nil {
		return nil, err
	}
	var t T
	q := applyOptions(idb.NewSelect().Model(&t), opts)
	q = pkOrder(q, table, dir).Limit(1)
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Get looks a row up by primary key. Composite keys take one value per key
// column in declaration order. It returns (nil, nil) when no row exists.
func Get[T any](ctx context.Context, idb bun.IDB, pks ...any) (*T, error) {
	table, err := pkTableOf[T](idb)
	if err != nil {
		return nil, err
	}
	if len(pks) != len(table.PKs) {
		return nil, fmt.Errorf("%s has %d primary key column(s), got %d value(s)",
			table.Name, len(table.PKs), len(pks))
	}
	var t T
	q := idb.NewSelect().Model(&t)
	for i, pk := range table.PKs {
		q = q.Where("? = ?", bun.Ident(pk.Name), pks[i])
	}
	if err := q.Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Count returns the number of rows matching the options.
func Count[T any](ctx context.Context, idb bun.IDB, opts ...QueryOption) (int, error) {
	q := applyOptions(idb.NewSelect().Model((*T)(nil)), opts)
	return q.Count(ctx)
}

// Exists reports whether any row matches the options.
func Exists[T any](ctx context.Context, idb bun.IDB, opts ...QueryOption) (bool, error) {
	q := applyOptions(idb.NewSelect().Model((*T)(nil)), opts)
	return q.Exists(ctx)
}

// Refresh reloads model from its row, overwriting in-memory state. Record
// structs are plain unmanaged copies; Refresh re-synchronizes one with the
// database.
func Refresh[T any](ctx context.Context, idb bun.IDB, model *T) error {
	if _, err := pkTableOf[T](idb); err != nil {
		return err
	}
	return idb.NewSelect().Model(model).WherePK().Scan(ctx)
}
