// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package modelkit

import (
	"fmt"
	"reflect"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// tableOf resolves Bun's table metadata for the model type T.
func tableOf[T any](idb bun.IDB) *schema.Table {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	return idb.Dialect().Tables().Get(typ)
}

// pkTableOf is like tableOf but insists on at least one primary-key column.
func pkTableOf[T any](idb bun.IDB) (*schema.Table, error) {
	table := tableOf[T](idb)
	if len(table.PKs) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, table.Name)
	}
	return table, nil
}

// hasZeroPK reports whether every primary-key field of model is the zero
// value for its type. Such a model has never been assigned an identity and
// must be inserted, never updated.
func hasZeroPK(table *schema.Table, model any) bool {
	strct := reflect.Indirect(reflect.ValueOf(model))
	for _, pk := range table.PKs {
		if !pk.Value(strct).IsZero() {
			return false
		}
	}
	return true
}

// pkValue extracts the primary-key value of model. Composite keys come back
// as a slice in declaration order.
func pkValue(table *schema.Table, model any) any {
	strct := reflect.Indirect(reflect.ValueOf(model))
	if len(table.PKs) == 1 {
		return table.PKs[0].Value(strct).Interface()
	}
	vals := make([]any, 0, len(table.PKs))
	for _, pk := range table.PKs {
		vals = append(vals, pk.Value(strct).Interface())
	}
	return vals
}

// pkOrder appends ORDER BY expressions over the primary-key columns, in
// declaration order, using the given direction ("ASC" or "DESC").
func pkOrder(q *bun.SelectQuery, table *schema.Table, dir string) *bun.SelectQuery {
	for _, pk := range table.PKs {
		q = q.OrderExpr("? ?", bun.Ident(pk.Name), bun.Safe(dir))
	}
	return q
}
