// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package modelkit

import (
	"context"

	"github.com/uptrace/bun"

	"github.com/tinwheel/modelkit/watch"
)

// Tx is a Bun transaction that defers change notifications until commit.
// It satisfies bun.IDB, so every record operation accepts it in place of
// a *DB.
type Tx struct {
	bun.Tx

	pending []watch.Event
}

// publish buffers the event; WithTx flushes the buffer after commit.
func (t *Tx) publish(e watch.Event) {
	t.pending = append(t.pending, e)
}

// WithTx runs fn inside a transaction via Bun's RunInTx. The transaction is
// committed when fn returns nil and rolled back otherwise. Change events
// produced inside the transaction are published only after a successful
// commit, so subscribers never observe rolled-back writes.
func WithTx(ctx context.Context, db *DB, fn func(ctx context.Context, tx *Tx) error) error {
	var pending []watch.Event
	err := db.DB.RunInTx(ctx, nil, func(ctx context.Context, btx bun.Tx) error {
		tx := &Tx{Tx: btx}
		if err := fn(ctx, tx); err != nil {
			return err
		}
		pending = tx.pending
		return nil
	})
	if err != nil {
		return err
	}
	for _, e := range pending {
		db.hub.Publish(e)
	}
	return nil
}
