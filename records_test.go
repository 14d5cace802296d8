// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

package modelkit

import (
	"context"
	"errors"
	"testing"

	"github.com/uptrace/bun"

	"github.com/tinwheel/modelkit/internal/testutil"
)

// Fixture models. tracks exercises autoincrement keys, settings a string
// key, accounts a uniqueness constraint, and metrics the no-PK error path.
type track struct {
	bun.BaseModel `bun:"table:tracks"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Title         string `bun:"title,notnull"`
	Artist        string `bun:"artist"`
	Plays         int    `bun:"plays"`
}

type setting struct {
	bun.BaseModel `bun:"table:settings"`
	Key           string `bun:"key,pk"`
	Value         string `bun:"value"`
}

type account struct {
	bun.BaseModel `bun:"table:accounts"`
	ID            int64  `bun:"id,pk,autoincrement"`
	Username      string `bun:"username,unique,notnull"`
}

type metric struct {
	bun.BaseModel `bun:"table:metrics"`
	Name          string `bun:"name"`
	Value         int64  `bun:"value"`
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open("sqlite", testutil.MemoryDSN(t))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []any{(*track)(nil), (*setting)(nil), (*account)(nil), (*metric)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table for %T failed: %v", model, err)
		}
	}
	return db
}

func seedTracks(t *testing.T, db *DB) []track {
	t.Helper()
	ctx := context.Background()
	tracks := []track{
		{Title: "Weightless", Artist: "Ambient Works", Plays: 12},
		{Title: "Aurora", Artist: "Nightfall", Plays: 40},
		{Title: "Basalt", Artist: "Ambient Works", Plays: 3},
	}
	if err := SaveAll(ctx, db, tracks); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}
	return tracks
}

func TestSave_InsertAssignsKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tr := track{Title: "Weightless", Artist: "Ambient Works"}
	if err := Save(ctx, db, &tr); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if tr.ID == 0 {
		t.Fatalf("expected generated id to be written back, got 0")
	}
}

func TestSave_UpdateExistingRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tr := track{Title: "Weightless", Artist: "Ambient Works"}
	if err := Save(ctx, db, &tr); err != nil {
		t.Fatalf("initial Save failed: %v", err)
	}

	tr.Plays = 99
	if err := Save(ctx, db, &tr); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	got, err := Get[track](ctx, db, tr.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.Plays != 99 {
		t.Fatalf("expected updated row with 99 plays, got %+v", got)
	}

	n, err := Count[track](ctx, db)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected a single row after update, got %d", n)
	}
}

func TestSave_SetKeyWithoutRowInserts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	s := setting{Key: "theme", Value: "dark"}
	if err := Save(ctx, db, &s); err != nil {
		t.Fatalf("Save with assigned key failed: %v", err)
	}

	got, err := Get[setting](ctx, db, "theme")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.Value != "dark" {
		t.Fatalf("expected inserted setting, got %+v", got)
	}
}

func TestUpsert_StringKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := Upsert(ctx, db, &setting{Key: "theme", Value: "dark"}); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}
	if err := Upsert(ctx, db, &setting{Key: "theme", Value: "light"}); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	got, err := Get[setting](ctx, db, "theme")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.Value != "light" {
		t.Fatalf("expected upsert to replace value, got %+v", got)
	}
	n, err := Count[setting](ctx, db)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected a single settings row, got %d", n)
	}
}

func TestInsert_DuplicateMapsToErrDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := Insert(ctx, db, &account{Username: "alice"}); err != nil {
		t.Fatalf("first Insert failed: %v", err)
	}
	err := Insert(ctx, db, &account{Username: "alice"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got: %v", err)
	}
}

func TestUpdate_RequiresKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := Update(ctx, db, &track{Title: "nameless"})
	if !errors.Is(err, ErrNoPrimaryKey) {
		t.Fatalf("expected ErrNoPrimaryKey for zero key, got: %v", err)
	}
}

func TestNoPrimaryKeyModel(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := Save(ctx, db, &metric{Name: "uptime", Value: 1}); !errors.Is(err, ErrNoPrimaryKey) {
		t.Fatalf("expected ErrNoPrimaryKey from Save, got: %v", err)
	}
	if _, err := Get[metric](ctx, db, "uptime"); !errors.Is(err, ErrNoPrimaryKey) {
		t.Fatalf("expected ErrNoPrimaryKey from Get, got: %v", err)
	}
	if _, err := First[metric](ctx, db); !errors.Is(err, ErrNoPrimaryKey) {
		t.Fatalf("expected ErrNoPrimaryKey from First, got: %v", err)
	}
	// Insert has no key dependency and must still work.
	if err := Insert(ctx, db, &metric{Name: "uptime", Value: 1}); err != nil {
		t.Fatalf("Insert without key failed: %v", err)
	}
}

func TestFind_WhereOrderLimit(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedTracks(t, db)

	got, err := Find[track](ctx, db,
		Where("artist = ?", "Ambient Works"),
		Order("plays DESC"),
		Limit(1),
	)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Weightless" {
		t.Fatalf("expected the most played Ambient Works track, got %+v", got)
	}
}

func TestAll_ReturnsEverything(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedTracks(t, db)

	all, err := All[track](ctx, db)
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}
}

func TestFirstAndLast(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedTracks(t, db)

	first, err := First[track](ctx, db)
	if err != nil {
		t.Fatalf("First failed: %v", err)
	}
	last, err := Last[track](ctx, db)
	if err != nil {
		t.Fatalf("Last failed: %v", err)
	}
	if first == nil || last == nil {
		t.Fatalf("expected rows, got first=%v last=%v", first, last)
	}
	if first.Title != "Weightless" || last.Title != "Basalt" {
		t.Fatalf("unexpected key ordering: first=%q last=%q", first.Title, last.Title)
	}
}

func TestFirst_EmptyTableReturnsNil(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	got, err := First[track](ctx, db)
	if err != nil {
		t.Fatalf("First on empty table failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for empty table, got %+v", got)
	}
}

func TestGet_MissingRowReturnsNil(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	got, err := Get[track](ctx, db, int64(12345))
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for missing row, got %+v", got)
	}
}

func TestGet_WrongKeyArity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := Get[track](ctx, db, int64(1), int64(2)); err == nil {
		t.Fatalf("expected arity error for composite key values on single-key table")
	}
}

func TestCountAndExists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedTracks(t, db)

	n, err := Count[track](ctx, db, Where("artist = ?", "Ambient Works"))
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 Ambient Works tracks, got %d", n)
	}

	ok, err := Exists[track](ctx, db, Where("title = ?", "Aurora"))
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected Aurora to exist")
	}
	ok, err = Exists[track](ctx, db, Where("title = ?", "missing"))
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if ok {
		t.Fatalf("expected no match for missing title")
	}
}

func TestRefresh_OverwritesLocalState(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	tr := track{Title: "Weightless", Artist: "Ambient Works", Plays: 5}
	if err := Save(ctx, db, &tr); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Simulate a concurrent update through a second copy.
	other := tr
	other.Plays = 50
	if err := Save(ctx, db, &other); err != nil {
		t.Fatalf("Save of second copy failed: %v", err)
	}

	if err := Refresh(ctx, db, &tr); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if tr.Plays != 50 {
		t.Fatalf("expected refreshed copy to see 50 plays, got %d", tr.Plays)
	}
}

func TestDelete_ByKey(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedTracks(t, db)

	first, err := First[track](ctx, db)
	if err != nil || first == nil {
		t.Fatalf("First failed: %v", err)
	}
	if err := Delete(ctx, db, first); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	got, err := Get[track](ctx, db, first.ID)
	if err != nil {
		t.Fatalf("Get after delete failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expected row to be gone, got %+v", got)
	}
	// Deleting again is not an error.
	if err := Delete(ctx, db, first); err != nil {
		t.Fatalf("repeat Delete failed: %v", err)
	}
}

func TestDeleteWhereAndDeleteAll(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedTracks(t, db)

	n, err := DeleteWhere[track](ctx, db, "artist = ?", "Ambient Works")
	if err != nil {
		t.Fatalf("DeleteWhere failed: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 rows deleted, got %d", n)
	}

	n, err = DeleteAll[track](ctx, db)
	if err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 remaining row deleted, got %d", n)
	}

	left, err := Count[track](ctx, db)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if left != 0 {
		t.Fatalf("expected empty table, got %d rows", left)
	}
}

func TestSaveAll_WritesEveryModel(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedTracks(t, db)

	n, err := Count[track](ctx, db)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 rows, got %d", n)
	}
}
