// Copyright (c) 2026 Tinwheel
// Modelkit - terse record operations for the Bun ORM
// This source code is licensed under the MIT license found in the LICENSE file.

// Package modelkit adds convenience operations (query, save, delete, count)
// on top of the Bun ORM so callers avoid writing boilerplate query-builder
// and transaction code. Every operation is a thin pass-through: schema
// management, transaction atomicity, and constraint enforcement remain the
// responsibility of Bun and the underlying database.
package modelkit // import "github.com/tinwheel/modelkit"

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/tinwheel/modelkit/watch"

	// SQL drivers required at runtime and for integration tests.
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// DB is a Bun database handle enriched with a change-notification hub.
// It satisfies bun.IDB, so it can be passed to every record operation
// in this package.
type DB struct {
	*bun.DB

	hub    *watch.Hub
	dbType string
}

type options struct {
	maxOpenConns    int
	maxIdleConns    int
	connMaxLifetime time.Duration
	connMaxIdleTime time.Duration
}

// Option customizes connection pooling for Open.
type Option func(*options)

// WithMaxOpenConns sets the maximum number of open connections.
func WithMaxOpenConns(n int) Option { return func(o *options) { o.maxOpenConns = n } }

// WithMaxIdleConns sets the maximum number of idle connections.
func WithMaxIdleConns(n int) Option { return func(o *options) { o.maxIdleConns = n } }

// WithConnMaxLifetime bounds how long a pooled connection may be reused.
func WithConnMaxLifetime(d time.Duration) Option {
	return func(o *options) { o.connMaxLifetime = d }
}

// Open opens a database for the given type ("sqlite", "postgres", "mysql")
// and DSN and wraps it in a Bun DB with the matching dialect. Pool settings
// use conservative defaults that can be overridden via options or the
// MODELKIT_DB_* environment variables.
func Open(dbType, dsn string, opts ...Option) (*DB, error) {
	driverName := dbType
	// The pgx stdlib driver registers under the name "pgx".
	if dbType == "postgres" {
		driverName = "pgx"
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	const (
		defaultMaxOpenConns    = 25
		defaultMaxIdleConns    = 25
		defaultConnMaxLifetime = 5 * time.Minute
		defaultConnMaxIdle     = 60 * time.Second
	)

	o := options{
		maxOpenConns:    envInt("MODELKIT_DB_MAX_OPEN_CONNS", defaultMaxOpenConns),
		maxIdleConns:    envInt("MODELKIT_DB_MAX_IDLE_CONNS", defaultMaxIdleConns),
		connMaxLifetime: envSeconds("MODELKIT_DB_CONN_MAX_LIFETIME_SECONDS", defaultConnMaxLifetime),
		connMaxIdleTime: envSeconds("MODELKIT_DB_CONN_MAX_IDLE_SECONDS", defaultConnMaxIdle),
	}
	for _, opt := range opts {
		opt(&o)
	}

	// In-memory SQLite keeps a separate database per connection, which makes
	// schema changes invisible across the pool. Force a single connection.
	if dbType == "sqlite" && isMemoryDSN(dsn) {
		o.maxOpenConns = 1
		o.maxIdleConns = 1
	}

	sqlDB.SetMaxOpenConns(o.maxOpenConns)
	sqlDB.SetMaxIdleConns(o.maxIdleConns)
	sqlDB.SetConnMaxLifetime(o.connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(o.connMaxIdleTime)

	bunDB := createBunDB(sqlDB, dbType)
	if bunDB == nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("unsupported database type: %q", dbType)
	}
	bunDB.AddQueryHook(&debugHook{})

	logf("modelkit: opened %s driver in %s (pool max open=%d, idle=%d, maxLifetime=%s)",
		driverName, time.Since(start), o.maxOpenConns, o.maxIdleConns, o.connMaxLifetime)

	return &DB{DB: bunDB, hub: watch.NewHub(), dbType: dbType}, nil
}

// createBunDB constructs a *bun.DB for the provided *sql.DB and dbType.
// Centralizing construction keeps dialect selection in one place.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "sqlite":
		return bun.NewDB(sqlDB, sqlitedialect.New())
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return nil
	}
}

// Hub returns the change-notification hub for this database.
func (d *DB) Hub() *watch.Hub { return d.hub }

// Type returns the database type the handle was opened with.
func (d *DB) Type() string { return d.dbType }

// SQL exposes the underlying *sql.DB for callers that need raw access,
// such as the migration runner.
func (d *DB) SQL() *sql.DB { return d.DB.DB }

// Close shuts down the notification hub and closes the underlying pool.
func (d *DB) Close() error {
	d.hub.Close()
	return d.DB.Close()
}

// publish implements the notifier used by Save/Delete.
func (d *DB) publish(e watch.Event) { d.hub.Publish(e) }

func isMemoryDSN(dsn string) bool {
	if dsn == ":memory:" {
		return true
	}
	// file::memory: and file:name?mode=memory forms.
	low := strings.ToLower(dsn)
	return strings.Contains(low, "mode=memory") || strings.Contains(low, ":memory:")
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return def
}

func envSeconds(name string, def time.Duration) time.Duration {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return time.Duration(n) * time.Second
		}
	}
	return def
}
