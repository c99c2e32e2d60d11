// Package postgres keeps report run history in PostgreSQL and offers an
// advisory-lock fallback when Redis is not configured.
package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

//go:embed schema.sql
var schema string

// DB is the run-history pool. Every held advisory lock pins one of its
// connections, so MaxOpen must leave room for the run store.
type DB struct {
	*sql.DB
}

type poolOptions struct {
	maxOpen     int
	maxIdle     int
	maxLifetime time.Duration
	maxIdleTime time.Duration
}

// Option tunes the connection pool opened by Open
type Option func(*poolOptions)

// WithMaxConns caps open and idle connections
func WithMaxConns(open, idle int) Option {
	return func(o *poolOptions) {
		o.maxOpen, o.maxIdle = open, idle
	}
}

// WithConnLifetime recycles connections after total and idle lifetimes
func WithConnLifetime(total, idle time.Duration) Option {
	return func(o *poolOptions) {
		o.maxLifetime, o.maxIdleTime = total, idle
	}
}

func newPoolOptions(opts ...Option) poolOptions {
	o := poolOptions{
		maxOpen:     10,
		maxIdle:     2,
		maxLifetime: 5 * time.Minute,
		maxIdleTime: time.Minute,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxIdle > o.maxOpen {
		o.maxIdle = o.maxOpen
	}
	return o
}

// Open connects to databaseURL, checks the server answers and creates the
// report_runs table when it is missing.
func Open(ctx context.Context, databaseURL string, opts ...Option) (*DB, error) {
	o := newPoolOptions(opts...)

	pool, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open run history database: %w", err)
	}
	pool.SetMaxOpenConns(o.maxOpen)
	pool.SetMaxIdleConns(o.maxIdle)
	pool.SetConnMaxLifetime(o.maxLifetime)
	pool.SetConnMaxIdleTime(o.maxIdleTime)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("reach run history database: %w", err)
	}
	if _, err := pool.ExecContext(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create report_runs table: %w", err)
	}
	return &DB{DB: pool}, nil
}

// Ping backs the readiness check
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// NullString stores "" as NULL
func NullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
