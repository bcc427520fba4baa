// Package storage is the persistence gateway: it opens the charge point's
// file-backed relational store, applies schema migrations, and vends
// transactional execute/query helpers to the repositories layered on top of
// it (connectors, charging profiles, authentication, security, the offline
// request FIFO, meter values).
//
// sqlite serializes writers at the engine level; Gateway additionally holds
// a single mutex around every statement so callers never need to reason
// about SQLITE_BUSY beyond the configured busy timeout.
package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/go-ocpp/chargepoint/internal/config"
	"github.com/go-ocpp/chargepoint/internal/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Gateway owns the single sqlite connection backing the charge point's
// persisted state.
type Gateway struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if absent) the sqlite database at cfg.DatabasePath
// and runs any pending migrations.
func Open(cfg config.StorageConfig) (*Gateway, error) {
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)", cfg.DatabasePath, cfg.BusyTimeout.Milliseconds())
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", cfg.DatabasePath, err)
	}

	// A file-backed sqlite database gains nothing from more than one
	// connection, and a second connection would defeat the mutex below.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", cfg.DatabasePath, err)
	}

	gw := &Gateway{db: db}
	if err := gw.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return gw, nil
}

func (g *Gateway) migrate() error {
	goose.SetBaseFS(migrationsFS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("storage: set migration dialect: %w", err)
	}
	if err := goose.Up(g.db, "migrations"); err != nil {
		return fmt.Errorf("storage: apply migrations: %w", err)
	}

	logger.Info("persistence gateway migrations applied")
	return nil
}

// Close releases the underlying sqlite connection.
func (g *Gateway) Close() error {
	return g.db.Close()
}

// Exec runs a write statement under the gateway's mutex.
func (g *Gateway) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.db.ExecContext(ctx, query, args...)
}

// Query runs a read statement under the gateway's mutex. The caller must
// close the returned rows.
func (g *Gateway) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.db.QueryContext(ctx, query, args...)
}

// QueryRow runs a single-row read statement under the gateway's mutex.
func (g *Gateway) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.db.QueryRowContext(ctx, query, args...)
}

// WithTx runs fn inside a transaction, committing on a nil return and
// rolling back otherwise. Only one transaction can be in flight at a time,
// matching the single-connection-mutex model of the gateway.
func (g *Gateway) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Errorf("storage: rollback after error failed: %v", rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: commit transaction: %w", err)
	}
	return nil
}

// now formats the current time the way every persisted timestamp column
// expects: RFC3339 in UTC.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
