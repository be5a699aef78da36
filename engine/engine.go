package engine

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3" // register native (cgo) SQLite driver as "sqlite3"
	_ "modernc.org/sqlite"          // register pure-Go SQLite driver as "sqlite"
)

// Kind identifies the storage implementation behind an Engine.
type Kind string

const (
	// KindNative is a persistent, file-backed database opened through the cgo driver.
	KindNative Kind = "native"
	// KindMemory is a transient in-process database that lives as long as the handle.
	KindMemory Kind = "memory"
)

// Engine is the statement surface shared by every storage implementation.
type Engine interface {
	// Kind reports which implementation is live.
	Kind() Kind

	// Run executes a single parameterized statement that returns no rows.
	Run(ctx context.Context, query string, args ...any) (sql.Result, error)

	// Execute runs a multi-statement script without parameter binding.
	Execute(ctx context.Context, script string) error

	// Query executes a read statement. Callers must close the returned rows.
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)

	// Begin starts a transaction on the engine.
	Begin(ctx context.Context) (*sql.Tx, error)

	// Close releases the handle. A memory engine loses its content.
	Close() error
}

// sqlEngine adapts a *sql.DB to Engine. Native and Memory embed it and only
// differ in how the handle is opened and described.
type sqlEngine struct {
	db *sql.DB
}

func (e *sqlEngine) Run(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return e.db.ExecContext(ctx, query, args...)
}

func (e *sqlEngine) Execute(ctx context.Context, script string) error {
	_, err := e.db.ExecContext(ctx, script)
	return err
}

func (e *sqlEngine) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return e.db.QueryContext(ctx, query, args...)
}

func (e *sqlEngine) Begin(ctx context.Context) (*sql.Tx, error) {
	return e.db.BeginTx(ctx, nil)
}

func (e *sqlEngine) Close() error {
	if e == nil || e.db == nil {
		return nil
	}
	return e.db.Close()
}

// Native is a persistent named database opened through github.com/mattn/go-sqlite3.
type Native struct {
	sqlEngine
	path string
}

// Kind returns KindNative.
func (n *Native) Kind() Kind { return KindNative }

// Path returns the database file location.
func (n *Native) Path() string { return n.path }

// OpenNative opens (creating if needed) the database file at path. The cgo
// driver is registered even in binaries built without cgo, so the handle is
// pinged to surface an unavailable driver here rather than on first use.
func OpenNative(ctx context.Context, path string) (*Native, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("native engine: path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("native engine: create data dir: %w", err)
		}
	}
	dsn := "file:" + cleanPath + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("native engine: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("native engine: ping: %w", err)
	}
	return &Native{sqlEngine: sqlEngine{db: db}, path: cleanPath}, nil
}

// Memory is a transient database held by the modernc.org/sqlite driver.
type Memory struct {
	sqlEngine
}

// Kind returns KindMemory.
func (m *Memory) Kind() Kind { return KindMemory }

// OpenMemory creates an empty in-memory database. The pool is pinned to a
// single connection: every new ":memory:" connection would be a separate database.
func OpenMemory(ctx context.Context) (*Memory, error) {
	db, err := sql.Open("sqlite", ":memory:?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("memory engine: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("memory engine: ping: %w", err)
	}
	return &Memory{sqlEngine: sqlEngine{db: db}}, nil
}

var (
	_ Engine = (*Native)(nil)
	_ Engine = (*Memory)(nil)
)
