// Package orchestrator is the process automation store used by the
// dispatcher: the work queues, the named constants and credentials a process
// reads at start-up and the process log.
//
// The store is an embedded SQLite database. Credential passwords are sealed at
// rest with a key supplied by the caller.
package orchestrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/opgaveflyt/opgaveflyt-dispatcher/secrets"
)

// ErrNotFound is returned for a missing constant or credential. It is the
// vault not-found error.
var ErrNotFound = secrets.ErrNotFound

var _ secrets.Vault = (*DB)(nil)

var (
	ErrEmptyBatch      = errors.New("empty queue batch")
	ErrMismatchedBatch = errors.New("references and data differ in length")
)

// DB is an open orchestrator store bound to a single process name.
type DB struct {
	conn    *sql.DB
	path    string
	key     *[32]byte
	process string
	now     func() time.Time
}

// Open opens (and if necessary creates) the store at path. The key seals and
// opens credential passwords and may be nil if no credentials are used.
func Open(path string, key *[32]byte, process string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn.SetMaxOpenConns(1)

	db := &DB{
		conn:    conn,
		path:    path,
		key:     key,
		process: process,
		now:     time.Now,
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if err := db.InitSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	if err := db.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	db.conn = nil

	return nil
}

func (db *DB) Process() string {
	return db.process
}

// InitSchema creates the tables if they do not exist.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS constants (
	name       TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	changed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS credentials (
	name       TEXT PRIMARY KEY,
	username   TEXT NOT NULL,
	password   BLOB NOT NULL,
	changed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS queues (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	queue_name   TEXT NOT NULL,
	status       TEXT NOT NULL,
	data         TEXT,
	reference    TEXT,
	created_date TEXT NOT NULL,
	start_date   TEXT,
	end_date     TEXT,
	message      TEXT,
	created_by   TEXT
);

CREATE INDEX IF NOT EXISTS idx_queues_name_status ON queues(queue_name, status);

CREATE TABLE IF NOT EXISTS logs (
	seq          INTEGER PRIMARY KEY AUTOINCREMENT,
	log_time     TEXT NOT NULL,
	log_level    TEXT NOT NULL,
	process_name TEXT NOT NULL,
	log_message  TEXT NOT NULL
);
`

func (db *DB) timestamp() string {
	return db.now().UTC().Format(time.RFC3339Nano)
}
