// Package sqlite implements the trust, document and user repositories on SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DBTX is the common interface satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// OpenDB opens a SQLite database at the given path.
// If path is ":memory:", uses an in-memory database.
// Sets WAL mode and enables foreign keys, then runs migrations.
func OpenDB(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if err := Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return db, nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE COLLATE NOCASE,
		name          TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL DEFAULT '',
		created_at    TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS trusts (
		id                TEXT PRIMARY KEY,
		trust_name        TEXT NOT NULL DEFAULT '',
		trust_type        TEXT NOT NULL DEFAULT 'revocable'
		                  CHECK(trust_type IN ('revocable','irrevocable')),
		grantor_name      TEXT NOT NULL DEFAULT '',
		grantor_address   TEXT NOT NULL DEFAULT '',
		beneficiaries     TEXT NOT NULL DEFAULT '',
		successor_trustee TEXT NOT NULL DEFAULT '',
		assets            TEXT NOT NULL DEFAULT '',
		notes             TEXT NOT NULL DEFAULT '',
		status            TEXT NOT NULL DEFAULT 'draft'
		                  CHECK(status IN ('draft','review','final')),
		owner_id          TEXT NOT NULL DEFAULT '',
		idempotency_key   TEXT,
		created_at        TEXT NOT NULL,
		updated_at        TEXT NOT NULL
	)`,
	`DROP INDEX IF EXISTS idx_trusts_idempotency_key`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_trusts_owner_idempotency_key
		ON trusts(owner_id, idempotency_key) WHERE idempotency_key IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS idx_trusts_owner ON trusts(owner_id)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL DEFAULT '',
		type        TEXT NOT NULL DEFAULT '',
		url         TEXT NOT NULL DEFAULT '',
		content     TEXT NOT NULL DEFAULT '',
		size        INTEGER NOT NULL DEFAULT 0,
		owner_id    TEXT NOT NULL DEFAULT '',
		uploaded_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id)`,
}

// Migrate runs all schema migrations. Statements are idempotent.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString stores an empty string as SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
