// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// SQLite is embedded — a single file, no database server to run — which
// fits a single-process tracker exactly. We use modernc.org/sqlite, the
// pure-Go translation of SQLite, so builds need no C toolchain and
// cross-compilation stays trivial.
//
// TIMESTAMP ENCODING:
// All instants are stored as RFC 3339 UTC strings with millisecond
// precision ("2025-03-17T08:30:00.000Z"). Fixed-width UTC strings compare
// lexicographically in timestamp order, which lets the interval SQL below
// (range listing, overlap detection) run as plain string comparisons — and
// the far-future sentinel for open entries is just the largest such string.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Side-effect import: registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"
)

// Storage layouts for the TEXT timestamp columns. Go's "Z07:00" zone directive
// renders "Z" for UTC times and still parses explicit offsets.
const (
	timeLayout = "2006-01-02T15:04:05.000Z07:00"
	dayLayout  = "2006-01-02"

	// farFutureText stands in for the end of an open entry in overlap SQL.
	// Mirrors timesheet's sentinel instant.
	farFutureText = "9999-12-31T23:59:59.999Z"
)

// formatTime encodes an instant for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime decodes a stored timestamp.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("sqlite: parsing timestamp %q: %w", s, err)
	}
	return t, nil
}

// DB wraps the sql.DB pool and implements the repository interfaces.
type DB struct {
	conn *sql.DB
}

// New opens (or creates) the SQLite database at dbPath, applies the
// pragmas a web server needs, and runs migrations.
//
// Use ":memory:" in tests for a throwaway in-memory database.
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// sql.Open only creates the pool; Ping forces a real connection so a
	// bad path or bad permissions surface here, not on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL lets reads proceed while a write is in flight — without it,
	// SQLite locks the whole file for every write.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are off by default in SQLite; the ON DELETE CASCADE on
	// work_entries and day_adjustments needs them on.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the connection pool. The server defers this on shutdown so
// the WAL is flushed and the file lock released.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is reachable. Used by the health endpoint.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// migrate creates the schema. CREATE TABLE IF NOT EXISTS keeps it safe to
// run on every start.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			name          TEXT NOT NULL,
			email         TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at    TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS work_entries (
			id         TEXT PRIMARY KEY,
			user_id    TEXT NOT NULL,
			start_at   TEXT NOT NULL,
			end_at     TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);
		CREATE INDEX IF NOT EXISTS idx_work_entries_user_start ON work_entries(user_id, start_at);
		CREATE INDEX IF NOT EXISTS idx_work_entries_user_end ON work_entries(user_id, end_at);
	`)
	if err != nil {
		return fmt.Errorf("creating work_entries table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS day_adjustments (
			user_id            TEXT NOT NULL,
			day_date           TEXT NOT NULL,
			day_type           TEXT NOT NULL DEFAULT 'none',
			permission_minutes INTEGER NOT NULL DEFAULT 0,
			updated_at         TEXT NOT NULL,
			PRIMARY KEY (user_id, day_date),
			FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
		);
	`)
	if err != nil {
		return fmt.Errorf("creating day_adjustments table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
// modernc.org/sqlite surfaces constraint errors as text; matching the
// message is the established way to detect them without importing driver
// internals.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
