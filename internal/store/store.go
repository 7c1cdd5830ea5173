// Package store is the SQLite persistence boundary for game aggregates and
// the Steam app catalog.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

// PersistenceError wraps a failed write transaction. The transaction was
// rolled back; the store is exactly as it was before the call.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence error in %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Game is one persisted aggregate: the merged summary of every report ever
// observed for one app id.
type Game struct {
	AppID       int64
	Title       string
	FirstSeen   time.Time
	LastSeen    time.Time
	ReportCount int64
}

// App is one row of the Steam catalog reference table.
type App struct {
	AppID int64
	Name  string
}

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and initializes the
// schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		app_id INTEGER PRIMARY KEY,
		title TEXT,
		first_seen INTEGER,
		last_seen INTEGER,
		report_count INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_games_title ON games(title);

	CREATE TABLE IF NOT EXISTS apps (
		appid INTEGER PRIMARY KEY,
		name TEXT,
		last_updated TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// SizeMB reports the database file size in megabytes, 0 when unknown.
func (s *Store) SizeMB() float64 {
	if s.path == ":memory:" {
		return 0
	}
	fi, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return float64(fi.Size()) / (1024 * 1024)
}
