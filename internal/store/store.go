// Package store provides SQLite-based persistence for bimdiff comparison
// runs, so results can be listed, re-inspected, and served after the run
// that produced them.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store represents the SQLite database store.
type Store struct {
	db *sql.DB
}

// New creates a new store connection.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize creates the database schema.
func (s *Store) Initialize() error {
	schema := `
	-- Comparison runs
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		old_version TEXT NOT NULL,
		new_version TEXT NOT NULL,
		config JSON NOT NULL,
		added INTEGER NOT NULL,
		deleted INTEGER NOT NULL,
		modified INTEGER NOT NULL,
		unchanged INTEGER NOT NULL
	);

	-- Per-element verdicts, in result order
	CREATE TABLE IF NOT EXISTS verdicts (
		run_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		element_id TEXT NOT NULL,
		element_type TEXT NOT NULL,
		classification TEXT NOT NULL,
		data JSON NOT NULL,
		PRIMARY KEY (run_id, position),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	-- Indexes
	CREATE INDEX IF NOT EXISTS idx_verdicts_class ON verdicts(run_id, classification);
	CREATE INDEX IF NOT EXISTS idx_verdicts_element ON verdicts(run_id, element_id);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// parseTimestamp parses a timestamp string from SQLite in various formats.
func parseTimestamp(s string) time.Time {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
