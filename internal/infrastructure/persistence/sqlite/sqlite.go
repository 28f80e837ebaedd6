// Package sqlite implements the persistence adapters over an embedded
// SQLite database. This is the default durable backend: a single file,
// no external infrastructure, and the pure-Go driver keeps builds CGO-free.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS learner_records (
    id TEXT PRIMARY KEY,
    record TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS feedback_entries (
    id TEXT PRIMARY KEY,
    learner_id TEXT NOT NULL,
    submitted_at TEXT NOT NULL,
    rating INTEGER NOT NULL CHECK (rating >= 1 AND rating <= 5),
    comment TEXT NOT NULL DEFAULT '',
    category TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_feedback_entries_submitted_at ON feedback_entries(submitted_at);
CREATE INDEX IF NOT EXISTS idx_feedback_entries_learner_id ON feedback_entries(learner_id, submitted_at);
`

// Store holds the SQLite handle and provides the persistence adapters.
type Store struct {
	db *sql.DB
}

// Open creates a Store connected to the SQLite database at path, creating
// parent directories as needed. It applies recommended pragmas and the
// schema; both are idempotent.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	// SQLite serializes writes; one connection avoids lock contention.
	db.SetMaxOpenConns(1)

	if err := applyPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: migrate schema: %w", err)
	}

	return &Store{db: db}, nil
}

// DB returns the underlying handle for raw queries.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// LearnerRepository returns the learner record adapter backed by this store.
func (s *Store) LearnerRepository() *LearnerRepository {
	return &LearnerRepository{db: s.db}
}

// FeedbackLog returns the feedback adapter backed by this store.
func (s *Store) FeedbackLog() *FeedbackLog {
	return &FeedbackLog{db: s.db}
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("sqlite: %s: %w", p, err)
		}
	}
	return nil
}
