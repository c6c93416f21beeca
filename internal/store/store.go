// Package store keeps datasets, experiments and scored results in a local
// SQLite database.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrDatasetExists   = errors.New("dataset already exists")
	ErrExampleNotFound = errors.New("example not found")
)

// SQLiteStore implements experiment.Tracker on a single SQLite file.
type SQLiteStore struct {
	DB *sql.DB
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS datasets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS examples (
		id TEXT PRIMARY KEY,
		dataset_id TEXT NOT NULL REFERENCES datasets(id),
		inputs TEXT NOT NULL,
		outputs TEXT,
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS experiments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		dataset_id TEXT NOT NULL REFERENCES datasets(id),
		created_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS results (
		id TEXT PRIMARY KEY,
		experiment_id TEXT NOT NULL REFERENCES experiments(id),
		example_id TEXT NOT NULL,
		task TEXT,
		outputs TEXT,
		scores TEXT,
		degraded INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		started_at TEXT,
		ended_at TEXT
	);`,
	`CREATE INDEX IF NOT EXISTS idx_examples_dataset ON examples(dataset_id);`,
	`CREATE INDEX IF NOT EXISTS idx_results_experiment ON results(experiment_id);`,
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// One writer at a time; SQLite serializes anyway.
	db.SetMaxOpenConns(1)

	for _, q := range schema {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, fmt.Errorf("initializing schema: %w", err)
		}
	}

	return &SQLiteStore{DB: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.DB.Close()
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func now() string {
	return time.Now().UTC().Format(timeLayout)
}

func parseTime(v string) time.Time {
	t, _ := time.Parse(timeLayout, v)
	return t
}
