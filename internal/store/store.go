// Package store records pipeline run history in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID           string
	Topic        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Error        string
	RawPosts     int
	QualityPosts int
	Variants     int
	OutputDir    string
}

// RunStore persists run history. All methods are safe for the single-writer
// pattern the connection pool enforces.
type RunStore struct {
	db  *sql.DB
	log *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	topic         TEXT NOT NULL,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP,
	error         TEXT NOT NULL DEFAULT '',
	raw_posts     INTEGER NOT NULL DEFAULT 0,
	quality_posts INTEGER NOT NULL DEFAULT 0,
	variants      INTEGER NOT NULL DEFAULT 0,
	output_dir    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Open initializes the database at path, creating the directory and schema
// as needed.
func Open(path string, logger *zap.Logger) (*RunStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logger.Debug("busy_timeout pragma failed", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logger.Debug("journal_mode pragma failed", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logger.Debug("synchronous pragma failed", zap.Error(err))
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &RunStore{db: db, log: logger}, nil
}

// Close releases the database handle.
func (s *RunStore) Close() error {
	return s.db.Close()
}

// RecordStart inserts a new run row and returns its id.
func (s *RunStore) RecordStart(topic string, startedAt time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, topic, started_at) VALUES (?, ?, ?)`,
		id, topic, startedAt.UTC())
	if err != nil {
		return "", fmt.Errorf("recording run start: %w", err)
	}
	return id, nil
}

// RecordFinish fills in the outcome of a previously started run.
func (s *RunStore) RecordFinish(id string, finishedAt time.Time, runErr string, rawPosts, qualityPosts, variants int, outputDir string) error {
	_, err := s.db.Exec(
		`UPDATE runs SET finished_at = ?, error = ?, raw_posts = ?, quality_posts = ?, variants = ?, output_dir = ? WHERE id = ?`,
		finishedAt.UTC(), runErr, rawPosts, qualityPosts, variants, outputDir, id)
	if err != nil {
		return fmt.Errorf("recording run finish: %w", err)
	}
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *RunStore) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT id, topic, started_at, COALESCE(finished_at, started_at), error, raw_posts, quality_posts, variants, output_dir
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Topic, &r.StartedAt, &r.FinishedAt,
			&r.Error, &r.RawPosts, &r.QualityPosts, &r.Variants, &r.OutputDir); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
