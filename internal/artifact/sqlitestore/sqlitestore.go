// Package sqlitestore provides a SQLite-backed artifact store.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/stagehand/internal/artifact"
)

// Store implements artifact.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a SQLite-based artifact store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS artifacts (
		fingerprint TEXT PRIMARY KEY,
		key TEXT NOT NULL,
		ext TEXT NOT NULL,
		next_handler TEXT,
		created_at INTEGER NOT NULL,
		payload BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_created_at ON artifacts(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Exists checks cache presence for a fingerprint.
func (s *Store) Exists(ctx context.Context, fingerprint string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM artifacts WHERE fingerprint = ?", fingerprint,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query artifact: %w", err)
	}
	return true, nil
}

// Load retrieves the artifact for a fingerprint.
func (s *Store) Load(ctx context.Context, fingerprint string) (*artifact.Artifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM artifacts WHERE fingerprint = ?", fingerprint,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, artifact.NotFoundError{Fingerprint: fingerprint}
	}
	if err != nil {
		return nil, fmt.Errorf("query artifact: %w", err)
	}

	var a artifact.Artifact
	if err := json.Unmarshal(payload, &a); err != nil {
		return nil, artifact.CorruptError{Fingerprint: fingerprint, Err: err}
	}
	return &a, nil
}

// Persist stores a finalized artifact. The upsert is idempotent: a
// fingerprint determines its payload, so rewriting an existing row can
// only restore a corrupt record, never change a valid one.
func (s *Store) Persist(ctx context.Context, a *artifact.Artifact) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := *a
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	payload, err := json.Marshal(&record)
	if err != nil {
		return fmt.Errorf("marshal artifact: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO artifacts (fingerprint, key, ext, next_handler, created_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(fingerprint) DO UPDATE SET payload = excluded.payload`,
		record.Fingerprint, record.Key, record.Ext, record.NextHandler, record.CreatedAt.Unix(), payload,
	)
	if err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}
	return nil
}

// Prune removes artifacts created before the cutoff.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM artifacts WHERE created_at < ?", cutoff.Unix(),
	)
	if err != nil {
		return 0, fmt.Errorf("prune artifacts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune artifacts: %w", err)
	}
	return int(n), nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
