package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// sessionKey identifies the single persisted session row. The service keeps
// exactly one working session; saving replaces whatever was stored before.
const sessionKey = "session"

// SnapshotStore is the persistence surface the session layer and the autosave
// worker depend on.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, payload []byte) error
	LoadSnapshot(ctx context.Context) ([]byte, time.Time, error)
	Close() error
}

// SQLiteStore persists session snapshots in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

var _ SnapshotStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the snapshot database at dbPath.
// It initializes the database with WAL mode, applies pragmas, and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure parent directory exists
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// enablePragmas sets SQLite pragmas for optimal performance and safety.
func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveSnapshot replaces the stored session snapshot with payload.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, payload []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`, sessionKey, payload, now)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored session snapshot and the time it was saved.
// It returns ErrNoSnapshot when nothing has been persisted yet.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context) ([]byte, time.Time, error) {
	var payload []byte
	var savedAt string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload, saved_at FROM snapshots WHERE key = ?", sessionKey,
	).Scan(&payload, &savedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load snapshot: %w", err)
	}

	ts, err := time.Parse(time.RFC3339, savedAt)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse saved_at: %w", err)
	}
	return payload, ts, nil
}
