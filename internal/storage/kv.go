// Package storage implements the persisted blob store over sqlite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/joss/promptforge/internal/domain"
)

// ErrNotFound is returned by Get when no blob exists under the key.
var ErrNotFound = domain.ErrNotFound

// Well-known keys. The store is a flat namespace; these are the only keys
// the core writes.
const (
	KeySessions     = "prompt_sessions"
	KeyAutosaveFlag = "autosave_enabled"
	KeyModelConfig  = "model_config"
	KeyUsageLog     = "usage_log"
)

// KV is a flat key-value store of opaque blobs backed by a sqlite file.
type KV struct {
	db   *sql.DB
	path string
}

// Verify KV implements domain.BlobStore
var _ domain.BlobStore = (*KV)(nil)

// Open creates or opens the store under dataDir.
func Open(dataDir string) (*KV, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dataDir, "promptforge.db")
	db, err := sql.Open("sqlite3", dbPath+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &KV{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *KV) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (s *KV) Close() error {
	return s.db.Close()
}

// Path returns the sqlite file path (for diagnostics).
func (s *KV) Path() string {
	return s.path
}

// Get returns the blob stored under key, or ErrNotFound.
func (s *KV) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return []byte(value), nil
}

// Set writes the blob under key, replacing any previous value.
func (s *KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, string(value), time.Now())
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Delete removes the key. Deleting an absent key is not an error.
func (s *KV) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}
