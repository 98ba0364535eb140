// Package sqlite persists the API key record in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"usergate/pkg/domain"
)

var _ domain.KeyRecordStore = (*Store)(nil)

const defaultPath = "usergate.db"

// Store keeps both key partitions as JSON payloads in a single state table,
// one row per partition. Save rewrites both rows in one transaction.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (creating if needed) the SQLite database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Load reads both partitions. Missing rows yield empty partitions.
func (s *Store) Load(ctx context.Context) (domain.KeyRecord, error) {
	rec := domain.KeyRecord{Available: []string{}, Used: []string{}}
	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return rec, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return rec, fmt.Errorf("scan: %w", err)
		}
		var target *[]string
		switch bucket {
		case domain.BucketAvailableKeys:
			target = &rec.Available
		case domain.BucketUsedKeys:
			target = &rec.Used
		default:
			continue
		}
		if err := json.Unmarshal(payload, target); err != nil {
			return rec, fmt.Errorf("decode %s: %w", bucket, err)
		}
	}
	if err := rows.Err(); err != nil {
		return rec, fmt.Errorf("iterate state: %w", err)
	}
	return rec.Clone(), nil
}

// Save replaces both partitions atomically.
func (s *Store) Save(ctx context.Context, rec domain.KeyRecord) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec = rec.Clone()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range []struct {
		name string
		keys []string
	}{
		{domain.BucketAvailableKeys, rec.Available},
		{domain.BucketUsedKeys, rec.Used},
	} {
		data, err := json.Marshal(bucket.keys)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket.name, data); err != nil {
			return fmt.Errorf("upsert %s: %w", bucket.name, err)
		}
	}
	return tx.Commit()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
