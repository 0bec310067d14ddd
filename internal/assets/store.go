// Package assets keeps uploaded halo images in SQLite, addressed by the MD5
// of their content, and decodes them into memory for rendering.
package assets

import (
	"context"
	"crypto/md5"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// SQLite driver and the embedded engine.
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// ErrNotFound is returned for unknown asset keys.
var ErrNotFound = errors.New("assets: not found")

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	key        TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Store is a content-addressed blob store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the store at path. ":memory:" gives a private
// in-memory store.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := "file::memory:?mode=memory"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("assets: mkdir: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", path)
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("assets: open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("assets: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Key returns the content address of data.
func Key(data []byte) string {
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Put stores data and returns its key. Storing the same content twice is a
// no-op.
func (s *Store) Put(ctx context.Context, data []byte) (string, error) {
	key := Key(data)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assets (key, data) VALUES (?, ?) ON CONFLICT(key) DO NOTHING`, key, data)
	if err != nil {
		return "", fmt.Errorf("assets: put %s: %w", key, err)
	}
	return key, nil
}

// Get returns the blob stored under key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM assets WHERE key = ?`, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("assets: get %s: %w", key, err)
	}
	return data, nil
}

// Keys lists every stored key in insertion order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM assets ORDER BY created_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("assets: keys: %w", err)
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}
