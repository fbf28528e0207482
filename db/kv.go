// ABOUTME: SQLite-backed key/value store used as the default storage backend
// ABOUTME: Values are opaque bytes; upserts stamp updated_at
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/warmpath/storage"
)

// ErrKeyNotFound wraps storage.ErrNotFound so the storage layer can detect it.
var ErrKeyNotFound = fmt.Errorf("sqlite kv: %w", storage.ErrNotFound)

// Entry is one stored row.
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// KVStore provides key/value operations on the kv table.
type KVStore struct {
	db *sql.DB
}

func NewKVStore(db *sql.DB) *KVStore {
	return &KVStore{db: db}
}

// Open opens the database at path and returns a store that owns it.
func Open(path string) (*KVStore, error) {
	database, err := OpenDatabase(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	return NewKVStore(database), nil
}

func (s *KVStore) GetContext(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *KVStore) SetContext(ctx context.Context, key string, value []byte) error {
	query := `
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query, key, value, time.Now().UTC())
	return err
}

func (s *KVStore) DeleteContext(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

// List returns every entry whose key starts with prefix, ordered by key.
func (s *KVStore) List(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value, updated_at FROM kv WHERE substr(key, 1, ?) = ? ORDER BY key`,
		len(prefix), prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get, Set, Delete and Close satisfy storage.Backend.

func (s *KVStore) Get(key string) ([]byte, error) {
	return s.GetContext(context.Background(), key)
}

func (s *KVStore) Set(key string, value []byte) error {
	return s.SetContext(context.Background(), key, value)
}

func (s *KVStore) Delete(key string) error {
	return s.DeleteContext(context.Background(), key)
}

func (s *KVStore) Close() error {
	return s.db.Close()
}

var _ storage.Backend = (*KVStore)(nil)
