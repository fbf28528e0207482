// ABOUTME: Local charm clients backed by a plain BadgerDB directory
// ABOUTME: Used by tests and offline migration without a charm server
package charm

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"
)

// localKV mirrors the charm/kv.KV surface on a local badger database.
type localKV struct {
	db *badger.DB
}

func (l *localKV) Get(key []byte) ([]byte, error) {
	var result []byte
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		result, err = item.ValueCopy(nil)
		return err
	})
	return result, err
}

func (l *localKV) Set(key, value []byte) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (l *localKV) Delete(key []byte) error {
	return l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

func (l *localKV) Keys() ([][]byte, error) {
	var keys [][]byte
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	return keys, err
}

func (l *localKV) Sync() error {
	return nil
}

func (l *localKV) Reset() error {
	return l.db.DropAll()
}

// OpenLocal opens a client on a badger database under dir with syncing
// disabled. The last-sync state file lives next to it.
// The returned close function releases the database.
func OpenLocal(dir string) (*Client, func() error, error) {
	kvDir := filepath.Join(dir, "kv")
	if err := os.MkdirAll(kvDir, 0700); err != nil {
		return nil, nil, fmt.Errorf("failed to create data dir: %w", err)
	}
	db, err := badger.Open(badger.DefaultOptions(kvDir).WithLogger(nil))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open badger: %w", err)
	}
	c := &Client{
		kv:     &localKV{db: db},
		config: &Config{
			Host:           "localhost",
			StaleThreshold: kv.DefaultStaleThreshold,
			StatePath:      filepath.Join(dir, "last-sync"),
		},
		local:  true,
	}
	return c, db.Close, nil
}

// NewTestClient creates a local client in a temporary directory that is
// closed and removed when the test finishes.
func NewTestClient(t *testing.T) *Client {
	t.Helper()

	c, closeDB, err := OpenLocal(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open test client: %v", err)
	}
	t.Cleanup(func() {
		if err := closeDB(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})
	return c
}
