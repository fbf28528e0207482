// ABOUTME: Charm KV client used as the synced storage backend
// ABOUTME: Maps string keys onto charm/kv and translates missing-key errors
package charm

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/dgraph-io/badger/v3"

	"github.com/harperreed/warmpath/storage"
)

// ErrKeyNotFound wraps storage.ErrNotFound so the storage layer can detect it.
var ErrKeyNotFound = fmt.Errorf("charm kv: %w", storage.ErrNotFound)

// store is the subset of charm/kv.KV the client needs.
type store interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
}

// Client wraps charm KV with config and sync helpers.
type Client struct {
	kv     store
	config *Config
	mu     sync.RWMutex
	// local is set for clients that never talk to a server.
	local bool
}

// NewClient opens the warmpath KV database against cfg.Host.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg = cfg.withDefaults()

	_ = os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{kv: db, config: cfg}

	// Pull remote changes before the first read.
	if cfg.AutoSync && db.Sync() == nil {
		c.recordSync(time.Now())
	}
	return c, nil
}

func (c *Client) Config() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// ID returns the charm user ID for this device.
func (c *Client) ID() (string, error) {
	if c.local {
		return "local", nil
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

// IsConnected reports whether the server can be reached.
func (c *Client) IsConnected() bool {
	_, err := c.ID()
	return err == nil
}

// Sync performs a manual sync with the charm server.
func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncLocked()
}

func (c *Client) syncLocked() error {
	if err := c.kv.Sync(); err != nil {
		return err
	}
	c.recordSync(time.Now())
	return nil
}

// recordSync stores the sync time in the device state file. Failures only
// cost the freshness report, so they are ignored.
func (c *Client) recordSync(at time.Time) {
	path := c.config.StatePath
	if path == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}
	_ = os.WriteFile(path, []byte(at.UTC().Format(time.RFC3339)), 0600)
}

// LastSync returns the time of the last successful sync on this device.
func (c *Client) LastSync() (time.Time, bool) {
	path := c.Config().StatePath
	if path == "" {
		return time.Time{}, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, false
	}
	return at, true
}

// IsStale reports whether local data has gone longer than StaleThreshold
// without a sync as of now. A device that never synced is stale.
func (c *Client) IsStale(now time.Time) bool {
	last, ok := c.LastSync()
	if !ok {
		return true
	}
	return now.Sub(last) > c.Config().StaleThreshold
}

func (c *Client) Get(key string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, err := c.kv.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrKeyNotFound
	}
	return value, err
}

// Set stores a value and syncs if enabled.
func (c *Client) Set(key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Set([]byte(key), value); err != nil {
		return err
	}
	// Sync while still holding the lock so writes are pushed in order.
	if c.config.AutoSync {
		_ = c.syncLocked()
	}
	return nil
}

// Delete removes a key and syncs if enabled.
func (c *Client) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.kv.Delete([]byte(key)); err != nil {
		return err
	}
	if c.config.AutoSync {
		_ = c.syncLocked()
	}
	return nil
}

// Close is a no-op: charm/kv does not expose Close and badger is released on exit.
func (c *Client) Close() error {
	return nil
}

// Keys returns every key whose name starts with prefix.
func (c *Client) Keys(prefix string) ([]string, error) {
	c.mu.RLock()
	raw, err := c.kv.Keys()
	c.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	var matched []string
	for _, k := range raw {
		if strings.HasPrefix(string(k), prefix) {
			matched = append(matched, string(k))
		}
	}
	return matched, nil
}

// Reset wipes all data from the KV store.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kv.Reset()
}

var _ storage.Backend = (*Client)(nil)
