// ABOUTME: Connection settings for the Charm KV backend
// ABOUTME: Populated from the warmpath config file and environment
package charm

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/charm/kv"
)

const (
	DefaultCharmHost = "cloud.charm.sh"

	// AppName names the Charm KV database.
	AppName = "warmpath"
)

// Config holds charm connection settings.
type Config struct {
	Host string

	// AutoSync pushes to the server after every write and pulls on open.
	AutoSync bool

	// StaleThreshold is the age after which local data is considered stale.
	StaleThreshold time.Duration

	// StatePath records the time of the last successful sync on this device.
	StatePath string
}

// DefaultStatePath is the per-device last-sync file under the XDG state dir.
func DefaultStatePath() string {
	return filepath.Join(xdg.StateHome, AppName, "charm-last-sync")
}

func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultCharmHost,
		AutoSync:       true,
		StaleThreshold: kv.DefaultStaleThreshold,
		StatePath:      DefaultStatePath(),
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.Host == "" {
		out.Host = DefaultCharmHost
	}
	if out.StaleThreshold == 0 {
		out.StaleThreshold = kv.DefaultStaleThreshold
	}
	if out.StatePath == "" {
		out.StatePath = DefaultStatePath()
	}
	return &out
}
