// ABOUTME: Warmpath configuration stored as JSON at the XDG config path
// ABOUTME: Applies WARMPATH_* environment overrides and validates SLA and timezone settings
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/adrg/xdg"

	"github.com/harperreed/warmpath/charm"
	"github.com/harperreed/warmpath/db"
	"github.com/harperreed/warmpath/models"
	"github.com/harperreed/warmpath/pipeline"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendCharm  = "charm"
)

var (
	ErrUnknownStage   = errors.New("unknown stage")
	ErrUnknownBackend = errors.New("unknown backend")
)

type Config struct {
	Backend   string         `json:"backend"`
	DBPath    string         `json:"db_path,omitempty"`
	Timezone  string         `json:"timezone,omitempty"`
	LogLevel  string         `json:"log_level,omitempty"`
	SLADays   map[string]int `json:"sla_days,omitempty"`
	CharmHost string         `json:"charm_host,omitempty"`
	AutoSync  bool           `json:"auto_sync"`
}

func Default() *Config {
	return &Config{
		Backend:   BackendSQLite,
		DBPath:    db.DefaultPath(),
		Timezone:  "UTC",
		LogLevel:  "info",
		CharmHost: charm.DefaultCharmHost,
		AutoSync:  true,
	}
}

// Dir returns the XDG config directory for warmpath.
func Dir() string {
	return filepath.Join(xdg.ConfigHome, "warmpath")
}

func Path() string {
	return filepath.Join(Dir(), "config.json")
}

// Load reads the config at path (Path() when empty). A missing file yields
// defaults; a malformed file is an error. Environment overrides are applied
// last, then the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)
	cfg.fillDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies WARMPATH_* environment variables:
// - WARMPATH_BACKEND
// - WARMPATH_DB_PATH
// - WARMPATH_TIMEZONE
// - WARMPATH_LOG_LEVEL
// - WARMPATH_CHARM_HOST
// - WARMPATH_AUTO_SYNC.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("WARMPATH_BACKEND"); v != "" {
		cfg.Backend = v
	}
	if v := os.Getenv("WARMPATH_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("WARMPATH_TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	if v := os.Getenv("WARMPATH_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("WARMPATH_CHARM_HOST"); v != "" {
		cfg.CharmHost = v
	}
	if v := os.Getenv("WARMPATH_AUTO_SYNC"); v != "" {
		cfg.AutoSync = v == "true" || v == "1"
	}
}

func (c *Config) fillDefaults() {
	d := Default()
	c.Backend = strings.ToLower(strings.TrimSpace(c.Backend))
	if c.Backend == "" {
		c.Backend = d.Backend
	}
	if c.DBPath == "" {
		c.DBPath = d.DBPath
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.CharmHost == "" {
		c.CharmHost = d.CharmHost
	}
}

// Validate checks the backend, timezone, and SLA overrides.
func (c *Config) Validate() error {
	if c.Backend != BackendSQLite && c.Backend != BackendCharm {
		return fmt.Errorf("%w: %q (want %s or %s)", ErrUnknownBackend, c.Backend, BackendSQLite, BackendCharm)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	for name := range c.SLADays {
		if _, ok := models.ParseStage(name); !ok {
			return fmt.Errorf("%w in sla_days: %q", ErrUnknownStage, name)
		}
	}
	return nil
}

// Location resolves the reference time zone used for all date arithmetic.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// SLA returns the default SLA policy with the configured overrides applied.
func (c *Config) SLA() (pipeline.SLAPolicy, error) {
	policy, err := pipeline.DefaultSLAPolicy().WithOverrides(c.SLADays)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnknownStage, err)
	}
	return policy, nil
}

// Charm returns the connection settings for the charm backend.
func (c *Config) Charm() *charm.Config {
	cfg := charm.DefaultConfig()
	cfg.Host = c.CharmHost
	cfg.AutoSync = c.AutoSync
	return cfg
}

// Save writes the config to path (Path() when empty).
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
