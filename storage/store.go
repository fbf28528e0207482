// ABOUTME: Persistence collaborator storing JSON-encoded collections by key
// ABOUTME: Load never fails (falls back and logs); Save logs and returns failures
package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// Keys for the persisted collections.
const (
	KeyClients        = "warmpath-clients"
	KeyPipeline       = "warmpath-pipeline"
	KeyTasks          = "warmpath-tasks"
	KeyTemplates      = "warmpath-templates"
	KeyAdvisorProfile = "warmpath-advisor-profile"
	KeyProspects      = "warmpath-prospects"
)

// KeyPrefix is shared by every persisted key.
const KeyPrefix = "warmpath-"

// AllKeys lists every key warmpath persists.
var AllKeys = []string{
	KeyClients,
	KeyPipeline,
	KeyTasks,
	KeyTemplates,
	KeyAdvisorProfile,
	KeyProspects,
}

// ErrNotFound is returned (possibly wrapped) by a Backend when a key is absent.
var ErrNotFound = errors.New("key not found")

// Backend is a byte-level key/value store.
type Backend interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// Store encodes collections as JSON on top of a Backend.
type Store struct {
	backend Backend
	logger  *log.Logger
}

func New(backend Backend, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.Default()
	}
	return &Store{backend: backend, logger: logger.WithPrefix("storage")}
}

func (s *Store) Backend() Backend {
	return s.backend
}

// Load decodes the value stored under key. A missing key, a backend error, or
// undecodable data all yield fallback; only the latter two are logged.
func Load[T any](s *Store, key string, fallback T) T {
	data, err := s.backend.Get(key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("load failed, using defaults", "key", key, "err", err)
		}
		return fallback
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		s.logger.Warn("stored value is corrupt, using defaults", "key", key, "err", err)
		return fallback
	}
	return value
}

// Save encodes value under key. Failures are logged as warnings and returned
// so callers can surface them; nothing in memory is rolled back.
func (s *Store) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("encode failed", "key", key, "err", err)
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	if err := s.backend.Set(key, data); err != nil {
		s.logger.Warn("save failed", "key", key, "err", err)
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	s.logger.Debug("saved", "key", key, "bytes", len(data))
	return nil
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}
