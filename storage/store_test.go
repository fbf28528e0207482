// ABOUTME: Tests for the JSON persistence collaborator
// ABOUTME: Verifies fallback on missing or corrupt data and warning on failed writes
package storage

import (
	"bytes"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func newTestStore(t *testing.T) (*Store, *MemoryBackend, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	backend := NewMemoryBackend()
	return New(backend, log.New(&buf)), backend, &buf
}

func TestLoadMissingKeyReturnsFallback(t *testing.T) {
	s, _, logs := newTestStore(t)

	got := Load(s, KeyClients, []item{{ID: "default"}})
	assert.Equal(t, []item{{ID: "default"}}, got)
	assert.Empty(t, logs.String(), "a missing key is not worth a warning")
}

func TestSaveThenLoad(t *testing.T) {
	s, _, _ := newTestStore(t)

	require.NoError(t, s.Save(KeyClients, []item{{ID: "c1", Name: "Alice"}}))
	got := Load(s, KeyClients, []item(nil))
	assert.Equal(t, []item{{ID: "c1", Name: "Alice"}}, got)
}

func TestLoadCorruptDataReturnsFallback(t *testing.T) {
	s, backend, logs := newTestStore(t)
	require.NoError(t, backend.Set(KeyTasks, []byte("{not json")))

	got := Load(s, KeyTasks, []item{})
	assert.Equal(t, []item{}, got)
	assert.Contains(t, logs.String(), "corrupt")
}

func TestSaveFailureIsReturnedAndLogged(t *testing.T) {
	s, backend, logs := newTestStore(t)
	require.NoError(t, s.Save(KeyPipeline, []item{{ID: "kept"}}))

	backend.FailWrites = errors.New("disk full")
	err := s.Save(KeyPipeline, []item{{ID: "lost"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Contains(t, logs.String(), "save failed")

	backend.FailWrites = nil
	assert.Equal(t, []item{{ID: "kept"}}, Load(s, KeyPipeline, []item(nil)))
}

func TestSaveUnencodableValue(t *testing.T) {
	s, _, _ := newTestStore(t)
	err := s.Save(KeyPipeline, map[string]any{"ch": make(chan int)})
	assert.Error(t, err)
}

func TestMemoryBackendCopiesValues(t *testing.T) {
	m := NewMemoryBackend()
	value := []byte("abc")
	require.NoError(t, m.Set("k", value))
	value[0] = 'z'

	got, err := m.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	require.NoError(t, m.Delete("k"))
	_, err = m.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)
}
