package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/warmpath/db"
	"github.com/harperreed/warmpath/logging"
	"github.com/harperreed/warmpath/storage"
)

func TestCopyKeys(t *testing.T) {
	src := storage.NewMemoryBackend()
	require.NoError(t, src.Set(storage.KeyClients, []byte(`[{"id":"c1"}]`)))
	require.NoError(t, src.Set(storage.KeyPipeline, []byte(`[]`)))
	require.NoError(t, src.Set("unrelated", []byte(`x`)))

	dst := storage.NewMemoryBackend()
	require.NoError(t, dst.Set(storage.KeyTasks, []byte(`["keep"]`)))

	n, err := copyKeys(src, dst, false, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := dst.Get(storage.KeyClients)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"c1"}]`, string(got))

	got, err = dst.Get(storage.KeyTasks)
	require.NoError(t, err)
	assert.Equal(t, `["keep"]`, string(got), "keys missing from the source are not touched")

	_, err = dst.Get("unrelated")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCopyKeysDryRun(t *testing.T) {
	src := storage.NewMemoryBackend()
	require.NoError(t, src.Set(storage.KeyTemplates, []byte(`[]`)))
	dst := storage.NewMemoryBackend()

	n, err := copyKeys(src, dst, true, logging.Discard())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, dst.Keys())
}

func TestCopyKeysIntoSQLite(t *testing.T) {
	src := storage.NewMemoryBackend()
	require.NoError(t, src.Set(storage.KeyAdvisorProfile, []byte(`{"advisor_name":"Pat"}`)))

	kv, err := db.Open(filepath.Join(t.TempDir(), "warmpath.db"))
	require.NoError(t, err)
	defer func() { _ = kv.Close() }()

	_, err = copyKeys(src, kv, false, logging.Discard())
	require.NoError(t, err)

	got, err := kv.Get(storage.KeyAdvisorProfile)
	require.NoError(t, err)
	assert.JSONEq(t, `{"advisor_name":"Pat"}`, string(got))
}

func TestBackupFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "warmpath.db")

	require.NoError(t, backupFile(path, logging.Discard()), "a missing file needs no backup")

	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
	require.NoError(t, backupFile(path, logging.Discard()))

	matches, err := filepath.Glob(path + ".backup.*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}
