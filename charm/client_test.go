// ABOUTME: Tests for the charm KV client using a local badger database
// ABOUTME: Covers key translation, prefix listing, and the sync subcommands
package charm

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/warmpath/storage"
)

func TestClientGetSet(t *testing.T) {
	c := NewTestClient(t)

	_, err := c.Get(storage.KeyClients)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, c.Set(storage.KeyClients, []byte(`[]`)))
	got, err := c.Get(storage.KeyClients)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))

	require.NoError(t, c.Delete(storage.KeyClients))
	_, err = c.Get(storage.KeyClients)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestClientKeysWithPrefix(t *testing.T) {
	c := NewTestClient(t)
	require.NoError(t, c.Set(storage.KeyTasks, []byte("1")))
	require.NoError(t, c.Set(storage.KeyPipeline, []byte("2")))
	require.NoError(t, c.Set("unrelated", []byte("3")))

	keys, err := c.Keys(storage.KeyPrefix)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{storage.KeyTasks, storage.KeyPipeline}, keys)
}

func TestClientBacksStorageStore(t *testing.T) {
	s := storage.New(NewTestClient(t), nil)
	require.NoError(t, s.Save(storage.KeyAdvisorProfile, map[string]string{"advisor_name": "Dana"}))
	got := storage.Load(s, storage.KeyAdvisorProfile, map[string]string{})
	assert.Equal(t, "Dana", got["advisor_name"])
}

func TestLocalClientIdentity(t *testing.T) {
	c := NewTestClient(t)
	assert.True(t, c.IsConnected())
	assert.False(t, c.Config().AutoSync)
	assert.NoError(t, c.Sync())
}

func TestSyncWipeCommand(t *testing.T) {
	c := NewTestClient(t)
	require.NoError(t, c.Set(storage.KeyTasks, []byte("1")))
	require.NoError(t, c.Set("unrelated", []byte("2")))

	var out bytes.Buffer
	require.NoError(t, SyncWipeCommand(c, &out, nil))
	assert.Contains(t, out.String(), "--confirm")
	_, err := c.Get(storage.KeyTasks)
	require.NoError(t, err, "nothing is deleted without --confirm")

	out.Reset()
	require.NoError(t, SyncWipeCommand(c, &out, []string{"--confirm"}))
	assert.Contains(t, out.String(), "Wiped 1 keys")
	_, err = c.Get(storage.KeyTasks)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = c.Get("unrelated")
	assert.NoError(t, err)

	require.NoError(t, SyncWipeCommand(c, &out, []string{"--confirm", "--all"}))
	_, err = c.Get("unrelated")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSyncStatusCommand(t *testing.T) {
	c := NewTestClient(t)
	require.NoError(t, c.Set(storage.KeyTasks, []byte("1")))

	var out bytes.Buffer
	require.NoError(t, SyncStatusCommand(c, &out, nil))
	assert.Contains(t, out.String(), "Server:    localhost")
	assert.Contains(t, out.String(), "Keys:      1")

	assert.Contains(t, out.String(), "Last sync: never")
	assert.Contains(t, out.String(), "Data:      stale")

	out.Reset()
	require.NoError(t, SyncNowCommand(c, &out, nil))
	assert.Contains(t, out.String(), "Synced")

	out.Reset()
	require.NoError(t, SyncStatusCommand(c, &out, nil))
	assert.NotContains(t, out.String(), "Last sync: never")
	assert.Contains(t, out.String(), "Data:      fresh")
}

func TestClientStaleThreshold(t *testing.T) {
	c := NewTestClient(t)
	now := time.Now()
	assert.True(t, c.IsStale(now), "a device that never synced is stale")

	require.NoError(t, c.Sync())
	last, ok := c.LastSync()
	require.True(t, ok)
	assert.WithinDuration(t, now, last, time.Minute)

	assert.False(t, c.IsStale(last))
	threshold := c.Config().StaleThreshold
	assert.True(t, c.IsStale(last.Add(threshold+time.Second)))
}
