package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestStore_SetGet(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	var missing record
	found, err := store.Get("absent", &missing)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Set("auth-storage", record{Name: "alice", Count: 2}))

	var got record
	found, err = store.Get("auth-storage", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, record{Name: "alice", Count: 2}, got)
}

func TestStore_InvalidKey(t *testing.T) {
	store, err := Open(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", "UPPER", "a/b", "with space"} {
		t.Run(key, func(t *testing.T) {
			assert.Error(t, store.Set(key, 1))
		})
	}
}

func TestStore_RemoveAndClear(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("token", "abc"))
	require.NoError(t, store.Set("permission_last_sync", 123))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep"), 0o600))

	require.NoError(t, store.Remove("token"))
	require.NoError(t, store.Remove("token"))

	keys, err := store.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"permission_last_sync"}, keys)

	require.NoError(t, store.Clear())

	keys, err = store.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}
