// File: internal/session/store_test.go
package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/riku-sakamoto/manabo-cli/api/schemas"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path, zap.NewNop())

	assert.False(t, store.Exists())

	state := &schemas.SessionState{
		Cookies: []schemas.Cookie{
			{Name: "JSESSIONID", Value: "abc123", Domain: "manabo.cnc.chukyo-u.ac.jp", Path: "/", Secure: true, HTTPOnly: true},
			{Name: "shib_idp_session", Value: "xyz", Domain: "manabo.cnc.chukyo-u.ac.jp", Path: "/", Expires: 1893456000},
		},
		SavedAt: time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Save(state))
	assert.True(t, store.Exists())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, state.Cookies, loaded.Cookies)
	assert.True(t, state.SavedAt.Equal(loaded.SavedAt))
}

func TestStoreSaveCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "state.json")
	store := NewStore(path, zap.NewNop())

	require.NoError(t, store.Save(&schemas.SessionState{
		Cookies: []schemas.Cookie{{Name: "s", Value: "v"}},
		SavedAt: time.Now(),
	}))
	assert.True(t, store.Exists())
}

func TestStoreSavePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path, zap.NewNop())

	require.NoError(t, store.Save(&schemas.SessionState{
		Cookies: []schemas.Cookie{{Name: "s", Value: "v"}},
		SavedAt: time.Now(),
	}))

	// Session material is secret; the artifact must not be group or world
	// readable.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	store := NewStore(path, zap.NewNop())
	_, err := store.Load()
	assert.Error(t, err)
}

func TestStoreClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path, zap.NewNop())

	require.NoError(t, store.Save(&schemas.SessionState{
		Cookies: []schemas.Cookie{{Name: "s", Value: "v"}},
		SavedAt: time.Now(),
	}))
	require.NoError(t, store.Clear())
	assert.False(t, store.Exists())

	// Clearing an absent state is not an error.
	assert.NoError(t, store.Clear())
}
