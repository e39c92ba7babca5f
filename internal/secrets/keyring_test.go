package secrets

import (
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/mj/internal/log"
)

func newTestKeyring(t *testing.T) *KeyringStore {
	t.Helper()
	s, err := NewKeyringStore(KeyringConfig{
		Backends:     []keyring.BackendType{keyring.FileBackend},
		FileDir:      filepath.Join(t.TempDir(), "keyring"),
		FilePassword: "test-password",
	}, WithLogger(log.NewNoop()))
	require.NoError(t, err)
	return s
}

func TestKeyringStoreLifecycle(t *testing.T) {
	s := newTestKeyring(t)

	_, ok, err := s.Retrieve("github_token")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, s.Exists("github_token"))

	require.NoError(t, s.Store("github_token", "ghp_123"))
	value, ok, err := s.Retrieve("github_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ghp_123", value)
	assert.True(t, s.Exists("github_token"))

	deleted, err := s.Delete("github_token")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete("github_token")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestKeyringStoreUsesSafeKeys(t *testing.T) {
	s := newTestKeyring(t)
	require.NoError(t, s.Store("a/b", "v"))

	value, ok, err := s.Retrieve("a_b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
}

func TestKeyringStoreListAndClear(t *testing.T) {
	s := newTestKeyring(t)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, s.Store(k, "v"))
	}
	_, err := s.Delete("b")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "c"}, s.ListTokens())
	assert.Equal(t, 2, s.ClearAll())
	assert.Empty(t, s.ListTokens())
}

func TestNewStoreBackends(t *testing.T) {
	root := filepath.Join(t.TempDir(), DirName)

	store, err := NewStore("", root, KeyringConfig{}, WithLogger(log.NewNoop()))
	require.NoError(t, err)
	fs, ok := store.(*FileStore)
	require.True(t, ok)
	assert.Equal(t, root, fs.Root())

	store, err = NewStore(BackendFile, root, KeyringConfig{})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)

	store, err = NewStore(BackendKeyring, root, KeyringConfig{
		Backends:     []keyring.BackendType{keyring.FileBackend},
		FileDir:      t.TempDir(),
		FilePassword: "pw",
	})
	require.NoError(t, err)
	assert.IsType(t, &KeyringStore{}, store)

	_, err = NewStore("vault", root, KeyringConfig{})
	assert.ErrorContains(t, err, "unknown storage backend")
}

func TestNewStoreAutoFallsBackToFile(t *testing.T) {
	// No backend in the allowed list can be opened, so auto must fall back.
	store, err := NewStore(BackendAuto, t.TempDir(), KeyringConfig{
		Backends: []keyring.BackendType{keyring.BackendType("does-not-exist")},
	}, WithLogger(log.NewNoop()))
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, store)
}
