package secrets

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/semmy-space/mj/internal/log"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), DirName), WithLogger(log.NewNoop()))
}

func TestStoreAndRetrieve(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Store("github_token", "ghp_123"))

	value, ok, err := s.Retrieve("github_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ghp_123", value)

	path := filepath.Join(s.Root(), "github_token.token")
	assert.Equal(t, path, s.Path("github_token"))
	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}
}

func TestStoreCreatesRootLazily(t *testing.T) {
	s := newTestStore(t)

	_, err := os.Stat(s.Root())
	assert.True(t, errors.Is(err, fs.ErrNotExist), "root should not exist before first store")

	require.NoError(t, s.Store("k", "v"))
	info, err := os.Stat(s.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStoreNestedRoot(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "a", "b", "c"), WithLogger(log.NewNoop()))
	require.NoError(t, s.Store("k", "v"))
	assert.True(t, s.Exists("k"))
}

func TestStoreFileContentIsBase64(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store("api_key", "sk-proj-1234567890"))

	data, err := os.ReadFile(s.Path("api_key"))
	require.NoError(t, err)
	assert.Equal(t, "c2stcHJvai0xMjM0NTY3ODkw", string(data))
}

func TestStoreReplacesContent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store("k", "a much longer first value"))
	require.NoError(t, s.Store("k", "short"))

	value, ok, err := s.Retrieve("k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "short", value)
}

func TestStoreTightensExistingPermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("no POSIX permission bits")
	}
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Root(), 0700))
	require.NoError(t, os.WriteFile(s.Path("k"), []byte("b2xk"), 0644))

	require.NoError(t, s.Store("k", "new"))

	info, err := os.Stat(s.Path("k"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestStorePermissionFailureKeepsValue(t *testing.T) {
	s := newTestStore(t)
	restrict = func(string) error { return fs.ErrPermission }
	t.Cleanup(func() { restrict = restrictFile })

	err := s.Store("github_token", "ghp_123")
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "store", storageErr.Op)
	assert.ErrorIs(t, err, fs.ErrPermission)

	// The value was written before the permission step failed.
	assert.True(t, s.Exists("github_token"))
	value, ok, err := s.Retrieve("github_token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ghp_123", value)
}

func TestRoundTrip(t *testing.T) {
	values := []string{
		"ghp_1234567890abcdef",
		"super_secret_password",
		"with spaces and\nnewlines\t",
		"unicode: héllo wörld ✓ 日本語",
		"==padding==",
		string([]byte{0x00, 0x01, 0xff}),
		"x",
	}

	s := newTestStore(t)
	for _, v := range values {
		require.NoError(t, s.Store("k", v))
		got, ok, err := s.Retrieve("k")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, v, got)
	}
}

func TestIndependentKeys(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store("k1", "v1"))
	require.NoError(t, s.Store("k2", "v2"))

	v1, _, err := s.Retrieve("k1")
	require.NoError(t, err)
	v2, _, err := s.Retrieve("k2")
	require.NoError(t, err)
	assert.Equal(t, "v1", v1)
	assert.Equal(t, "v2", v2)
}

func TestSanitizedKeysCollide(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store("a/b", "shared"))

	value, ok, err := s.Retrieve("a_b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "shared", value)
	assert.Equal(t, []string{"a_b"}, s.ListTokens())
}

func TestRetrieveMissing(t *testing.T) {
	s := newTestStore(t)

	value, ok, err := s.Retrieve("never_stored")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestRetrieveToleratesWhitespaceAndMissingPadding(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Root(), 0700))

	require.NoError(t, os.WriteFile(s.Path("nl"), []byte("Z2hwXzEyMw==\n"), 0600))
	value, ok, err := s.Retrieve("nl")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ghp_123", value)

	require.NoError(t, os.WriteFile(s.Path("nopad"), []byte("YQ"), 0600))
	value, _, err = s.Retrieve("nopad")
	require.NoError(t, err)
	assert.Equal(t, "a", value)
}

func TestRetrieveLatin1File(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Root(), 0700))
	// "café" encoded one byte per Latin-1 code unit.
	require.NoError(t, os.WriteFile(s.Path("legacy"), []byte("Y2Fm6Q=="), 0600))

	value, ok, err := s.Retrieve("legacy")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "caf\xe9", value)
	assert.False(t, utf8.ValidString(value))
}

func TestRetrieveMalformed(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Root(), 0700))
	require.NoError(t, os.WriteFile(s.Path("bad"), []byte("not*base64!"), 0600))

	_, ok, err := s.Retrieve("bad")
	require.Error(t, err)
	assert.False(t, ok)

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "retrieve", serr.Op)
	assert.Equal(t, "bad", serr.Key)
}

func TestRetrieveReadFailure(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Path("dir"), 0700))

	_, _, err := s.Retrieve("dir")
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "retrieve", serr.Op)
}

func TestStoreFailureWrapsCause(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	s := NewFileStore(filepath.Join(blocker, DirName), WithLogger(log.NewNoop()))
	err := s.Store("k", "v")
	require.Error(t, err)

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "store", serr.Op)
	assert.NotNil(t, errors.Unwrap(err))
	assert.Contains(t, err.Error(), "failed to store token")
}

func TestDeleteIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store("k", "v"))

	deleted, err := s.Delete("k")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.Delete("k")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteWithoutRoot(t *testing.T) {
	s := newTestStore(t)
	deleted, err := s.Delete("k")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDeleteFailure(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Path("full"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(s.Path("full"), "child"), []byte("x"), 0600))

	deleted, err := s.Delete("full")
	assert.False(t, deleted)
	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "delete", serr.Op)
}

func TestExists(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.Exists("k"), "missing root")

	require.NoError(t, s.Store("k", "v"))
	assert.True(t, s.Exists("k"))

	_, err := s.Delete("k")
	require.NoError(t, err)
	assert.False(t, s.Exists("k"))
}

func TestExistsIgnoresDirectories(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Path("dir"), 0700))
	assert.False(t, s.Exists("dir"))
}

func TestListTokens(t *testing.T) {
	s := newTestStore(t)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, s.Store(k, "v-"+k))
	}
	_, err := s.Delete("b")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a", "c"}, s.ListTokens())
}

func TestListTokensReturnsSafeKeys(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store("team/api key", "v"))
	assert.Equal(t, []string{"team_api_key"}, s.ListTokens())
}

func TestListTokensSkipsOtherEntries(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store("keep", "v"))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "sub.token"), 0700))

	assert.Equal(t, []string{"keep"}, s.ListTokens())
}

func TestListTokensMissingRoot(t *testing.T) {
	s := newTestStore(t)
	tokens := s.ListTokens()
	assert.NotNil(t, tokens)
	assert.Empty(t, tokens)
}

func TestListTokensLogsUnexpectedFailure(t *testing.T) {
	root := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(root, []byte("x"), 0600))

	var buf bytes.Buffer
	s := NewFileStore(root, WithLogger(log.New(&buf, log.LevelWarn)))

	assert.Empty(t, s.ListTokens())
	assert.Equal(t, 0, s.ClearAll())
	assert.Contains(t, buf.String(), "failed to read store directory")
}

func TestClearAll(t *testing.T) {
	s := newTestStore(t)
	for _, k := range []string{"github_token", "api_key", "db_password"} {
		require.NoError(t, s.Store(k, "v"))
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "keep.txt"), []byte("x"), 0600))

	assert.Equal(t, 3, s.ClearAll())
	assert.Empty(t, s.ListTokens())

	_, err := os.Stat(filepath.Join(s.Root(), "keep.txt"))
	assert.NoError(t, err, "non-token files are left alone")

	assert.Equal(t, 0, s.ClearAll())
}

func TestClearAllContinuesPastFailures(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("directory permissions do not block removal on Windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}

	var buf bytes.Buffer
	s := NewFileStore(filepath.Join(t.TempDir(), DirName), WithLogger(log.New(&buf, log.LevelWarn)))
	for _, k := range []string{"a", "b"} {
		require.NoError(t, s.Store(k, "v"))
	}

	require.NoError(t, os.Chmod(s.Root(), 0500))
	t.Cleanup(func() { _ = os.Chmod(s.Root(), 0700) })

	assert.Equal(t, 0, s.ClearAll())
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("failed to remove token file")),
		"every file is attempted")
	assert.Equal(t, []string{"a", "b"}, s.ListTokens())
}

func TestClearAllMissingRoot(t *testing.T) {
	assert.Equal(t, 0, newTestStore(t).ClearAll())
}

func TestEmptyKey(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Store("", "v"))

	assert.Equal(t, filepath.Join(s.Root(), ".token"), s.Path(""))
	value, ok, err := s.Retrieve("")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)
	assert.Equal(t, []string{""}, s.ListTokens())
}

func TestFileStoreSatisfiesStore(t *testing.T) {
	var _ Store = (*FileStore)(nil)
	var _ Store = (*KeyringStore)(nil)
}
