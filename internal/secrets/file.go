package secrets

import (
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/semmy-space/mj/internal/log"
)

const (
	// tokenExt is the suffix of every credential file.
	tokenExt = ".token"

	fileMode os.FileMode = 0600
	dirMode  os.FileMode = 0700
)

// restrict applies owner-only permissions after a write; tests replace it.
var restrict = restrictFile

// FileStore implements Store with one base64-encoded file per credential.
type FileStore struct {
	root   string
	logger log.Logger
}

// Option configures a store.
type Option func(*options)

type options struct {
	logger log.Logger
}

// WithLogger sets the logger that records errors swallowed by Exists,
// ListTokens and ClearAll.
func WithLogger(l log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

func buildOptions(opts []Option) options {
	o := options{logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewFileStore creates a file-backed store rooted at root. An empty root
// means DefaultRoot(). The directory is not created until the first Store.
func NewFileStore(root string, opts ...Option) *FileStore {
	if root == "" {
		root = DefaultRoot()
	}
	o := buildOptions(opts)
	return &FileStore{
		root:   root,
		logger: o.logger.With("backend", "file"),
	}
}

// Root returns the directory holding the credential files.
func (s *FileStore) Root() string {
	return s.root
}

// Path returns the file that backs key.
func (s *FileStore) Path(key string) string {
	return filepath.Join(s.root, SafeKey(key)+tokenExt)
}

// Store writes value to the key's file, replacing previous content, and
// restricts the file to its owner where the platform supports it.
// A write that fails halfway is not rolled back. In particular, when only the
// permission change fails the error is returned but the value is already on
// disk, so Exists reports true and Retrieve returns it.
func (s *FileStore) Store(key, value string) error {
	if err := os.MkdirAll(s.root, dirMode); err != nil {
		return &StorageError{Op: "store", Key: key, Err: err}
	}

	path := s.Path(key)
	encoded := base64.StdEncoding.EncodeToString([]byte(value))
	if err := os.WriteFile(path, []byte(encoded), fileMode); err != nil {
		return &StorageError{Op: "store", Key: key, Err: err}
	}

	// WriteFile only applies the mode when it creates the file.
	if err := restrict(path); err != nil {
		return &StorageError{Op: "store", Key: key, Err: err}
	}

	s.logger.Debug("stored token", "key", SafeKey(key))
	return nil
}

// Retrieve reads and decodes the key's file.
func (s *FileStore) Retrieve(key string) (string, bool, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("token not found", "key", SafeKey(key))
			return "", false, nil
		}
		return "", false, &StorageError{Op: "retrieve", Key: key, Err: err}
	}

	value, err := decode(string(data))
	if err != nil {
		return "", false, &StorageError{Op: "retrieve", Key: key, Err: err}
	}
	return value, true, nil
}

// decode reverses the encoding applied by Store. Surrounding whitespace and
// missing padding are tolerated so hand-edited files still load.
func decode(text string) (string, error) {
	text = strings.TrimSpace(text)
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		var rawErr error
		raw, rawErr = base64.RawStdEncoding.DecodeString(strings.TrimRight(text, "="))
		if rawErr != nil {
			return "", err
		}
	}
	return string(raw), nil
}

// Delete removes the key's file. A missing file is reported as false.
func (s *FileStore) Delete(key string) (bool, error) {
	if err := os.Remove(s.Path(key)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("token not found for deletion", "key", SafeKey(key))
			return false, nil
		}
		return false, &StorageError{Op: "delete", Key: key, Err: err}
	}
	s.logger.Debug("deleted token", "key", SafeKey(key))
	return true, nil
}

// Exists reports whether the key's path is a regular file.
func (s *FileStore) Exists(key string) bool {
	info, err := os.Stat(s.Path(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("stat failed", "key", SafeKey(key), "error", err)
		}
		return false
	}
	return info.Mode().IsRegular()
}

// ListTokens returns the safe keys of all credential files, sorted.
// Keys are not mapped back to the logical keys they were stored under.
func (s *FileStore) ListTokens() []string {
	entries, err := s.tokenFiles()
	if err != nil {
		return []string{}
	}

	keys := make([]string, 0, len(entries))
	for _, name := range entries {
		keys = append(keys, strings.TrimSuffix(name, tokenExt))
	}
	sort.Strings(keys)
	return keys
}

// ClearAll removes every credential file. Removal is best-effort: a file
// that cannot be removed is logged and skipped, and the returned count only
// includes files actually removed.
func (s *FileStore) ClearAll() int {
	entries, err := s.tokenFiles()
	if err != nil {
		return 0
	}

	count := 0
	for _, name := range entries {
		if err := os.Remove(filepath.Join(s.root, name)); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("failed to remove token file", "file", name, "error", err)
			}
			continue
		}
		count++
	}
	s.logger.Info("cleared tokens", "count", count)
	return count
}

// tokenFiles lists the names of regular files in the root ending in the
// token extension. Failures are logged and returned.
func (s *FileStore) tokenFiles() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.logger.Debug("store directory missing", "root", s.root)
		} else {
			s.logger.Warn("failed to read store directory", "root", s.root, "error", err)
		}
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), tokenExt) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}
