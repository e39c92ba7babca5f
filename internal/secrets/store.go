// Package secrets persists string credentials between invocations of mj.
//
// The default backend, FileStore, keeps one file per credential under a
// single directory. Values are base64 encoded, which is obfuscation and not
// encryption; protection comes from owner-only file permissions. Nothing is
// cached in memory and no locking is performed: every call goes to the
// filesystem and concurrent writers to the same key race, last write wins.
//
// Values are encoded from their UTF-8 bytes. Files written by older tools
// that encoded Latin-1 code units directly (characters 0x80 to 0xFF) decode
// to those raw bytes, which are not valid UTF-8; ASCII values such as GitHub
// tokens are unaffected.
package secrets

import (
	"fmt"
	"strings"
)

// Store is the credential storage contract shared by all backends.
//
// Not-found is never an error: Retrieve reports it through ok, Delete
// returns false, Exists returns false and ListTokens returns an empty slice.
// Only unexpected failures surface as *StorageError.
type Store interface {
	// Store writes value under key, replacing any previous value.
	Store(key, value string) error
	// Retrieve returns the value for key. ok is false when nothing is stored.
	Retrieve(key string) (value string, ok bool, err error)
	// Delete removes key and reports whether anything was removed.
	Delete(key string) (bool, error)
	// Exists reports whether key is stored. It never fails.
	Exists(key string) bool
	// ListTokens returns the safe keys of every stored credential.
	ListTokens() []string
	// ClearAll removes every credential and returns how many were removed.
	ClearAll() int
}

// DefaultKey is the key the CLI stores the GitHub token under.
const DefaultKey = "github_token"

// StorageError reports an unexpected failure in a storage operation.
type StorageError struct {
	Op  string // store, retrieve or delete
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("failed to %s token %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// SafeKey maps a logical key to the name used on disk: every character
// outside [A-Za-z0-9_-] becomes an underscore. Distinct keys can collide
// ("a/b" and "a_b" both map to "a_b") and then share one credential.
func SafeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z',
			r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9',
			r == '_', r == '-':
			return r
		}
		return '_'
	}, key)
}
