package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/99designs/keyring"
	"github.com/adrg/xdg"

	"github.com/semmy-space/mj/internal/log"
)

// ServiceName is the service identifier for keyring storage.
const ServiceName = "mj"

// KeyringStore implements Store on top of the OS keyring. Items are keyed
// by safe key so listing behaves the same as FileStore.
type KeyringStore struct {
	ring   keyring.Keyring
	logger log.Logger
}

// KeyringConfig selects which keyring backends may be used. The zero value
// lets the keyring library pick the platform default.
type KeyringConfig struct {
	Backends []keyring.BackendType
	// FileDir is used by the encrypted-file keyring backend.
	FileDir string
	// FilePassword unlocks the encrypted-file backend. Empty means prompt
	// on the terminal.
	FilePassword string
}

// NewKeyringStore opens the keyring. It fails when no usable backend exists
// on this platform.
func NewKeyringStore(kc KeyringConfig, opts ...Option) (*KeyringStore, error) {
	cfg := keyring.Config{
		ServiceName:              ServiceName,
		AllowedBackends:          kc.Backends,
		KeychainTrustApplication: true,
		FileDir:                  kc.FileDir,
		FilePasswordFunc:         keyring.TerminalPrompt,
	}
	if cfg.FileDir == "" {
		cfg.FileDir = filepath.Join(xdg.DataHome, ServiceName, "keyring")
	}
	if kc.FilePassword != "" {
		cfg.FilePasswordFunc = keyring.FixedStringPrompt(kc.FilePassword)
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}

	o := buildOptions(opts)
	return &KeyringStore{ring: ring, logger: o.logger.With("backend", "keyring")}, nil
}

// Store saves value in the keyring.
func (s *KeyringStore) Store(key, value string) error {
	item := keyring.Item{
		Key:   SafeKey(key),
		Data:  []byte(value),
		Label: ServiceName + " " + SafeKey(key),
	}
	if err := s.ring.Set(item); err != nil {
		return &StorageError{Op: "store", Key: key, Err: err}
	}
	return nil
}

// Retrieve reads the value for key from the keyring.
func (s *KeyringStore) Retrieve(key string) (string, bool, error) {
	item, err := s.ring.Get(SafeKey(key))
	if err != nil {
		if isKeyringNotFound(err) {
			return "", false, nil
		}
		return "", false, &StorageError{Op: "retrieve", Key: key, Err: err}
	}
	return string(item.Data), true, nil
}

// Delete removes key from the keyring.
func (s *KeyringStore) Delete(key string) (bool, error) {
	if err := s.ring.Remove(SafeKey(key)); err != nil {
		if isKeyringNotFound(err) {
			return false, nil
		}
		return false, &StorageError{Op: "delete", Key: key, Err: err}
	}
	return true, nil
}

// Exists reports whether key is present in the keyring.
func (s *KeyringStore) Exists(key string) bool {
	_, err := s.ring.Get(SafeKey(key))
	if err != nil && !isKeyringNotFound(err) {
		s.logger.Debug("keyring lookup failed", "key", SafeKey(key), "error", err)
	}
	return err == nil
}

// ListTokens returns all keys in the keyring, sorted.
func (s *KeyringStore) ListTokens() []string {
	keys, err := s.ring.Keys()
	if err != nil {
		s.logger.Debug("keyring list failed", "error", err)
		return []string{}
	}
	sort.Strings(keys)
	return keys
}

// ClearAll removes every key. Failures are logged and skipped.
func (s *KeyringStore) ClearAll() int {
	keys, err := s.ring.Keys()
	if err != nil {
		s.logger.Debug("keyring list failed", "error", err)
		return 0
	}

	count := 0
	for _, key := range keys {
		if err := s.ring.Remove(key); err != nil {
			if !isKeyringNotFound(err) {
				s.logger.Warn("failed to remove keyring item", "key", key, "error", err)
			}
			continue
		}
		count++
	}
	return count
}

// isKeyringNotFound covers both the keyring sentinel and the raw not-exist
// error the file backend returns from Remove.
func isKeyringNotFound(err error) bool {
	return errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist)
}
