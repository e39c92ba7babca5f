package secrets

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Backend names accepted by NewStore.
const (
	BackendFile    = "file"
	BackendKeyring = "keyring"
	BackendAuto    = "auto"
)

var fallbackWarning sync.Once

// NewStore creates the store for the named backend. An empty backend means
// BackendFile. For BackendAuto the OS keyring is tried first, except under
// WSL and headless Linux where it is unreliable; if the keyring is
// unavailable the file store rooted at root is used instead.
func NewStore(backend, root string, kc KeyringConfig, opts ...Option) (Store, error) {
	o := buildOptions(opts)

	switch backend {
	case "", BackendFile:
		return NewFileStore(root, opts...), nil

	case BackendKeyring:
		return NewKeyringStore(kc, opts...)

	case BackendAuto:
		if IsWSL() || IsHeadless() {
			o.logger.Info("detected WSL/headless environment, using file storage")
			return NewFileStore(root, opts...), nil
		}
		store, err := NewKeyringStore(kc, opts...)
		if err != nil {
			fallbackWarning.Do(func() {
				o.logger.Warn("keyring unavailable, falling back to file storage", "error", err)
			})
			return NewFileStore(root, opts...), nil
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// IsWSL returns true if running under Windows Subsystem for Linux.
func IsWSL() bool {
	if runtime.GOOS != "linux" {
		return false
	}

	data, err := os.ReadFile("/proc/version")
	if err != nil {
		return false
	}

	version := strings.ToLower(string(data))
	return strings.Contains(version, "microsoft") || strings.Contains(version, "wsl")
}

// IsHeadless returns true on Linux when no display server is available.
// macOS and Windows are assumed to have a GUI session.
func IsHeadless() bool {
	if runtime.GOOS != "linux" {
		return false
	}
	return os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == ""
}
