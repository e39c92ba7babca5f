package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "mj"

// ConfigDir returns the XDG-compliant config directory for mj
// Typically ~/.config/mj/ on Linux
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ConfigPath returns the full path to the default config file
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json5")
}

// DataDir returns the XDG-compliant data directory for mj
// Typically ~/.local/share/mj/ on Linux (keyring file backend)
func DataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
