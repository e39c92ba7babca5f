package secrets

import (
	"os"
	"path/filepath"
)

// DirName is the directory under the home directory that holds credential
// files. The name is shared with stores written by earlier versions of the
// tool so existing credentials keep working.
const DirName = ".deno_tokens"

// DefaultRoot returns the store root derived from the environment.
func DefaultRoot() string {
	return rootFromEnv(os.Getenv)
}

// rootFromEnv resolves the home directory from HOME, then USERPROFILE, and
// falls back to the current directory.
func rootFromEnv(getenv func(string) string) string {
	home := getenv("HOME")
	if home == "" {
		home = getenv("USERPROFILE")
	}
	if home == "" {
		home = "."
	}
	return filepath.Join(home, DirName)
}
