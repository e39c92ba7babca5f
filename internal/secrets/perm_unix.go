//go:build !windows

package secrets

import "os"

// restrictFile limits path to owner read/write.
func restrictFile(path string) error {
	return os.Chmod(path, fileMode)
}
