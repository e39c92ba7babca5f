//go:build windows

package secrets

// restrictFile is a no-op: Windows has no POSIX permission bits and the file
// keeps the ACL inherited from its directory.
func restrictFile(string) error {
	return nil
}
