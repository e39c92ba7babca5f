// Package browser opens URLs in the user's default browser.
package browser

import (
	"errors"
	"os/exec"
	"runtime"
)

// ErrUnsupported is returned on platforms without a known opener.
var ErrUnsupported = errors.New("opening a browser is not supported on this platform")

// Open opens url in the default browser without waiting for it to exit.
func Open(url string) error {
	name, args, err := command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	return exec.Command(name, args...).Start()
}

// command returns the opener invocation for goos.
func command(goos, url string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{url}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{url}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", url}, nil
	default:
		return "", nil, ErrUnsupported
	}
}
