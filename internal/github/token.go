// Package github holds the GitHub-specific pieces of mj: token format
// checks, authenticated clone URLs, a small REST client used to verify
// tokens, and the OAuth device-flow login.
package github

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidTokenFormat is returned for tokens without a known prefix.
var ErrInvalidTokenFormat = errors.New("invalid token format")

// TokenPrefixes lists the accepted prefixes: classic personal access
// tokens and OAuth app tokens.
var TokenPrefixes = []string{"ghp_", "gho_"}

// ValidateTokenFormat checks that token starts with a known prefix.
func ValidateTokenFormat(token string) error {
	for _, p := range TokenPrefixes {
		if strings.HasPrefix(token, p) {
			return nil
		}
	}
	return fmt.Errorf("%w: GitHub tokens should start with %s", ErrInvalidTokenFormat,
		strings.Join(quoted(TokenPrefixes), " or "))
}

func quoted(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = "'" + v + "'"
	}
	return out
}
