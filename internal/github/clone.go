package github

import (
	"errors"
	"strings"
)

// Host is the hostname a repository URL must contain.
const Host = "github.com"

var (
	// ErrInvalidRepoURL is returned when a URL does not point at GitHub.
	ErrInvalidRepoURL = errors.New("invalid GitHub repository URL")
	// ErrEmptyToken is returned when no token is available to embed.
	ErrEmptyToken = errors.New("empty token")
)

// ValidateRepoURL checks that repoURL names the GitHub host.
func ValidateRepoURL(repoURL string) error {
	if !strings.Contains(repoURL, Host) {
		return ErrInvalidRepoURL
	}
	return nil
}

// MakeCloneURL embeds token as the user part of repoURL by rewriting the
// first "github.com" into "<token>@github.com".
func MakeCloneURL(repoURL, token string) (string, error) {
	if err := ValidateRepoURL(repoURL); err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrEmptyToken
	}
	return strings.Replace(repoURL, Host, token+"@"+Host, 1), nil
}

// CloneCommand returns the git command line that clones repoURL with token.
func CloneCommand(repoURL, token string) (string, error) {
	u, err := MakeCloneURL(repoURL, token)
	if err != nil {
		return "", err
	}
	return "git clone " + u, nil
}
