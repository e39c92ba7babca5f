package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	oauthgithub "golang.org/x/oauth2/github"
)

// DefaultScopes are requested when the caller does not name any. "repo"
// is what cloning private repositories needs.
var DefaultScopes = []string{"repo"}

// ErrMissingClientID is returned when no OAuth app client ID is configured.
var ErrMissingClientID = errors.New("GitHub OAuth client ID required")

// DeviceConfig configures the OAuth device authorization flow.
type DeviceConfig struct {
	ClientID string
	Scopes   []string
	// Endpoint defaults to github.com.
	Endpoint oauth2.Endpoint
	// Timeout bounds the whole flow, including the wait for the user.
	Timeout time.Duration
}

// DevicePrompt is told the code the user has to enter and where.
type DevicePrompt func(userCode, verificationURI string)

// DeviceLogin runs the device flow: it requests a user code, hands it to
// prompt and polls until the user approves, denies or the code expires.
func DeviceLogin(ctx context.Context, dc DeviceConfig, prompt DevicePrompt) (*oauth2.Token, error) {
	if dc.ClientID == "" {
		return nil, ErrMissingClientID
	}

	endpoint := dc.Endpoint
	if endpoint.DeviceAuthURL == "" {
		endpoint = oauthgithub.Endpoint
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams

	scopes := dc.Scopes
	if len(scopes) == 0 {
		scopes = DefaultScopes
	}

	timeout := dc.Timeout
	if timeout == 0 {
		timeout = 15 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cfg := &oauth2.Config{
		ClientID: dc.ClientID,
		Endpoint: endpoint,
		Scopes:   scopes,
	}

	da, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device authorization failed: %w", err)
	}

	prompt(da.UserCode, da.VerificationURI)

	token, err := cfg.DeviceAccessToken(ctx, da)
	if err != nil {
		return nil, fmt.Errorf("device login failed: %w", err)
	}
	return token, nil
}
