package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/semmy-space/mj/internal/config"
	"github.com/semmy-space/mj/internal/github"
	"github.com/semmy-space/mj/internal/log"
	"github.com/semmy-space/mj/internal/output"
	"github.com/semmy-space/mj/internal/secrets"
	"github.com/semmy-space/mj/pkg/browser"
)

// AuthLoginCmd implements the auth login command
type AuthLoginCmd struct {
	ClientID  string        `help:"GitHub OAuth app client ID" name:"client-id" env:"MJ_GITHUB_CLIENT_ID"`
	Scopes    []string      `help:"OAuth scopes to request" default:"repo"`
	NoBrowser bool          `help:"Do not open the verification page" name:"no-browser"`
	Timeout   time.Duration `help:"How long to wait for approval" default:"15m"`

	// openURL defaults to browser.Open.
	openURL func(string) error `kong:"-"`
}

// Run executes the login command
func (cmd *AuthLoginCmd) Run(cfg *config.Config, sp *StoreProvider, fp *FormatterProvider, g *Globals, logger log.Logger) error {
	clientID := cmd.ClientID
	if clientID == "" {
		clientID = cfg.GitHubClientID
	}
	if clientID == "" {
		return &output.CLIError{
			Message:  "GitHub OAuth client ID required",
			ExitCode: output.ExitConfigError,
			Hint:     "Run: mj config set github_client_id YOUR_CLIENT_ID",
		}
	}
	if g.NoInput {
		return &output.CLIError{
			Message:  "Device login needs user interaction",
			ExitCode: output.ExitUsage,
			Hint:     "Store an existing token instead: mj token set <token>",
		}
	}

	store, err := sp.Store()
	if err != nil {
		return err
	}

	token, err := github.DeviceLogin(context.Background(), github.DeviceConfig{
		ClientID: clientID,
		Scopes:   cmd.Scopes,
		Timeout:  cmd.Timeout,
	}, cmd.prompt(fp.Formatter, logger))
	if err != nil {
		return output.Wrap(output.ExitAuth, "Login failed", err)
	}

	if err := store.Store(secrets.DefaultKey, token.AccessToken); err != nil {
		return storageError(err)
	}

	fp.Formatter.PrintMessage(fmt.Sprintf("Authenticated successfully, token stored in %s backend", sp.Backend()))
	return nil
}

// prompt shows the device code and opens the verification page unless
// --no-browser is set. A browser that fails to start is only logged.
func (cmd *AuthLoginCmd) prompt(formatter output.Formatter, logger log.Logger) github.DevicePrompt {
	open := cmd.openURL
	if open == nil {
		open = browser.Open
	}
	return func(userCode, verificationURI string) {
		formatter.PrintMessage(fmt.Sprintf("First copy your one-time code: %s", userCode))
		formatter.PrintMessage(fmt.Sprintf("Then open: %s", verificationURI))
		if cmd.NoBrowser {
			return
		}
		if err := open(verificationURI); err != nil {
			logger.Debug("could not open browser", "url", verificationURI, "error", err)
		}
	}
}

// AuthStatusCmd implements the auth status command
type AuthStatusCmd struct{}

type authStatus struct {
	Login   string `json:"login"`
	Name    string `json:"name,omitempty"`
	Scopes  string `json:"scopes"`
	Backend string `json:"backend"`
}

// Run executes the status command
func (cmd *AuthStatusCmd) Run(cfg *config.Config, sp *StoreProvider, fp *FormatterProvider) error {
	store, err := sp.Store()
	if err != nil {
		return err
	}

	token, ok, err := store.Retrieve(secrets.DefaultKey)
	if err != nil {
		return storageError(err)
	}
	if !ok {
		return &output.CLIError{
			Message:  "Not logged in",
			ExitCode: output.ExitNotFound,
			Hint:     "Run: mj auth login  or  mj token set <token>",
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opts := []github.ClientOption{github.WithBaseURL(cfg.GitHubAPIURL)}
	if cfg.GitHubRateLimit != "" {
		rps, err := config.ParseRateLimit(cfg.GitHubRateLimit)
		if err != nil {
			return output.Wrap(output.ExitConfigError, "Invalid github_rate_limit", err)
		}
		opts = append(opts, github.WithRateLimit(rps, config.RateBurst(rps)))
	}

	client := github.NewClient(ctx, token, opts...)
	viewer, err := client.Viewer(ctx)
	if err != nil {
		if errors.Is(err, github.ErrBadCredentials) {
			return &output.CLIError{
				Message:  "Stored GitHub token was rejected",
				ExitCode: output.ExitAuth,
				Hint:     "Run: mj auth login",
				Err:      err,
			}
		}
		return output.Wrap(output.ExitNetworkError, "Failed to reach GitHub", err)
	}

	scopes := strings.Join(viewer.Scopes, ",")
	if scopes == "" {
		scopes = "-"
	}
	return fp.Formatter.Print(authStatus{
		Login:   viewer.Login,
		Name:    viewer.Name,
		Scopes:  scopes,
		Backend: sp.Backend(),
	})
}

// AuthLogoutCmd implements the auth logout command
type AuthLogoutCmd struct{}

// Run executes the logout command
func (cmd *AuthLogoutCmd) Run(sp *StoreProvider, fp *FormatterProvider) error {
	store, err := sp.Store()
	if err != nil {
		return err
	}

	deleted, err := store.Delete(secrets.DefaultKey)
	if err != nil {
		return storageError(err)
	}

	if deleted {
		fp.Formatter.PrintMessage("Logged out, GitHub token removed")
	} else {
		fp.Formatter.PrintMessage("Not logged in")
	}
	return nil
}
