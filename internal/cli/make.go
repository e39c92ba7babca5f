package cli

import (
	"fmt"

	"github.com/semmy-space/mj/internal/github"
	"github.com/semmy-space/mj/internal/output"
	"github.com/semmy-space/mj/internal/secrets"
)

// MakeCmd prints a clone command with the stored GitHub token embedded.
type MakeCmd struct {
	RepoURL string `arg:"" name:"repo-url" help:"GitHub repository URL (e.g. https://github.com/owner/repo.git)"`
}

type cloneCommand struct {
	URL     string `json:"url"`
	Command string `json:"command"`
}

// Run executes the make command
func (cmd *MakeCmd) Run(sp *StoreProvider, fp *FormatterProvider) error {
	if err := github.ValidateRepoURL(cmd.RepoURL); err != nil {
		return &output.CLIError{
			Message:  fmt.Sprintf("Invalid GitHub repository URL: %s", cmd.RepoURL),
			ExitCode: output.ExitUsage,
			Hint:     "The URL must contain github.com",
			Err:      err,
		}
	}

	store, err := sp.Store()
	if err != nil {
		return err
	}

	token, ok, err := store.Retrieve(secrets.DefaultKey)
	if err != nil {
		return storageError(err)
	}
	if !ok || token == "" {
		return output.NewCLIError(output.ExitNotFound, "No GitHub token found").
			WithHint("Run: mj token set <token>  or  mj auth login")
	}

	url, err := github.MakeCloneURL(cmd.RepoURL, token)
	if err != nil {
		return output.Wrap(output.ExitGeneral, "Failed to build clone URL", err)
	}
	command, err := github.CloneCommand(cmd.RepoURL, token)
	if err != nil {
		return output.Wrap(output.ExitGeneral, "Failed to build clone command", err)
	}

	result := cloneCommand{URL: url, Command: command}
	if fp.Mode == output.ModeJSON {
		return fp.Formatter.Print(result)
	}
	return fp.Formatter.Print(result.Command)
}
