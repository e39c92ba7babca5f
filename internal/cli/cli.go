package cli

import (
	"os"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/mj/internal/config"
	"github.com/semmy-space/mj/internal/log"
	"github.com/semmy-space/mj/internal/output"
)

// FormatterProvider wraps the formatter interface for Kong binding
type FormatterProvider struct {
	Formatter output.Formatter
	Mode      string
}

// CLI is the root command structure
type CLI struct {
	Globals

	Token      TokenCmd                     `cmd:"" help:"Manage stored tokens"`
	Make       MakeCmd                      `cmd:"" aliases:"mk" help:"Print a git clone command for a GitHub repository using the stored token"`
	Auth       AuthCmd                      `cmd:"" help:"GitHub authentication commands"`
	Config     ConfigCmd                    `cmd:"" help:"Configuration commands"`
	Completion kongplete.InstallCompletions `cmd:"" help:"Install shell completions"`
	Version    VersionCmd                   `cmd:"" help:"Show version information"`

	// IO defaults to the process streams; tests replace it.
	IO *IO `kong:"-"`
}

// AfterApply runs once flags are applied and before the command executes.
// It loads config, sets up logging and output, and binds dependencies.
func (c *CLI) AfterApply(ctx *kong.Context) error {
	streams := c.streams()

	cfg, err := config.Load(c.ConfigFile)
	if err != nil {
		return &output.CLIError{
			ExitCode: output.ExitConfigError,
			Message:  err.Error(),
			Err:      err,
		}
	}

	logger := log.New(streams.Err, c.LogLevel())
	log.SetDefault(logger)

	mode := c.ResolvedOutput(streams.Out, cfg.DefaultOutput)
	formatter := &FormatterProvider{Mode: mode}
	if mode == output.ModeJSON {
		formatter.Formatter = output.NewJSON(c.ResultsOnly, streams.Out, streams.Err)
	} else {
		formatter.Formatter = output.New(mode, streams.Out, streams.Err)
	}

	ctx.Bind(cfg)
	ctx.Bind(formatter)
	ctx.Bind(&c.Globals)
	ctx.Bind(streams)
	ctx.BindTo(logger, (*log.Logger)(nil))
	ctx.Bind(NewStoreProvider(cfg, &c.Globals, logger))

	return nil
}

func (c *CLI) streams() *IO {
	if c.IO == nil {
		c.IO = &IO{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	}
	return c.IO
}

// TokenCmd holds token storage subcommands
type TokenCmd struct {
	Set    TokenSetCmd    `cmd:"" aliases:"st" help:"Store a token"`
	Get    TokenGetCmd    `cmd:"" help:"Print a stored token"`
	Delete TokenDeleteCmd `cmd:"" aliases:"rm" help:"Delete a stored token"`
	Exists TokenExistsCmd `cmd:"" help:"Check whether a token is stored (exit 4 if not)"`
	List   TokenListCmd   `cmd:"" aliases:"ls" help:"List stored tokens"`
	Clear  TokenClearCmd  `cmd:"" help:"Delete all stored tokens"`
	Path   TokenPathCmd   `cmd:"" help:"Print the file that backs a token"`
}

// AuthCmd holds GitHub authentication subcommands
type AuthCmd struct {
	Login  AuthLoginCmd  `cmd:"" help:"Log in to GitHub with the device flow and store the token"`
	Status AuthStatusCmd `cmd:"" help:"Verify the stored token against the GitHub API"`
	Logout AuthLogoutCmd `cmd:"" help:"Remove the stored GitHub token"`
}

// ConfigCmd holds configuration subcommands
type ConfigCmd struct {
	Get   ConfigGetCmd        `cmd:"" help:"Get a configuration value"`
	Set   ConfigSetCmd        `cmd:"" help:"Set a configuration value"`
	Unset ConfigUnsetCmd      `cmd:"" help:"Remove a configuration value"`
	List  ConfigListConfigCmd `cmd:"" name:"list" help:"List all configuration values"`
	Path  ConfigPathCmd       `cmd:"" help:"Show config file path"`
}

// VersionCmd shows version information
type VersionCmd struct{}

func (cmd *VersionCmd) Run(ctx *kong.Context, streams *IO) error {
	_, err := streams.Out.Write([]byte("mj version " + ctx.Model.Vars()["version"] + "\n"))
	return err
}
