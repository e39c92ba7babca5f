package main

import (
	"errors"
	"os"

	"github.com/alecthomas/kong"
	"github.com/willabides/kongplete"

	"github.com/semmy-space/mj/internal/cli"
	"github.com/semmy-space/mj/internal/output"
)

var (
	version = "dev"
)

func main() {
	cliInstance := &cli.CLI{}
	parser := kong.Must(cliInstance,
		kong.Name("mj"),
		kong.Description("Store GitHub tokens locally and build authenticated clone commands"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)

	// Answers shell completion requests and exits when one is pending.
	kongplete.Complete(parser, kongplete.WithPredictor("token", cli.TokenPredictor()))

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// Hook failures arrive wrapped in a ParseError but carry their own
		// exit code.
		var cliErr *output.CLIError
		if !errors.As(err, &cliErr) {
			parser.FatalIfErrorf(err)
		}
		exit(err)
	}

	exit(ctx.Run())
}

func exit(err error) {
	if err != nil {
		output.ReportError(output.New(output.ModePlain, os.Stdout, os.Stderr), err)
	}
	os.Exit(output.ExitCode(err))
}
