package cli

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"golang.org/x/term"

	"github.com/semmy-space/mj/internal/log"
)

// Globals holds global flags available to all commands
type Globals struct {
	StoreDir        string           `help:"Directory holding token files (default ~/.deno_tokens)" name:"store-dir" env:"MJ_STORE_DIR"`
	Backend         string           `help:"Storage backend" default:"" enum:"file,keyring,auto," env:"MJ_BACKEND"`
	ConfigFile      string           `help:"Config file path" name:"config" env:"MJ_CONFIG"`
	KeyringPassword string           `help:"Password for the encrypted-file keyring" hidden:"" env:"MJ_KEYRING_PASSWORD"`
	Output          string           `help:"Output format" default:"auto" enum:"json,plain,rich,auto" short:"o" env:"MJ_OUTPUT"`
	ResultsOnly     bool             `help:"In JSON mode, print lists without the data/count envelope" name:"results-only" env:"MJ_RESULTS_ONLY"`
	Verbose         bool             `help:"Verbose output" short:"v" env:"MJ_VERBOSE"`
	Debug           bool             `help:"Debug logging" env:"MJ_DEBUG"`
	NoInput         bool             `help:"Disable interactive prompts (fail instead)" env:"MJ_NO_INPUT"`
	Force           bool             `help:"Skip confirmation prompts for destructive operations" env:"MJ_FORCE"`
	ShowVersion     kong.VersionFlag `help:"Show version and exit" name:"version"`
}

// LogLevel maps the verbosity flags to a log level.
func (g *Globals) LogLevel() string {
	switch {
	case g.Debug:
		return log.LevelDebug
	case g.Verbose:
		return log.LevelInfo
	default:
		return log.LevelWarn
	}
}

// ResolvedOutput returns the effective output mode.
// "auto" uses fallback when set, otherwise rich on a TTY and plain elsewhere.
func (g *Globals) ResolvedOutput(stdout io.Writer, fallback string) string {
	if g.Output != "auto" && g.Output != "" {
		return g.Output
	}
	if fallback != "" && fallback != "auto" {
		return fallback
	}
	if isTerminal(stdout) {
		return "rich"
	}
	return "plain"
}

// IO carries the standard streams so commands can be driven from tests.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
