package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/semmy-space/mj/internal/github"
	"github.com/semmy-space/mj/internal/output"
	"github.com/semmy-space/mj/internal/secrets"
)

// KeyFlag selects which token a command works on.
type KeyFlag struct {
	Key string `help:"Token key" short:"k" default:"github_token" predictor:"token"`
}

// TokenSetCmd implements the token set command
type TokenSetCmd struct {
	KeyFlag
	Value      string `arg:"" optional:"" help:"Token value (read from stdin or prompted when omitted)"`
	NoValidate bool   `help:"Skip the GitHub token format check" name:"no-validate"`
}

// Run executes the set command
func (cmd *TokenSetCmd) Run(sp *StoreProvider, fp *FormatterProvider, g *Globals, streams *IO) error {
	value := cmd.Value
	if value == "" {
		if g.NoInput {
			return &output.CLIError{
				Message:  "Token value required",
				ExitCode: output.ExitUsage,
				Hint:     "Pass the token as an argument: mj token set <token>",
			}
		}
		var err error
		value, err = readSecret(streams, fmt.Sprintf("Token for %s: ", cmd.Key))
		if err != nil {
			return output.Wrap(output.ExitGeneral, "Failed to read token", err)
		}
	}

	if value == "" {
		return output.NewCLIError(output.ExitUsage, "Token value must not be empty")
	}

	if cmd.Key == secrets.DefaultKey && !cmd.NoValidate {
		if err := github.ValidateTokenFormat(value); err != nil {
			return &output.CLIError{
				Message:  err.Error(),
				ExitCode: output.ExitUsage,
				Hint:     "Use --no-validate to store it anyway",
				Err:      err,
			}
		}
	}

	store, err := sp.Store()
	if err != nil {
		return err
	}
	if err := store.Store(cmd.Key, value); err != nil {
		return storageError(err)
	}

	fp.Formatter.PrintMessage(fmt.Sprintf("Token stored: %s", secrets.SafeKey(cmd.Key)))
	return nil
}

// readSecret reads one line: hidden on a terminal, plain otherwise.
func readSecret(streams *IO, prompt string) (string, error) {
	if f, ok := streams.In.(*os.File); ok && isTerminal(f) {
		fmt.Fprint(streams.Err, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(streams.Err)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := bufio.NewReader(streams.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// TokenGetCmd implements the token get command
type TokenGetCmd struct {
	KeyFlag
	Mask bool `help:"Show only the last 4 characters"`
}

// tokenValue is the JSON shape of a retrieved token.
type tokenValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Run executes the get command
func (cmd *TokenGetCmd) Run(sp *StoreProvider, fp *FormatterProvider, streams *IO) error {
	store, err := sp.Store()
	if err != nil {
		return err
	}

	value, ok, err := store.Retrieve(cmd.Key)
	if err != nil {
		return storageError(err)
	}
	if !ok {
		return notFound(cmd.Key)
	}

	if cmd.Mask {
		value = maskSecret(value)
	}

	if fp.Mode == output.ModeJSON {
		return fp.Formatter.Print(tokenValue{Key: secrets.SafeKey(cmd.Key), Value: value})
	}
	_, err = fmt.Fprintln(streams.Out, value)
	return err
}

// TokenDeleteCmd implements the token delete command
type TokenDeleteCmd struct {
	KeyFlag
}

// Run executes the delete command. Deleting a missing token is not an error.
func (cmd *TokenDeleteCmd) Run(sp *StoreProvider, fp *FormatterProvider) error {
	store, err := sp.Store()
	if err != nil {
		return err
	}

	deleted, err := store.Delete(cmd.Key)
	if err != nil {
		return storageError(err)
	}

	if deleted {
		fp.Formatter.PrintMessage(fmt.Sprintf("Token deleted: %s", secrets.SafeKey(cmd.Key)))
	} else {
		fp.Formatter.PrintMessage(fmt.Sprintf("Token not found: %s", secrets.SafeKey(cmd.Key)))
	}
	return nil
}

// TokenExistsCmd implements the token exists command
type TokenExistsCmd struct {
	KeyFlag
}

// Run prints true or false and fails with ExitNotFound when absent.
func (cmd *TokenExistsCmd) Run(sp *StoreProvider, fp *FormatterProvider) error {
	store, err := sp.Store()
	if err != nil {
		return err
	}

	exists := store.Exists(cmd.Key)
	if err := fp.Formatter.Print(exists); err != nil {
		return err
	}
	if !exists {
		return notFound(cmd.Key)
	}
	return nil
}

// TokenListCmd implements the token list command
type TokenListCmd struct{}

type tokenItem struct {
	Key  string `json:"key"`
	Path string `json:"path,omitempty"`
}

// Run executes the list command
func (cmd *TokenListCmd) Run(sp *StoreProvider, fp *FormatterProvider) error {
	store, err := sp.Store()
	if err != nil {
		return err
	}

	keys := store.ListTokens()
	items := make([]tokenItem, 0, len(keys))
	ps, hasPaths := store.(pathStore)
	for _, key := range keys {
		item := tokenItem{Key: key}
		if hasPaths {
			item.Path = ps.Path(key)
		}
		items = append(items, item)
	}

	if len(items) == 0 && fp.Mode != output.ModeJSON {
		fp.Formatter.PrintMessage("No tokens stored")
		fp.Formatter.PrintHint("Run 'mj token set <token>' to store one")
		return nil
	}

	cols := []output.Column{{Name: "Key", Key: "Key"}}
	if hasPaths {
		cols = append(cols, output.Column{Name: "Path", Key: "Path"})
	}
	return fp.Formatter.PrintList(items, cols)
}

// TokenClearCmd implements the token clear command
type TokenClearCmd struct{}

// Run deletes every token after confirmation.
func (cmd *TokenClearCmd) Run(sp *StoreProvider, fp *FormatterProvider, g *Globals, streams *IO) error {
	store, err := sp.Store()
	if err != nil {
		return err
	}

	if !g.Force {
		if g.NoInput {
			return &output.CLIError{
				Message:  "Refusing to delete all tokens without confirmation",
				ExitCode: output.ExitUsage,
				Hint:     "Re-run with --force",
			}
		}
		fmt.Fprintf(streams.Err, "Delete all tokens (%s backend)? [y/N]: ", sp.Backend())
		answer, _ := bufio.NewReader(streams.In).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fp.Formatter.PrintMessage("Aborted")
			return nil
		}
	}

	count := store.ClearAll()
	fp.Formatter.PrintMessage(fmt.Sprintf("Cleared %d tokens", count))
	return nil
}

// TokenPathCmd implements the token path command
type TokenPathCmd struct {
	KeyFlag
}

// Run prints the path of the file that backs the token, whether or not it
// exists yet.
func (cmd *TokenPathCmd) Run(sp *StoreProvider, streams *IO) error {
	store, err := sp.Store()
	if err != nil {
		return err
	}

	ps, ok := store.(pathStore)
	if !ok {
		return output.NewCLIError(output.ExitUsage,
			fmt.Sprintf("The %s backend does not store tokens in files", sp.Backend()))
	}

	_, err = fmt.Fprintln(streams.Out, ps.Path(cmd.Key))
	return err
}

func notFound(key string) error {
	return output.NewCLIError(output.ExitNotFound, fmt.Sprintf("Token not found: %s", secrets.SafeKey(key))).
		WithHint(fmt.Sprintf("Run: mj token set --key %s <token>", key))
}

// maskSecret masks sensitive values, showing only last 4 characters
func maskSecret(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
