package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/semmy-space/mj/internal/config"
	"github.com/semmy-space/mj/internal/output"
)

// ConfigGetCmd implements config get command
type ConfigGetCmd struct {
	Key string `arg:"" help:"Config key to get (e.g., backend, store_dir)"`
}

// Run executes the get command
func (cmd *ConfigGetCmd) Run(cfg *config.Config, streams *IO) error {
	value, err := cfg.Get(cmd.Key)
	if err != nil {
		return unknownKey(cmd.Key, output.ExitNotFound)
	}

	_, err = fmt.Fprintln(streams.Out, value)
	return err
}

// ConfigSetCmd implements config set command
type ConfigSetCmd struct {
	Key   string `arg:"" help:"Config key to set"`
	Value string `arg:"" help:"Value to set"`
}

// Run executes the set command
func (cmd *ConfigSetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	if _, err := cfg.Get(cmd.Key); err != nil {
		return unknownKey(cmd.Key, output.ExitUsage)
	}

	if cmd.Key == "backend" && !config.ValidBackend(cmd.Value) {
		return &output.CLIError{
			Message:  fmt.Sprintf("Invalid backend: %s. Valid backends: %s", cmd.Value, strings.Join(config.Backends(), ", ")),
			ExitCode: output.ExitUsage,
		}
	}

	if cmd.Key == "github_rate_limit" && cmd.Value != "" {
		if _, err := config.ParseRateLimit(cmd.Value); err != nil {
			return output.NewCLIError(output.ExitUsage, err.Error()).
				WithHint("Use requests per second, e.g. 5 or 0.5")
		}
	}

	if err := cfg.Set(cmd.Key, cmd.Value); err != nil {
		return output.Wrap(output.ExitConfigError, "Failed to set config", err)
	}

	fp.Formatter.PrintMessage(fmt.Sprintf("Set %s = %s", cmd.Key, cmd.Value))
	return nil
}

// ConfigUnsetCmd implements config unset command
type ConfigUnsetCmd struct {
	Key string `arg:"" help:"Config key to remove"`
}

// Run executes the unset command
func (cmd *ConfigUnsetCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	if err := cfg.Unset(cmd.Key); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			return unknownKey(cmd.Key, output.ExitUsage)
		}
		return output.Wrap(output.ExitConfigError, "Failed to unset config", err)
	}

	fp.Formatter.PrintMessage(fmt.Sprintf("Unset %s", cmd.Key))
	return nil
}

// ConfigListConfigCmd implements config list command
type ConfigListConfigCmd struct{}

type configItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Run executes the list command
func (cmd *ConfigListConfigCmd) Run(cfg *config.Config, fp *FormatterProvider) error {
	keys := config.Keys()
	items := make([]configItem, 0, len(keys))
	for _, key := range keys {
		value, _ := cfg.Get(key)
		if key == "backend" && value != "" {
			value = fmt.Sprintf("%s (%s)", value, config.BackendDescription(value))
		}
		items = append(items, configItem{Key: key, Value: value})
	}

	cols := []output.Column{
		{Name: "Key", Key: "Key"},
		{Name: "Value", Key: "Value"},
	}
	return fp.Formatter.PrintList(items, cols)
}

// ConfigPathCmd implements config path command
type ConfigPathCmd struct{}

// Run executes the path command
func (cmd *ConfigPathCmd) Run(cfg *config.Config, streams *IO) error {
	path := cfg.Path()
	fmt.Fprintln(streams.Out, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(streams.Err, "(file does not exist yet - will be created on first write)")
	} else {
		fmt.Fprintln(streams.Err, "(file exists)")
	}
	return nil
}

func unknownKey(key string, code int) error {
	return output.NewCLIError(code, fmt.Sprintf("Unknown config key: %s", key)).
		WithHint("Valid keys: " + strings.Join(config.Keys(), ", "))
}
