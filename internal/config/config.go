package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// ErrUnknownKey is returned when a config key does not exist.
var ErrUnknownKey = errors.New("unknown config key")

// Config holds the CLI configuration
type Config struct {
	Backend         string `json:"backend,omitempty"`
	StoreDir        string `json:"store_dir,omitempty"`
	DefaultOutput   string `json:"default_output,omitempty"`
	GitHubClientID  string `json:"github_client_id,omitempty"`
	GitHubAPIURL    string `json:"github_api_url,omitempty"`
	GitHubRateLimit string `json:"github_rate_limit,omitempty"` // requests per second

	path string
}

// Load reads the config at path, or at ConfigPath() when path is empty.
// A missing file yields an empty config that will be saved to path.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{path: path}, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Config{path: path}
	if err := json5.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Path returns the file this config is loaded from and saved to.
func (c *Config) Path() string {
	if c.path == "" {
		return ConfigPath()
	}
	return c.path
}

// Save writes the config as JSON (valid JSON5) with owner-only permissions.
func (c *Config) Save() error {
	path := c.Path()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Keys returns the config key names in declaration order.
func Keys() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := jsonName(t.Field(i)); name != "" {
			keys = append(keys, name)
		}
	}
	return keys
}

// Get retrieves a config value by key name
func (c *Config) Get(key string) (string, error) {
	field, err := c.field(key)
	if err != nil {
		return "", err
	}
	return field.String(), nil
}

// Set sets a config value by key name and saves
func (c *Config) Set(key, value string) error {
	if key == "backend" && !ValidBackend(value) {
		return fmt.Errorf("invalid backend %q, valid backends: %s", value, strings.Join(Backends(), ", "))
	}

	field, err := c.field(key)
	if err != nil {
		return err
	}
	field.SetString(value)
	return c.Save()
}

// Unset clears a config value and saves
func (c *Config) Unset(key string) error {
	field, err := c.field(key)
	if err != nil {
		return err
	}
	field.SetString("")
	return c.Save()
}

func (c *Config) field(key string) (reflect.Value, error) {
	v := reflect.ValueOf(c).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		if name := jsonName(t.Field(i)); name != "" && name == key {
			return v.Field(i), nil
		}
	}

	return reflect.Value{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

func jsonName(f reflect.StructField) string {
	if !f.IsExported() {
		return ""
	}
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	return name
}
