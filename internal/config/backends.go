package config

import "sort"

// backendDescriptions maps each storage backend to a short description.
var backendDescriptions = map[string]string{
	"file":    "one base64-encoded file per token under ~/.deno_tokens",
	"keyring": "OS keyring (macOS Keychain, Secret Service, Windows Credential Manager)",
	"auto":    "keyring when available, file otherwise",
}

// DefaultBackend is used when neither a flag nor the config selects one.
const DefaultBackend = "file"

// ValidBackend reports whether name is a known backend.
func ValidBackend(name string) bool {
	_, ok := backendDescriptions[name]
	return ok
}

// BackendDescription returns the description for a backend, or "" if unknown.
func BackendDescription(name string) string {
	return backendDescriptions[name]
}

// Backends returns a sorted list of valid backend names
func Backends() []string {
	names := make([]string, 0, len(backendDescriptions))
	for name := range backendDescriptions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
