package cli

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/semmy-space/mj/internal/config"
	"github.com/semmy-space/mj/internal/log"
	"github.com/semmy-space/mj/internal/output"
	"github.com/semmy-space/mj/internal/secrets"
)

// StoreProvider lazily opens the credential store selected by flags and
// config, so commands that never touch it (config, version) never open a
// keyring.
type StoreProvider struct {
	backend string
	root    string
	keyring secrets.KeyringConfig
	logger  log.Logger

	once  sync.Once
	store secrets.Store
	err   error
}

// NewStoreProvider resolves backend and root: flag or env first, then the
// config file, then the defaults.
func NewStoreProvider(cfg *config.Config, g *Globals, logger log.Logger) *StoreProvider {
	backend := g.Backend
	if backend == "" {
		backend = cfg.Backend
	}
	if backend == "" {
		backend = config.DefaultBackend
	}

	root := g.StoreDir
	if root == "" {
		root = cfg.StoreDir
	}
	if root == "" {
		root = secrets.DefaultRoot()
	}

	return &StoreProvider{
		backend: backend,
		root:    root,
		keyring: secrets.KeyringConfig{
			FileDir:      filepath.Join(config.DataDir(), "keyring"),
			FilePassword: g.KeyringPassword,
		},
		logger: logger,
	}
}

// Backend returns the configured backend name.
func (sp *StoreProvider) Backend() string {
	return sp.backend
}

// Root returns the directory used by the file backend.
func (sp *StoreProvider) Root() string {
	return sp.root
}

// Store returns the credential store, opening it on first call.
func (sp *StoreProvider) Store() (secrets.Store, error) {
	sp.once.Do(func() {
		store, err := secrets.NewStore(sp.backend, sp.root, sp.keyring, secrets.WithLogger(sp.logger))
		if err != nil {
			sp.err = &output.CLIError{
				ExitCode: output.ExitConfigError,
				Message:  fmt.Sprintf("Failed to initialize token store: %v", err),
				Err:      err,
			}
			return
		}
		sp.logger.Info("token store ready", "backend", sp.backend, "root", sp.root)
		sp.store = store
	})
	return sp.store, sp.err
}

// pathStore is implemented by backends that keep one file per token.
type pathStore interface {
	Path(key string) string
}

// storageError converts a store failure into a CLIError.
func storageError(err error) error {
	return &output.CLIError{
		ExitCode: output.ExitStorage,
		Message:  err.Error(),
		Err:      err,
	}
}
