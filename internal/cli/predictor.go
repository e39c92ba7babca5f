package cli

import (
	"os"

	"github.com/posener/complete"

	"github.com/semmy-space/mj/internal/config"
	"github.com/semmy-space/mj/internal/log"
	"github.com/semmy-space/mj/internal/secrets"
)

// TokenPredictor completes --key values from the file store. The store
// directory is resolved the same way as for commands, minus flags: the
// environment, then the config file, then the default.
func TokenPredictor() complete.Predictor {
	return complete.PredictFunc(func(complete.Args) []string {
		return tokenKeys(os.Getenv)
	})
}

func tokenKeys(getenv func(string) string) []string {
	root := getenv("MJ_STORE_DIR")
	if root == "" {
		if cfg, err := config.Load(getenv("MJ_CONFIG")); err == nil {
			root = cfg.StoreDir
		}
	}
	store := secrets.NewFileStore(root, secrets.WithLogger(log.NewNoop()))
	return store.ListTokens()
}
