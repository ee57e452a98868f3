package commands

import (
	"github.com/spf13/cobra"

	"github.com/hazop-ai/pidsym/am"
	"github.com/hazop-ai/pidsym/errors"
	"github.com/hazop-ai/pidsym/logger"
	"github.com/hazop-ai/pidsym/symbol"
	"github.com/hazop-ai/pidsym/version"
)

// Setup is the root PersistentPreRunE: it applies --config and initializes
// the global logger before any command runs.
func Setup(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	verbosity, _ := flags.GetCount("verbose")
	jsonLogs, _ := flags.GetBool("log-json")
	if path, _ := flags.GetString("config"); path != "" {
		am.SetConfigFile(path)
	}

	// A broken config must not hide `am where`; commands that need the
	// config report the load error themselves.
	if cfg, err := am.Load(); err == nil {
		jsonLogs = jsonLogs || cfg.Log.JSON
		if cfg.Log.Theme != "" {
			logger.SetTheme(cfg.Log.Theme)
		}
	}

	if err := logger.Initialize(jsonLogs, verbosity); err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	return nil
}

// loadConfig loads and validates the layered configuration.
func loadConfig() (*am.Config, error) {
	cfg, err := am.Load()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadRegistry returns the built-in families plus any custom family files
// found in extract.family_dirs.
func loadRegistry(cfg *am.Config) (*symbol.Registry, error) {
	reg, err := symbol.DefaultRegistry(version.Get().Semver())
	if err != nil {
		return nil, err
	}
	for _, dir := range cfg.Extract.FamilyDirs {
		if err := reg.LoadDir(dir); err != nil {
			return nil, errors.Wrapf(err, "failed to load families from %s", dir)
		}
	}
	return reg, nil
}
