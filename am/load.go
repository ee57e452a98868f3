package am

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/hazop-ai/pidsym/errors"
)

// EnvPrefix is the environment variable prefix (PIDSYM_RASTER_SIZE=512)
const EnvPrefix = "PIDSYM"

var (
	globalConfig   *Config
	viperInstance  *viper.Viper
	explicitConfig string

	// ConfigSources records which file each merged key came from.
	// Keys absent here come from defaults or the environment.
	ConfigSources = map[string]SourceInfo{}
)

// SetConfigFile makes path the highest-precedence config file (--config).
// It must be called before the first Load.
func SetConfigFile(path string) {
	explicitConfig = path
	Reset()
}

// Load reads the pidsym configuration using Viper
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v, err := initViper()
	if err != nil {
		return nil, err
	}

	config, err := LoadWithViper(v)
	if err != nil {
		return nil, err
	}

	globalConfig = config
	return globalConfig, nil
}

// GetViper returns the Viper instance for advanced configuration access
func GetViper() (*viper.Viper, error) {
	return initViper()
}

// LoadWithViper loads configuration using a provided Viper instance
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// LoadFromFile loads configuration from a specific file path on top of defaults
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	return LoadWithViper(v)
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
	ConfigSources = map[string]SourceInfo{}
}

// initViper initializes Viper with configuration sources and defaults
func initViper() (*viper.Viper, error) {
	if viperInstance != nil {
		return viperInstance, nil
	}

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := mergeConfigFiles(v, configCandidates()); err != nil {
		return nil, err
	}

	viperInstance = v
	return v, nil
}

// configCandidate is one file in the precedence cascade
type configCandidate struct {
	path     string
	source   ConfigSource
	required bool
}

// configCandidates lists config files from lowest to highest precedence
func configCandidates() []configCandidate {
	candidates := []configCandidate{
		{path: "/etc/pidsym/config.toml", source: SourceSystem},
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, configCandidate{
			path:   filepath.Join(home, ".pidsym", "am.toml"),
			source: SourceUser,
		})
	}
	if wd, err := os.Getwd(); err == nil {
		if project := findProjectConfig(wd); project != "" {
			candidates = append(candidates, configCandidate{path: project, source: SourceProject})
		}
	}
	if explicitConfig != "" {
		candidates = append(candidates, configCandidate{path: explicitConfig, source: SourceExplicit, required: true})
	}
	return candidates
}

// ConfigFiles lists the config files that are checked, from lowest to
// highest precedence, whether or not they exist.
func ConfigFiles() []SourceInfo {
	var files []SourceInfo
	for _, c := range configCandidates() {
		files = append(files, SourceInfo{Source: c.source, Path: c.path})
	}
	return files
}

// findProjectConfig searches for pidsym.toml or am.toml by walking up from dir.
// Returns the first file found, or "" when none exists.
func findProjectConfig(dir string) string {
	for {
		for _, name := range []string{"pidsym.toml", "am.toml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// mergeConfigFiles merges each existing candidate into v in order and
// records where every key came from.
func mergeConfigFiles(v *viper.Viper, candidates []configCandidate) error {
	for _, c := range candidates {
		if _, err := os.Stat(c.path); err != nil {
			if c.required {
				return errors.Wrapf(err, "config file %s", c.path)
			}
			continue
		}

		fileViper := viper.New()
		fileViper.SetConfigFile(c.path)
		fileViper.SetConfigType("toml")
		if err := fileViper.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "failed to parse config file %s", c.path)
		}

		settings := fileViper.AllSettings()
		if err := v.MergeConfigMap(settings); err != nil {
			return errors.Wrapf(err, "failed to merge config file %s", c.path)
		}
		for _, key := range flattenKeys(settings, "") {
			ConfigSources[key] = SourceInfo{Source: c.source, Path: c.path}
		}
	}
	return nil
}

// flattenKeys returns dotted leaf keys of a nested settings map
func flattenKeys(settings map[string]interface{}, prefix string) []string {
	var keys []string
	for k, val := range settings {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if nested, ok := val.(map[string]interface{}); ok && len(nested) > 0 {
			keys = append(keys, flattenKeys(nested, full)...)
			continue
		}
		keys = append(keys, full)
	}
	return keys
}

// Get returns a configuration value using dot notation
func Get(key string) (interface{}, bool) {
	v, err := initViper()
	if err != nil || !v.IsSet(key) {
		return nil, false
	}
	return v.Get(key), true
}
