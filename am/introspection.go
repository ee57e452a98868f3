package am

import (
	"os"
	"sort"
	"strings"

	"github.com/hazop-ai/pidsym/errors"
)

// ConfigSource represents where a configuration value came from
type ConfigSource string

const (
	SourceDefault     ConfigSource = "default"
	SourceSystem      ConfigSource = "system"      // /etc/pidsym/config.toml
	SourceUser        ConfigSource = "user"        // ~/.pidsym/am.toml
	SourceProject     ConfigSource = "project"     // nearest pidsym.toml / am.toml
	SourceExplicit    ConfigSource = "explicit"    // --config
	SourceEnvironment ConfigSource = "environment" // PIDSYM_* env vars
)

// SourceOrder lists sources from lowest to highest precedence
var SourceOrder = []ConfigSource{
	SourceDefault,
	SourceSystem,
	SourceUser,
	SourceProject,
	SourceExplicit,
	SourceEnvironment,
}

// SourceInfo tracks where a configuration value originated
type SourceInfo struct {
	Source ConfigSource
	Path   string // file path or environment variable name
}

// SettingInfo contains metadata about a configuration setting
type SettingInfo struct {
	Key        string       `json:"key"`
	Value      interface{}  `json:"value"`
	Source     ConfigSource `json:"source"`
	SourcePath string       `json:"source_path,omitempty"`
}

// ConfigIntrospection provides metadata about the active configuration
type ConfigIntrospection struct {
	Settings []SettingInfo `json:"settings"`
}

// GetConfigIntrospection returns every effective setting with its source
func GetConfigIntrospection() (*ConfigIntrospection, error) {
	v, err := GetViper()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config for introspection")
	}

	intro := &ConfigIntrospection{}
	flattenSettingsWithSources(v.AllSettings(), "", intro, ConfigSources)
	return intro, nil
}

// flattenSettingsWithSources flattens settings and assigns sources from sourceMap
func flattenSettingsWithSources(settings map[string]interface{}, prefix string, intro *ConfigIntrospection, sourceMap map[string]SourceInfo) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := settings[key]
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]interface{}); ok && len(nested) > 0 {
			flattenSettingsWithSources(nested, fullKey, intro, sourceMap)
			continue
		}

		info := SourceInfo{Source: SourceDefault, Path: ""}
		if si, ok := sourceMap[fullKey]; ok {
			info = si
		}

		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(fullKey, ".", "_"))
		if _, ok := os.LookupEnv(envKey); ok {
			info = SourceInfo{Source: SourceEnvironment, Path: envKey}
		}

		intro.Settings = append(intro.Settings, SettingInfo{
			Key:        fullKey,
			Value:      value,
			Source:     info.Source,
			SourcePath: info.Path,
		})
	}
}
