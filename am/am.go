// Package am holds the pidsym configuration ("I am").
//
// Values are layered: built-in defaults, /etc/pidsym/config.toml,
// ~/.pidsym/am.toml, the nearest project pidsym.toml or am.toml
// (searching upward from the working directory), PIDSYM_* environment
// variables, and finally command-line flags applied by the CLI.
package am

import "time"

// Config represents the pidsym configuration
type Config struct {
	Extract   ExtractConfig   `mapstructure:"extract" toml:"extract" json:"extract" yaml:"extract"`
	Raster    RasterConfig    `mapstructure:"raster" toml:"raster" json:"raster" yaml:"raster"`
	Manifest  ManifestConfig  `mapstructure:"manifest" toml:"manifest" json:"manifest" yaml:"manifest"`
	Sourcefix SourcefixConfig `mapstructure:"sourcefix" toml:"sourcefix" json:"sourcefix" yaml:"sourcefix"`
	Log       LogConfig       `mapstructure:"log" toml:"log" json:"log" yaml:"log"`
}

// ExtractConfig configures catalog extraction
type ExtractConfig struct {
	// Root is the PID-Symbols directory holding {ISO,PIP}/<family folder>/.
	// Empty means catalog paths are relative to the working directory.
	Root           string   `mapstructure:"root" toml:"root" json:"root" yaml:"root"`
	OutputDir      string   `mapstructure:"output_dir" toml:"output_dir" json:"output_dir" yaml:"output_dir"`
	Workers        int      `mapstructure:"workers" toml:"workers" json:"workers" yaml:"workers"` // 0 = runtime.NumCPU()
	VendorPrefixes []string `mapstructure:"vendor_prefixes" toml:"vendor_prefixes" json:"vendor_prefixes" yaml:"vendor_prefixes"`
	FamilyDirs     []string `mapstructure:"family_dirs" toml:"family_dirs" json:"family_dirs" yaml:"family_dirs"` // extra *.yaml family definitions
	Names          bool     `mapstructure:"names" toml:"names" json:"names" yaml:"names"`
	CSV            bool     `mapstructure:"csv" toml:"csv" json:"csv" yaml:"csv"`
	Analyze        bool     `mapstructure:"analyze" toml:"analyze" json:"analyze" yaml:"analyze"`
	DebounceMS     int      `mapstructure:"debounce_ms" toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"` // --watch debounce
}

// RasterConfig configures PNG conversion
type RasterConfig struct {
	Enabled        bool     `mapstructure:"enabled" toml:"enabled" json:"enabled" yaml:"enabled"`
	Size           int      `mapstructure:"size" toml:"size" json:"size" yaml:"size"`
	PNGDir         string   `mapstructure:"png_dir" toml:"png_dir" json:"png_dir" yaml:"png_dir"`
	Converters     []string `mapstructure:"converters" toml:"converters" json:"converters" yaml:"converters"` // probe order
	TimeoutSeconds int      `mapstructure:"timeout_seconds" toml:"timeout_seconds" json:"timeout_seconds" yaml:"timeout_seconds"`

	// Commands overrides the argument template of an external converter.
	// Placeholders: {in} {out} {size}
	Commands map[string]string `mapstructure:"commands" toml:"commands" json:"commands" yaml:"commands"`
}

// ManifestConfig configures allSymbols.ts generation
type ManifestConfig struct {
	Root      string `mapstructure:"root" toml:"root" json:"root" yaml:"root"`
	Out       string `mapstructure:"out" toml:"out" json:"out" yaml:"out"`
	URLPrefix string `mapstructure:"url_prefix" toml:"url_prefix" json:"url_prefix" yaml:"url_prefix"`
}

// SourcefixConfig configures fix-names and strip-logs
type SourcefixConfig struct {
	Force bool `mapstructure:"force" toml:"force" json:"force" yaml:"force"` // rewrite files with uncommitted changes
}

// LogConfig configures logging
type LogConfig struct {
	JSON  bool   `mapstructure:"json" toml:"json" json:"json" yaml:"json"`
	Theme string `mapstructure:"theme" toml:"theme" json:"theme" yaml:"theme"` // everforest, gruvbox
}

// RasterTimeout returns the per-file converter timeout; zero disables it.
func (c *Config) RasterTimeout() time.Duration {
	return time.Duration(c.Raster.TimeoutSeconds) * time.Second
}

// File system constants
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)
