package am

import (
	"github.com/spf13/viper"
)

// Default values shared by SetDefaults and the CLI flag defaults.
const (
	DefaultOutputDir  = "svg"
	DefaultPNGDir     = "png"
	DefaultPNGSize    = 256
	DefaultTimeoutSec = 60
	DefaultDebounceMS = 500
	DefaultManifest   = "src/lib/symbols/allSymbols.ts"
	DefaultURLPrefix  = "/symbols"
)

// DefaultConverters is the probe order for PNG converters.
// oksvg is built in and always available.
var DefaultConverters = []string{"oksvg", "rsvg-convert", "inkscape", "magick"}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	// Extraction
	v.SetDefault("extract.root", "")
	v.SetDefault("extract.output_dir", DefaultOutputDir)
	v.SetDefault("extract.workers", 0)
	v.SetDefault("extract.vendor_prefixes", []string{"v"}) // Visio metadata attributes
	v.SetDefault("extract.family_dirs", []string{})
	v.SetDefault("extract.names", true)
	v.SetDefault("extract.csv", true)
	v.SetDefault("extract.analyze", true)
	v.SetDefault("extract.debounce_ms", DefaultDebounceMS)

	// PNG conversion
	v.SetDefault("raster.enabled", false)
	v.SetDefault("raster.size", DefaultPNGSize)
	v.SetDefault("raster.png_dir", DefaultPNGDir)
	v.SetDefault("raster.converters", DefaultConverters)
	v.SetDefault("raster.timeout_seconds", DefaultTimeoutSec)
	v.SetDefault("raster.commands", map[string]string{})

	// Manifest
	v.SetDefault("manifest.root", "assests/Symbols/PID-Symbols")
	v.SetDefault("manifest.out", DefaultManifest)
	v.SetDefault("manifest.url_prefix", DefaultURLPrefix)

	v.SetDefault("sourcefix.force", false)

	v.SetDefault("log.json", false)
	v.SetDefault("log.theme", "everforest")
}

// Defaults returns a Config populated only from built-in defaults.
func Defaults() *Config {
	v := viper.New()
	SetDefaults(v)
	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults always decode
		panic(err)
	}
	return cfg
}
