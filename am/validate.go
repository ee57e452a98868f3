package am

import (
	"github.com/hazop-ai/pidsym/errors"
)

// knownConverters are the converter names raster understands
var knownConverters = map[string]bool{
	"oksvg":        true,
	"rsvg-convert": true,
	"inkscape":     true,
	"magick":       true,
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	// Workers: 0 = one per CPU, negative = invalid
	if c.Extract.Workers < 0 {
		return errors.NewInvalidConfigError("extract.workers must be >= 0, got %d", c.Extract.Workers)
	}
	if c.Extract.OutputDir == "" {
		return errors.NewInvalidConfigError("extract.output_dir cannot be empty")
	}
	if c.Extract.DebounceMS < 0 {
		return errors.NewInvalidConfigError("extract.debounce_ms must be >= 0, got %d", c.Extract.DebounceMS)
	}
	for _, p := range c.Extract.VendorPrefixes {
		switch p {
		case "":
			return errors.NewInvalidConfigError("extract.vendor_prefixes cannot contain an empty prefix")
		case "xmlns", "xlink", "xml":
			return errors.NewInvalidConfigError("extract.vendor_prefixes cannot strip the %q namespace", p)
		}
	}

	if c.Raster.Size <= 0 {
		return errors.NewInvalidConfigError("raster.size must be > 0, got %d", c.Raster.Size)
	}
	if c.Raster.TimeoutSeconds < 0 {
		return errors.NewInvalidConfigError("raster.timeout_seconds must be >= 0, got %d", c.Raster.TimeoutSeconds)
	}
	if len(c.Raster.Converters) == 0 {
		return errors.NewInvalidConfigError("raster.converters cannot be empty")
	}
	for _, name := range c.Raster.Converters {
		if !knownConverters[name] {
			return errors.WithHintf(
				errors.NewInvalidConfigError("raster.converters: unknown converter %q", name),
				"supported: oksvg, rsvg-convert, inkscape, magick")
		}
	}
	for name := range c.Raster.Commands {
		if name == "oksvg" || !knownConverters[name] {
			return errors.NewInvalidConfigError("raster.commands: %q is not an external converter", name)
		}
	}

	if c.Manifest.Out == "" {
		return errors.NewInvalidConfigError("manifest.out cannot be empty")
	}

	return nil
}
