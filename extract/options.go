package extract

import (
	"path/filepath"
	"runtime"
	"time"

	"github.com/hazop-ai/pidsym/am"
	"github.com/hazop-ai/pidsym/raster"
	"github.com/hazop-ai/pidsym/symbol"
)

// Options is everything one extraction run needs. Relative paths resolve
// against the family folder, Family.Dir(Root).
type Options struct {
	Family *symbol.Family
	Root   string

	JSONPath  string // default: <family dir>/<Family.CatalogFile>
	SVGPath   string // companion SVG; default: <family dir>/<Family.CompanionFile>
	OutputDir string

	Names   bool
	CSV     bool
	CSVPath string // default: <family dir>/<Family.CSVFile>
	XLSX    string // empty disables the workbook
	Analyze bool

	VendorPrefixes []string
	Workers        int // 0 = runtime.NumCPU()

	PNG        bool
	PNGDir     string
	PNGSize    int
	Converters []raster.Converter // nil = raster.Build(am.DefaultConverters)
	Timeout    time.Duration
}

// FromConfig builds Options for family f from cfg.
func FromConfig(cfg *am.Config, f *symbol.Family) (Options, error) {
	opts := Options{
		Family:         f,
		Root:           cfg.Extract.Root,
		OutputDir:      cfg.Extract.OutputDir,
		Names:          cfg.Extract.Names,
		CSV:            cfg.Extract.CSV,
		Analyze:        cfg.Extract.Analyze,
		VendorPrefixes: cfg.Extract.VendorPrefixes,
		Workers:        cfg.Extract.Workers,
		PNG:            cfg.Raster.Enabled,
		PNGDir:         cfg.Raster.PNGDir,
		PNGSize:        cfg.Raster.Size,
		Timeout:        cfg.RasterTimeout(),
	}
	if opts.PNG {
		convs, err := raster.Build(cfg.Raster.Converters, cfg.Raster.Commands)
		if err != nil {
			return opts, err
		}
		opts.Converters = convs
	}
	return opts, nil
}

// Dir is the family folder the run reads from and writes to.
func (o Options) Dir() string {
	return o.Family.Dir(o.Root)
}

// Inputs are the resolved catalog and companion SVG paths, the files a
// re-run depends on.
func (o Options) Inputs() []string {
	o = o.withDefaults()
	paths := []string{o.JSONPath}
	if o.SVGPath != "" {
		paths = append(paths, o.SVGPath)
	}
	return paths
}

func (o Options) resolve(path, fallback string) string {
	if path == "" {
		path = fallback
	}
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(o.Dir(), path)
}

func (o Options) withDefaults() Options {
	o.JSONPath = o.resolve(o.JSONPath, o.Family.CatalogFile)
	o.SVGPath = o.resolve(o.SVGPath, o.Family.CompanionFile)
	o.OutputDir = o.resolve(o.OutputDir, am.DefaultOutputDir)
	o.CSVPath = o.resolve(o.CSVPath, o.Family.CSVFile)
	if o.XLSX != "" {
		o.XLSX = o.resolve(o.XLSX, "")
	}
	o.PNGDir = o.resolve(o.PNGDir, am.DefaultPNGDir)
	if o.PNGSize <= 0 {
		o.PNGSize = am.DefaultPNGSize
	}
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	return o
}
