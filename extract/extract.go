// Package extract turns a family catalog into symbol files.
//
// A run loads the catalog, resolves display names, normalizes and writes one
// SVG per symbol, then emits the reference indexes, the analysis report and
// optionally PNG renders. Only a catalog or write failure aborts a run;
// naming and rasterization problems are logged and recorded as warnings.
package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hazop-ai/pidsym/am"
	"github.com/hazop-ai/pidsym/catalog"
	"github.com/hazop-ai/pidsym/emit"
	"github.com/hazop-ai/pidsym/errors"
	"github.com/hazop-ai/pidsym/logger"
	"github.com/hazop-ai/pidsym/naming"
	"github.com/hazop-ai/pidsym/raster"
	"github.com/hazop-ai/pidsym/symbol"
)

// Symbol is one written symbol file.
type Symbol struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Filename string `json:"filename"`
	Path     string `json:"path"`

	raw string
}

// Result summarizes a run.
type Result struct {
	RunID     string          `json:"run_id"`
	Family    string          `json:"family"`
	OutputDir string          `json:"output_dir"`
	Symbols   []Symbol        `json:"symbols"`
	CSVPath   string          `json:"csv,omitempty"`
	XLSXPath  string          `json:"xlsx,omitempty"`
	Report    *emit.Report    `json:"report,omitempty"`
	PNG       *raster.Summary `json:"png,omitempty"`
	PNGDir    string          `json:"png_dir,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
	Duration  time.Duration   `json:"duration_ns"`
}

// PNGCount is the number of PNG files written.
func (r *Result) PNGCount() int {
	if r.PNG == nil {
		return 0
	}
	return r.PNG.Converted
}

func (r *Result) warn(err error) {
	r.Warnings = append(r.Warnings, err.Error())
}

// Run performs one extraction.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Family == nil {
		return nil, errors.NewInvalidConfigError("no family selected")
	}
	opts = opts.withDefaults()
	f := opts.Family

	res := &Result{RunID: uuid.NewString(), Family: f.Name, OutputDir: opts.OutputDir}
	ctx = logger.WithFamily(logger.WithRunID(ctx, res.RunID), f.Name)
	log := logger.LoggerFromContext(ctx, "extract")
	start := time.Now()

	records, err := catalog.Load(opts.JSONPath)
	if err != nil {
		return nil, err
	}
	log.Infow("catalog loaded",
		logger.FieldStandard, f.Standard,
		logger.FieldFile, opts.JSONPath,
		logger.FieldCount, len(records))

	names := resolveNames(ctx, opts, records, res)

	symbols, err := writeSymbols(ctx, opts, records, names)
	if err != nil {
		return nil, err
	}
	res.Symbols = symbols
	log.Infow("symbols written", logger.FieldDir, opts.OutputDir, logger.FieldCount, len(symbols))

	rows := indexRows(symbols)
	if opts.CSV {
		if err := emit.WriteCSV(opts.CSVPath, rows); err != nil {
			return nil, err
		}
		res.CSVPath = opts.CSVPath
	}
	if opts.XLSX != "" {
		if err := emit.WriteXLSX(opts.XLSX, f.Title, rows); err != nil {
			return nil, err
		}
		res.XLSXPath = opts.XLSX
	}

	if opts.PNG {
		res.PNG = rasterize(ctx, opts, symbols, res)
		res.PNGDir = opts.PNGDir
	}

	if opts.Analyze {
		in := make([]emit.Symbol, len(symbols))
		for i, s := range symbols {
			in[i] = emit.Symbol{Index: s.Index, Name: s.Name, SVG: s.raw}
		}
		report := emit.Analyze(f, in)
		res.Report = &report
	}

	res.Duration = time.Since(start)
	log.Infow("extraction complete",
		logger.FieldCount, len(symbols),
		logger.FieldDurationMS, res.Duration.Milliseconds())
	return res, nil
}

// resolveNames returns nil when names are disabled.
func resolveNames(ctx context.Context, opts Options, records []catalog.Record, res *Result) naming.Table {
	if !opts.Names {
		return nil
	}
	log := logger.LoggerFromContext(ctx, "naming")
	f := opts.Family

	scraped, err := naming.ScrapeTitles(opts.SVGPath, f.Titles)
	if err != nil {
		log.Warnw("title scrape failed, using predefined names",
			logger.FieldFile, opts.SVGPath,
			logger.FieldError, err)
		res.warn(err)
	}

	indices := make([]int, len(records))
	for i, r := range records {
		indices[i] = r.Index
	}
	names := naming.Merge(indices, naming.Table(f.Names), scraped, f.Placeholder)
	log.Debugw("names resolved",
		logger.FieldCount, len(names),
		"scraped", len(scraped),
		"predefined", len(f.Names))
	return names
}

func writeSymbols(ctx context.Context, opts Options, records []catalog.Record, names naming.Table) ([]Symbol, error) {
	f := opts.Family
	policy := f.Policy.WithVendorPrefixes(opts.VendorPrefixes)
	log := logger.LoggerFromContext(ctx, "extract")

	if err := os.MkdirAll(opts.OutputDir, am.DefaultDirPermissions); err != nil {
		return nil, errors.Wrapf(err, "failed to create output directory %s", opts.OutputDir)
	}

	out := make([]Symbol, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			name := names[rec.Index]
			filename := f.Filename(rec.Index, name)
			path, err := emit.WriteSVG(opts.OutputDir, filename, symbol.Normalize(rec.RawSVG, policy))
			if err != nil {
				return err
			}

			s := Symbol{Index: rec.Index, Name: name, Filename: filename, Path: path, raw: rec.RawSVG}
			if names == nil {
				s.Name = f.Placeholder(rec.Index)
				s.Category = symbol.UnnamedCategory
			} else {
				s.Category = f.Category(name)
			}
			out[i] = s

			log.Debugw("symbol written",
				logger.FieldIndex, rec.Index,
				logger.FieldName, s.Name,
				logger.FieldFile, filename)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func indexRows(symbols []Symbol) []emit.Row {
	rows := make([]emit.Row, len(symbols))
	for i, s := range symbols {
		rows[i] = emit.Row{Index: s.Index, Filename: s.Filename, Description: s.Name, Category: s.Category}
	}
	return rows
}

func rasterize(ctx context.Context, opts Options, symbols []Symbol, res *Result) *raster.Summary {
	log := logger.LoggerFromContext(ctx, "raster")

	convs := opts.Converters
	if convs == nil {
		var err error
		if convs, err = raster.Build(am.DefaultConverters, nil); err != nil {
			log.Warnw("png conversion skipped", logger.FieldError, err)
			res.warn(err)
			return &raster.Summary{}
		}
	}
	conv, err := raster.Select(convs)
	if err != nil {
		log.Warnw("png conversion skipped", logger.FieldError, err)
		res.warn(err)
		return &raster.Summary{}
	}

	if err := os.MkdirAll(opts.PNGDir, am.DefaultDirPermissions); err != nil {
		log.Warnw("png conversion skipped", logger.FieldDir, opts.PNGDir, logger.FieldError, err)
		res.warn(err)
		return &raster.Summary{Converter: conv.Name()}
	}

	jobs := make([]raster.Job, len(symbols))
	for i, s := range symbols {
		jobs[i] = raster.Job{
			In:  s.Path,
			Out: filepath.Join(opts.PNGDir, strings.TrimSuffix(s.Filename, ".svg")+".png"),
		}
	}
	log.Infow("converting to png",
		logger.FieldConverter, conv.Name(),
		logger.FieldSize, opts.PNGSize,
		logger.FieldCount, len(jobs))

	summary := raster.ConvertAll(ctx, conv, jobs, opts.PNGSize, opts.Timeout)
	for _, fail := range summary.Failures {
		res.warn(fail.Err)
	}
	return &summary
}
