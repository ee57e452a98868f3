package commands

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hazop-ai/pidsym/am"
	"github.com/hazop-ai/pidsym/display"
	"github.com/hazop-ai/pidsym/emit"
	"github.com/hazop-ai/pidsym/errors"
	"github.com/hazop-ai/pidsym/extract"
	"github.com/hazop-ai/pidsym/logger"
	"github.com/hazop-ai/pidsym/symbol"
	"github.com/hazop-ai/pidsym/watch"
)

// ExtractCmd extracts a symbol catalog into individual SVG files
var ExtractCmd = &cobra.Command{
	Use:   "extract <family>",
	Short: "Extract a symbol catalog into individual SVG files",
	Long: `Extract a family's JSON catalog into normalized, individually named
SVG files, with a CSV index, an optional XLSX workbook, optional PNG renders
and an analysis report.

Catalog paths default to <extract.root>/<standard>/<family folder>/, or the
working directory when extract.root is empty.

Examples:
  pidsym extract iso-valves                     # Extract into ./svg
  pidsym extract iso-valves --png --png-size 512
  pidsym extract valves --json lib.json --no-names
  pidsym extract iso-pipes --watch              # Re-run on catalog changes
  pidsym extract --all --no-analyze             # Every registered family`,
	Args: func(cmd *cobra.Command, args []string) error {
		if extractAll {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runExtract,
}

var (
	extractJSON      string
	extractSVG       string
	extractOutput    string
	extractCSVPath   string
	extractXLSX      string
	extractNoNames   bool
	extractNoCSV     bool
	extractNoAnalyze bool
	extractPNG       bool
	extractPNGSize   int
	extractPNGDir    string
	extractConverter []string
	extractWorkers   int
	extractWatch     bool
	extractAll       bool
)

func init() {
	f := ExtractCmd.Flags()
	f.StringVar(&extractJSON, "json", "", "Catalog JSON file (default: the family catalog)")
	f.StringVar(&extractSVG, "svg", "", "Companion SVG to scrape names from (default: the family companion)")
	f.StringVarP(&extractOutput, "output", "o", "", "Output directory for SVG files (default: extract.output_dir)")
	f.StringVar(&extractCSVPath, "csv", "", "CSV index path (default: the family reference CSV)")
	f.StringVar(&extractXLSX, "xlsx", "", "Also write an XLSX index to this path")
	f.BoolVar(&extractNoNames, "no-names", false, "Write index-only file names")
	f.BoolVar(&extractNoCSV, "no-csv", false, "Skip the CSV index")
	f.BoolVar(&extractNoAnalyze, "no-analyze", false, "Skip the analysis report")
	f.BoolVar(&extractPNG, "png", false, "Also render PNG files")
	f.IntVar(&extractPNGSize, "png-size", am.DefaultPNGSize, "PNG width and height in pixels")
	f.StringVar(&extractPNGDir, "png-dir", "", "Output directory for PNG files (default: raster.png_dir)")
	f.StringSliceVar(&extractConverter, "converter", nil, "PNG converters to probe, in order (oksvg, rsvg-convert, inkscape, magick)")
	f.IntVar(&extractWorkers, "workers", 0, "Parallel symbol writers (default: extract.workers, 0 = one per CPU)")
	f.BoolVar(&extractWatch, "watch", false, "Re-run when the catalog or companion SVG changes")
	f.BoolVar(&extractAll, "all", false, "Extract every registered family under extract.root")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg, err = applyExtractFlags(cmd, cfg)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	if extractAll {
		return runExtractAll(cmd, cfg, reg)
	}

	f, err := reg.Get(args[0])
	if err != nil {
		return err
	}
	opts, err := extractOptions(cfg, f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if extractWatch {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	if err := extractOnce(ctx, cmd, opts); err != nil {
		return err
	}
	if !extractWatch {
		return nil
	}

	w, err := watch.New(opts.Inputs(), time.Duration(cfg.Extract.DebounceMS)*time.Millisecond,
		func(ctx context.Context) error { return extractOnce(ctx, cmd, opts) })
	if err != nil {
		return err
	}
	pterm.Info.Printfln("Watching %s for changes (Ctrl+C to stop)", opts.Inputs()[0])
	return w.Run(ctx)
}

// applyExtractFlags returns a copy of cfg with the command-line overrides
// applied, validated again.
func applyExtractFlags(cmd *cobra.Command, cfg *am.Config) (*am.Config, error) {
	c := *cfg
	flags := cmd.Flags()

	if flags.Changed("output") {
		c.Extract.OutputDir = absPath(extractOutput)
	}
	if flags.Changed("workers") {
		c.Extract.Workers = extractWorkers
	}
	if extractNoNames {
		c.Extract.Names = false
	}
	if extractNoCSV {
		c.Extract.CSV = false
	}
	if extractNoAnalyze {
		c.Extract.Analyze = false
	}
	if extractPNG {
		c.Raster.Enabled = true
	}
	if flags.Changed("png-size") {
		c.Raster.Size = extractPNGSize
	}
	if flags.Changed("png-dir") {
		c.Raster.PNGDir = absPath(extractPNGDir)
	}
	if flags.Changed("converter") {
		c.Raster.Converters = extractConverter
	}

	if extractAll {
		if c.Extract.Root == "" {
			return nil, errors.WithHint(
				errors.NewInvalidConfigError("--all needs extract.root"),
				"set extract.root in pidsym.toml or PIDSYM_EXTRACT_ROOT to the PID-Symbols directory")
		}
		for _, name := range []string{"json", "svg", "csv", "xlsx", "watch"} {
			if flags.Changed(name) {
				return nil, errors.NewInvalidConfigError("--%s cannot be combined with --all", name)
			}
		}
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func extractOptions(cfg *am.Config, f *symbol.Family) (extract.Options, error) {
	opts, err := extract.FromConfig(cfg, f)
	if err != nil {
		return opts, err
	}
	opts.JSONPath = absPath(extractJSON)
	opts.SVGPath = absPath(extractSVG)
	opts.CSVPath = absPath(extractCSVPath)
	opts.XLSX = absPath(extractXLSX)
	return opts, nil
}

// absPath anchors a path given on the command line to the working directory,
// so it is not resolved against the family folder.
func absPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func extractOnce(ctx context.Context, cmd *cobra.Command, opts extract.Options) error {
	if display.ShouldOutputJSON(cmd) {
		res, err := extract.Run(ctx, opts)
		if err != nil {
			return err
		}
		return display.OutputJSON(res)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Extracting " + opts.Family.Name + "...")
	res, err := extract.Run(ctx, opts)
	if err != nil {
		if spinner != nil {
			spinner.Fail("Extraction failed")
		}
		return err
	}
	if spinner != nil {
		_ = spinner.Stop()
	}
	printResult(opts.Family, res)
	return nil
}

func runExtractAll(cmd *cobra.Command, cfg *am.Config, reg *symbol.Registry) error {
	asJSON := display.ShouldOutputJSON(cmd)
	var (
		results []*extract.Result
		failed  []string
	)

	for _, f := range reg.List() {
		opts, err := extractOptions(cfg, f)
		if err != nil {
			return err
		}
		res, err := extract.Run(cmd.Context(), opts)
		if err != nil {
			logger.Logger.Errorw("extraction failed", logger.FieldFamily, f.Name, logger.FieldError, err)
			if !asJSON {
				pterm.Error.Printfln("%s: %v", f.Name, err)
			}
			failed = append(failed, f.Name)
			continue
		}
		results = append(results, res)
		if !asJSON {
			printResult(f, res)
		}
	}

	if asJSON {
		if err := display.OutputJSON(results); err != nil {
			return err
		}
	} else {
		pterm.Info.Printfln("%d of %d families extracted", len(results), len(results)+len(failed))
	}
	if len(failed) > 0 {
		return errors.Newf("%d families failed: %v", len(failed), failed)
	}
	return nil
}

func printResult(f *symbol.Family, res *extract.Result) {
	title := f.Title
	if title == "" {
		title = f.Name
	}
	pterm.DefaultHeader.WithFullWidth().Println(title)

	for _, w := range res.Warnings {
		pterm.Warning.Println(w)
	}
	for _, s := range res.Symbols {
		pterm.Printfln("  %03d: %s (%s)", s.Index, s.Filename, s.Name)
	}
	pterm.Success.Printfln("Successfully extracted %d symbols to %s/", len(res.Symbols), res.OutputDir)

	if res.CSVPath != "" {
		pterm.Success.Printfln("Created %s", res.CSVPath)
	}
	if res.XLSXPath != "" {
		pterm.Success.Printfln("Created %s", res.XLSXPath)
	}
	if res.PNG != nil && res.PNG.Converter != "" {
		pterm.Success.Printfln("Converted %d PNG files to %s/ using %s", res.PNGCount(), res.PNGDir, res.PNG.Converter)
	}

	if res.Report != nil {
		emit.Render(os.Stdout, *res.Report)
	}

	pterm.Info.Printfln("Extraction complete in %s: %d SVG, %d PNG",
		res.Duration.Round(time.Millisecond), len(res.Symbols), res.PNGCount())
}
