package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazop-ai/pidsym/cmd/pidsym/commands"
	"github.com/hazop-ai/pidsym/errors"
	"github.com/hazop-ai/pidsym/logger"
)

var rootCmd = &cobra.Command{
	Use:   "pidsym",
	Short: "pidsym - P&ID symbol library data prep",
	Long: `pidsym - P&ID symbol library data prep.

Turns vendor symbol catalogs (a JSON object of raw SVG strings plus an
optional companion SVG) into normalized, individually named SVG files with
CSV and XLSX indexes, optional PNG renders and an analysis report.

Available commands:
  extract    - Extract one family (or --all) into individual SVG files
  normalize  - Normalize a single SVG with a family policy
  families   - List registered symbol families
  manifest   - Generate the allSymbols.ts manifest
  fix-names  - Clean generated symbol names in an editor source file
  strip-logs - Remove console.log statements from an editor source file
  am         - Manage pidsym configuration ("I am")
  version    - Show version information

Examples:
  pidsym extract iso-valves --png       # Extract ISO valves with PNGs
  pidsym extract --all                  # Every family under extract.root
  pidsym families --format json         # Family table as JSON
  pidsym am show                        # Show current configuration`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: commands.Setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv, -vvv)")
	flags.Bool("log-json", false, "Write logs as JSON to stderr")
	flags.String("config", "", "Config file (highest precedence after environment)")
	flags.String("format", "", "Output format: json for machine-readable output")

	rootCmd.AddCommand(commands.ExtractCmd)
	rootCmd.AddCommand(commands.NormalizeCmd)
	rootCmd.AddCommand(commands.FamiliesCmd)
	rootCmd.AddCommand(commands.ManifestCmd)
	rootCmd.AddCommand(commands.FixNamesCmd)
	rootCmd.AddCommand(commands.StripLogsCmd)
	rootCmd.AddCommand(commands.AmCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintln(os.Stderr, "Hint:", hint)
		}
		os.Exit(1)
	}
}
