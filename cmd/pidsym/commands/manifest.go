package commands

import (
	"sort"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hazop-ai/pidsym/display"
	"github.com/hazop-ai/pidsym/manifest"
)

// ManifestCmd generates the allSymbols.ts manifest
var ManifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Generate the allSymbols.ts manifest",
	Long: `Scan <root>/{ISO,PIP}/PID-*-Symbols/svg/*.svg and write a TypeScript
module exporting every symbol with its id, display name, category, standard
and URL path.

Examples:
  pidsym manifest
  pidsym manifest --root assests/Symbols/PID-Symbols --out src/lib/symbols/allSymbols.ts`,
	Args: cobra.NoArgs,
	RunE: runManifest,
}

var (
	manifestRoot      string
	manifestOut       string
	manifestURLPrefix string
)

func init() {
	ManifestCmd.Flags().StringVar(&manifestRoot, "root", "", "PID-Symbols directory to scan (default: manifest.root)")
	ManifestCmd.Flags().StringVar(&manifestOut, "out", "", "TypeScript file to write (default: manifest.out)")
	ManifestCmd.Flags().StringVar(&manifestURLPrefix, "url-prefix", "", "URL prefix of symbol paths (default: manifest.url_prefix)")
}

func runManifest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	root := firstNonEmpty(manifestRoot, cfg.Manifest.Root)
	out := firstNonEmpty(manifestOut, cfg.Manifest.Out)
	prefix := firstNonEmpty(manifestURLPrefix, cfg.Manifest.URLPrefix)

	m, err := manifest.Scan(root, prefix)
	if err != nil {
		return err
	}
	if err := manifest.Write(out, m); err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(m)
	}

	for _, std := range manifest.Standards {
		pterm.Info.Printfln("Found %d %s symbols", m.Count(std), std)
	}
	breakdown := m.Breakdown()
	keys := make([]string, 0, len(breakdown))
	for k := range breakdown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		pterm.Printfln("  %s: %d", k, breakdown[k])
	}
	pterm.Success.Printfln("Wrote %d symbols to %s", len(m.Symbols), out)
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
