package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hazop-ai/pidsym/am"
	"github.com/hazop-ai/pidsym/errors"
	"github.com/hazop-ai/pidsym/symbol"
)

// NormalizeCmd normalizes a single SVG with a family policy
var NormalizeCmd = &cobra.Command{
	Use:   "normalize <file|->",
	Short: "Normalize a single SVG with a family policy",
	Long: `Apply a family's normalization policy to one SVG file and print the
result. Use "-" to read from stdin.

Examples:
  pidsym normalize raw.svg --family iso-valves
  cat raw.svg | pidsym normalize - --family pip-pipes -o clean.svg`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

var (
	normalizeFamily string
	normalizeOutput string
)

func init() {
	NormalizeCmd.Flags().StringVarP(&normalizeFamily, "family", "f", "", "Family whose policy to apply (required)")
	NormalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "Write to this file instead of stdout")
	_ = NormalizeCmd.MarkFlagRequired("family")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}
	f, err := reg.Get(normalizeFamily)
	if err != nil {
		return err
	}

	raw, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	out := symbol.Normalize(string(raw), f.Policy.WithVendorPrefixes(cfg.Extract.VendorPrefixes))

	if normalizeOutput == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), out)
		return err
	}
	if err := os.WriteFile(normalizeOutput, []byte(out), am.DefaultFilePermissions); err != nil {
		return errors.Wrapf(err, "failed to write %s", normalizeOutput)
	}
	return nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		return data, errors.Wrap(err, "failed to read stdin")
	}
	data, err := os.ReadFile(path)
	return data, errors.Wrapf(err, "failed to read %s", path)
}
