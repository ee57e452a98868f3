package commands

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hazop-ai/pidsym/display"
)

// FamiliesCmd lists the registered symbol families
var FamiliesCmd = &cobra.Command{
	Use:   "families",
	Short: "List registered symbol families",
	Long: `List the built-in families and any custom families loaded from
extract.family_dirs, with their prefix, policy and catalog file.`,
	Args: cobra.NoArgs,
	RunE: runFamilies,
}

func runFamilies(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(reg.List())
	}

	data := pterm.TableData{{"Family", "Standard", "Prefix", "Policy", "Catalog", "Aliases", "Source"}}
	for _, f := range reg.List() {
		std := f.Standard
		if std == "" {
			std = "-"
		}
		data = append(data, []string{
			f.Name, std, f.Prefix, f.PolicyName, f.CatalogFile,
			strings.Join(f.Aliases, ", "), f.Source,
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}
