package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hazop-ai/pidsym/display"
	"github.com/hazop-ai/pidsym/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show pidsym version information",
	Long:  `Display version, build time, commit hash, and platform information for the pidsym binary.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()

		if display.ShouldOutputJSON(cmd) {
			return display.OutputJSON(info)
		}
		fmt.Fprintln(cmd.OutOrStdout(), info.String())
		return nil
	},
}
