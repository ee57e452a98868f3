package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/hazop-ai/pidsym/display"
	"github.com/hazop-ai/pidsym/sourcefix"
)

// FixNamesCmd cleans generated symbol names in an editor source file
var FixNamesCmd = &cobra.Command{
	Use:   "fix-names <file>",
	Short: "Clean generated symbol names in an editor source file",
	Long: `Rewrite quoted names on lines containing "name: 'Pid Iso Pipes Signal":
the "Pid Iso <Family> NNN " prefix is dropped and each word capitalized.

Files with uncommitted changes in a git worktree are refused unless --force.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSourcefix(cmd, args[0], sourcefix.FixNames, "names fixed")
	},
}

// StripLogsCmd removes console.log statements from an editor source file
var StripLogsCmd = &cobra.Command{
	Use:   "strip-logs <file>",
	Short: "Remove console.log statements from an editor source file",
	Long: `Remove console.log(...) statements and collapse the blank lines they
leave behind.

Files with uncommitted changes in a git worktree are refused unless --force.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSourcefix(cmd, args[0], sourcefix.StripLogs, "console.log statements removed")
	},
}

func init() {
	for _, c := range []*cobra.Command{FixNamesCmd, StripLogsCmd} {
		c.Flags().Bool("force", false, "Rewrite even if the file has uncommitted changes (default: sourcefix.force)")
		c.Flags().Bool("dry-run", false, "Report changes without writing")
	}
}

func runSourcefix(cmd *cobra.Command, path string, fn sourcefix.Transform, what string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	res, err := sourcefix.Apply(path, fn, sourcefix.Options{
		Force:  force || cfg.Sourcefix.Force,
		DryRun: dryRun,
	})
	if err != nil {
		return err
	}

	if display.ShouldOutputJSON(cmd) {
		return display.OutputJSON(res)
	}
	switch {
	case res.Changes == 0:
		pterm.Info.Printfln("%s: nothing to change", path)
	case dryRun:
		pterm.Info.Printfln("%s: %d %s (dry run, not written)", path, res.Changes, what)
	default:
		pterm.Success.Printfln("%s: %d %s", path, res.Changes, what)
	}
	return nil
}
