package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hazop-ai/pidsym/am"
	"github.com/hazop-ai/pidsym/errors"
)

// AmCmd represents the am (configuration) command
var AmCmd = &cobra.Command{
	Use:   "am",
	Short: "Manage pidsym configuration",
	Long: `am - Manage pidsym configuration ("I am")

Display and manage pidsym configuration settings.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (PIDSYM_* prefix)
3. Explicit config (--config)
4. Project config (./pidsym.toml or ./am.toml, searching up)
5. User config (~/.pidsym/am.toml)
6. System config (/etc/pidsym/config.toml)
7. Default values

Examples:
  pidsym am show                    # Show current configuration
  pidsym am show --format json      # Show configuration in JSON format
  pidsym am get raster.size         # Get specific config value
  pidsym am init                    # Write defaults to ./pidsym.toml
  pidsym am validate                # Validate current configuration`,
}

var amShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current pidsym configuration from all sources (--format toml, json or yaml)",
	RunE:  runAmShow,
}

var amGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., extract.root, raster.size)",
	Args:  cobra.ExactArgs(1),
	RunE:  runAmGet,
}

var amValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	RunE:  runAmValidate,
}

var amWhereCmd = &cobra.Command{
	Use:   "where",
	Short: "Show where configuration is loaded from",
	Long: `Show the configuration cascade and which files were checked.

Lists all configuration sources in order of precedence, showing
which files exist and which settings each one provides.`,
	RunE: runAmWhere,
}

var amInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the default configuration",
	Long:  "Write the built-in defaults as TOML to path (default: ./pidsym.toml)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAmInit,
}

var amInitForce bool

func init() {
	amInitCmd.Flags().BoolVar(&amInitForce, "force", false, "Replace an existing file (kept as .back1)")

	AmCmd.AddCommand(amShowCmd)
	AmCmd.AddCommand(amGetCmd)
	AmCmd.AddCommand(amValidateCmd)
	AmCmd.AddCommand(amWhereCmd)
	AmCmd.AddCommand(amInitCmd)
}

func runAmShow(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	format, _ := cmd.Flags().GetString("format")
	if format == "" {
		format = "toml"
	}

	switch format {
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Println(string(data))

	case "yaml":
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to YAML")
		}
		fmt.Printf("# pidsym configuration\n%s", string(data))

	case "toml":
		data, err := toml.Marshal(cfg)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Printf("# pidsym configuration\n%s", string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json, yaml)", format)
	}

	return nil
}

func runAmGet(cmd *cobra.Command, args []string) error {
	value, ok := am.Get(args[0])
	if !ok {
		return errors.Newf("configuration key %q not found", args[0])
	}
	fmt.Println(value)
	return nil
}

func runAmValidate(cmd *cobra.Command, args []string) error {
	cfg, err := am.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "configuration validation failed")
	}

	fmt.Println("✓ Configuration is valid")
	return nil
}

func runAmWhere(cmd *cobra.Command, args []string) error {
	fmt.Println("Configuration cascade (later overrides earlier):")
	fmt.Println("  [DEFAULT]  Built-in defaults")
	for _, f := range am.ConfigFiles() {
		mark := "✗"
		if _, err := os.Stat(f.Path); err == nil {
			mark = "✓"
		}
		fmt.Printf("  [%s] %s %s\n", f.Source, mark, f.Path)
	}
	fmt.Printf("  [ENV]      %s_* environment variables\n", am.EnvPrefix)
	fmt.Println()

	intro, err := am.GetConfigIntrospection()
	if err != nil {
		return errors.Wrap(err, "failed to get config introspection")
	}

	// Group settings by source file; defaults and env vars group by source
	type fileGroup struct {
		source   am.ConfigSource
		path     string
		settings []am.SettingInfo
	}
	groups := make(map[string]*fileGroup)
	for _, setting := range intro.Settings {
		key, path := setting.SourcePath, setting.SourcePath
		if key == "" || setting.Source == am.SourceEnvironment {
			key, path = string(setting.Source), ""
		}
		g, ok := groups[key]
		if !ok {
			g = &fileGroup{source: setting.Source, path: path}
			groups[key] = g
		}
		g.settings = append(g.settings, setting)
	}

	fmt.Println("Active configuration:")
	for _, source := range am.SourceOrder {
		var level []*fileGroup
		for _, g := range groups {
			if g.source == source {
				level = append(level, g)
			}
		}
		sort.Slice(level, func(i, j int) bool { return level[i].path < level[j].path })

		for _, g := range level {
			switch {
			case g.path != "":
				fmt.Printf("\n%s: %d settings from %s\n", source, len(g.settings), g.path)
			case source == am.SourceEnvironment:
				fmt.Printf("\n%s: %d settings from environment variables\n", source, len(g.settings))
			default:
				fmt.Printf("\n%s: %d settings\n", source, len(g.settings))
			}

			sort.Slice(g.settings, func(i, j int) bool { return g.settings[i].Key < g.settings[j].Key })
			for _, s := range g.settings {
				fmt.Printf("  %s = %v\n", s.Key, s.Value)
			}
		}
	}
	return nil
}

func runAmInit(cmd *cobra.Command, args []string) error {
	path := "pidsym.toml"
	if len(args) == 1 {
		path = args[0]
	}
	if err := am.WriteConfig(path, am.Defaults(), amInitForce); err != nil {
		return err
	}
	fmt.Printf("✓ Wrote default configuration to %s\n", path)
	return nil
}
