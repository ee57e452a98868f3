package display

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// FormatEnv selects machine output for every command when set to "json".
const FormatEnv = "PIDSYM_FORMAT"

// ShouldOutputJSON determines if a command should output JSON based on the
// --format flag and the PIDSYM_FORMAT environment variable.
func ShouldOutputJSON(cmd *cobra.Command) bool {
	if cmd == nil {
		return envJSON()
	}

	// An explicit --format on the command wins
	if f := cmd.Flags().Lookup("format"); f != nil && f.Changed {
		return strings.EqualFold(f.Value.String(), "json")
	}

	// Global --format
	if f := cmd.Root().PersistentFlags().Lookup("format"); f != nil && f.Changed {
		return strings.EqualFold(f.Value.String(), "json")
	}

	return envJSON()
}

func envJSON() bool {
	return strings.EqualFold(os.Getenv(FormatEnv), "json")
}

// OutputJSON marshals and prints JSON using display.MarshalJSON
func OutputJSON(v interface{}) error {
	data, err := MarshalJSON(v)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
