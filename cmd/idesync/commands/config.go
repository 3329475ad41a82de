package commands

import (
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/velesbuild/idesync/config"
	"github.com/velesbuild/idesync/errors"
)

// ConfigCmd represents the config command
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage idesync configuration",
	Long: `Display and manage idesync configuration settings.

Configuration sources (in order of precedence):
1. Environment variables (IDESYNC_* prefix)
2. Project config (./idesync.toml, searched upward)
3. User config (~/.idesync/idesync.toml)
4. Default values

Examples:
  idesync config show                   # Show current configuration
  idesync config show --format json     # Show configuration in JSON format
  idesync config get watch.debounce_ms  # Get specific config value
  idesync config validate               # Validate current configuration
  idesync config write                  # Write effective settings to the project config`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  "Display the current idesync configuration merged from all sources",
	RunE:  runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a specific configuration value",
	Long:  "Get a specific configuration value using dot notation (e.g., generation.root, watch.debounce_ms)",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate current configuration",
	Long:  "Validate that the current idesync configuration is valid",
	RunE:  runConfigValidate,
}

var configWriteCmd = &cobra.Command{
	Use:   "write",
	Short: "Write effective configuration to the project file",
	Long: `Write the current effective configuration to the project config file.

Captures defaults, user config, project config, and environment overrides
into a single file. An existing file is kept as a rotating backup.`,
	RunE: runConfigWrite,
}

var configFormat string

func init() {
	// Add flags
	configShowCmd.Flags().StringVar(&configFormat, "format", "toml", "Output format: toml, json")

	// Add subcommands
	ConfigCmd.AddCommand(configShowCmd)
	ConfigCmd.AddCommand(configGetCmd)
	ConfigCmd.AddCommand(configValidateCmd)
	ConfigCmd.AddCommand(configWriteCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	// Settings come from the viper instance rather than the typed struct so
	// keys print exactly as they appear in idesync.toml.
	settings := config.GetViper().AllSettings()

	switch configFormat {
	case "json":
		data, err := json.MarshalIndent(settings, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to JSON")
		}
		fmt.Println(string(data))

	case "toml":
		data, err := toml.Marshal(settings)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config to TOML")
		}
		fmt.Printf("# idesync configuration\n%s", string(data))

	default:
		return errors.Newf("unsupported format: %s (supported: toml, json)", configFormat)
	}

	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	// Check if key exists in configuration
	v := config.GetViper()
	if !v.IsSet(key) {
		return errors.Newf("configuration key %q not found", key)
	}

	// Get the value as interface{} to preserve type
	value := config.Get(key)
	fmt.Println(value)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	// Load validates on the way in, so a clean load is a valid config.
	if _, err := config.Load(); err != nil {
		return err
	}

	pterm.Success.Println("Configuration is valid")
	return nil
}

func runConfigWrite(cmd *cobra.Command, args []string) error {
	if _, err := config.Load(); err != nil {
		return err
	}

	path := config.WritePath()
	if err := config.Write(config.GetViper().AllSettings(), path); err != nil {
		return err
	}

	pterm.Success.Printf("Wrote %s\n", path)
	return nil
}
