package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/velesbuild/idesync/cmd/idesync/commands"
	"github.com/velesbuild/idesync/config"
	"github.com/velesbuild/idesync/logger"
)

var rootCmd = &cobra.Command{
	Use:   "idesync",
	Short: "idesync - IDE project generation for Veles projects",
	Long: `idesync - Solution and project descriptor generation for Veles projects.

idesync reads the veles.toml build manifest and generates the .sln and
.csproj descriptors IDEs open, keeping them byte-stable across runs so
editors never reload an unchanged solution.

Available commands:
  sync    - Generate solution and project descriptors
  watch   - Watch the project tree and regenerate on change
  status  - Report whether descriptors match the project
  config  - Manage idesync configuration
  version - Show version information

Examples:
  idesync sync                    # Generate descriptors for the current project
  idesync sync --dry-run          # Show what would change without writing
  idesync watch                   # Keep descriptors current while editing
  idesync status                  # Check descriptors without writing
  idesync config show             # Show current configuration`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize global logger before any command runs. Commands that
		// emit JSON results get JSON log lines so stdout stays parseable.
		verbosity, _ := cmd.Flags().GetCount("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json")
		if !jsonLogs {
			jsonLogs = config.GetBool("log.json")
		}
		if err := logger.Initialize(jsonLogs, verbosity); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
}

func init() {
	// Add global flags
	rootCmd.PersistentFlags().CountP("verbose", "v", "Increase output verbosity (repeat for more detail: -v, -vv)")

	// Add commands
	rootCmd.AddCommand(commands.SyncCmd)
	rootCmd.AddCommand(commands.WatchCmd)
	rootCmd.AddCommand(commands.StatusCmd)
	rootCmd.AddCommand(commands.ConfigCmd)
	rootCmd.AddCommand(commands.VersionCmd)
}

func main() {
	err := rootCmd.Execute()
	logger.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
