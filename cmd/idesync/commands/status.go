package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/velesbuild/idesync/config"
	"github.com/velesbuild/idesync/display"
	"github.com/velesbuild/idesync/errors"
	"github.com/velesbuild/idesync/gen"
)

// StatusCmd represents the status command
var StatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report whether descriptors match the project",
	Long: `Report whether the generated descriptors match the current project.

Runs a full generation pass in memory and compares the result against the
files on disk. Nothing is written. The command exits zero either way; use
--json and the "current" field to gate scripts on descriptor freshness.

Examples:
  idesync status                  # Human-readable freshness report
  idesync status --json           # Machine-readable report`,
	RunE: runStatus,
}

func init() {
	StatusCmd.Flags().String("root", "", "Project root (default: generation.root from config)")
	StatusCmd.Flags().Bool("all", false, "Compare against projects for external packages too")
	StatusCmd.Flags().Bool("json", false, "Output results as JSON")
}

// statusResult is the JSON shape of a status check.
type statusResult struct {
	Solution string   `json:"solution"`
	Current  bool     `json:"current"`
	Stale    []string `json:"stale,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	useJSON := display.ShouldOutputJSON(cmd)

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	s, _, err := newSynchronizer(cmd, cfg)
	if err != nil {
		if errors.IsManifestNotFound(err) && !useJSON {
			pterm.Warning.Printf("Not a Veles project: %v\n", err)
			return nil
		}
		return err
	}

	settings := gen.CaptureSettings()
	s.SetSettings(settings)
	if err := s.Sync(); err != nil {
		return err
	}

	stale := sortedPaths(settings.Captured)
	if useJSON {
		return display.OutputJSON(statusResult{
			Solution: s.SolutionFilePath(),
			Current:  len(stale) == 0,
			Stale:    stale,
		})
	}

	if len(stale) == 0 {
		pterm.Success.Println("Descriptors are up to date")
		return nil
	}
	pterm.Warning.Printf("%d descriptor(s) out of date:\n", len(stale))
	for _, path := range stale {
		pterm.Printf("  %s\n", path)
	}
	pterm.Info.Println("Run 'idesync sync' to regenerate")
	return nil
}
