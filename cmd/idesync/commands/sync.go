package commands

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/velesbuild/idesync/config"
	"github.com/velesbuild/idesync/display"
	"github.com/velesbuild/idesync/errors"
	"github.com/velesbuild/idesync/gen"
)

// SyncCmd represents the sync command
var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Generate solution and project descriptors",
	Long: `Generate the solution and project descriptors for a Veles project.

Reads the veles.toml build manifest, renders one project descriptor per
relevant assembly plus the solution tying them together, and writes only
the files whose content actually changed. Output is byte-stable: running
sync twice in a row writes nothing the second time.

Examples:
  idesync sync                    # Generate descriptors for the current project
  idesync sync --root ~/game      # Generate for a specific project
  idesync sync --all              # Include projects for external packages
  idesync sync --dry-run          # Show what would change without writing
  idesync sync --dry-run --json   # Machine-readable change preview`,
	RunE: runSync,
}

func init() {
	SyncCmd.Flags().String("root", "", "Project root (default: generation.root from config)")
	SyncCmd.Flags().Bool("all", false, "Generate projects for external packages too")
	SyncCmd.Flags().Bool("dry-run", false, "Report descriptors that would change without writing")
	SyncCmd.Flags().Bool("json", false, "Output results as JSON")
}

// syncResult is the JSON shape of a sync run.
type syncResult struct {
	Solution string   `json:"solution"`
	Projects int      `json:"projects"`
	Stale    []string `json:"stale,omitempty"`
	DryRun   bool     `json:"dry_run"`
}

func runSync(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	useJSON := display.ShouldOutputJSON(cmd)

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	s, _, err := newSynchronizer(cmd, cfg)
	if err != nil {
		return err
	}

	if dryRun {
		// A capture pass renders everything in memory and records only the
		// content that differs from disk, so the captured set is exactly
		// what a real pass would write.
		settings := gen.CaptureSettings()
		s.SetSettings(settings)
		if err := s.Sync(); err != nil {
			return err
		}

		stale := sortedPaths(settings.Captured)
		if useJSON {
			return display.OutputJSON(syncResult{
				Solution: s.SolutionFilePath(),
				Projects: len(s.Relevant()),
				Stale:    stale,
				DryRun:   true,
			})
		}

		if len(stale) == 0 {
			pterm.Success.Println("Descriptors are up to date")
			return nil
		}
		pterm.Warning.Printf("%d descriptor(s) would change:\n", len(stale))
		for _, path := range stale {
			pterm.Printf("  %s\n", path)
		}
		pterm.Info.Println("Run 'idesync sync' without --dry-run to write them")
		return nil
	}

	if err := s.Sync(); err != nil {
		return err
	}

	projects := len(s.Relevant())
	if useJSON {
		return display.OutputJSON(syncResult{
			Solution: s.SolutionFilePath(),
			Projects: projects,
		})
	}
	pterm.Success.Printf("Generated %s (%d projects)\n", s.SolutionFilePath(), projects)
	return nil
}
