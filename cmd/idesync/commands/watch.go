package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/velesbuild/idesync/config"
	"github.com/velesbuild/idesync/errors"
	"github.com/velesbuild/idesync/logger"
	"github.com/velesbuild/idesync/manifest"
	"github.com/velesbuild/idesync/watch"
)

// WatchCmd represents the watch command
var WatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project tree and regenerate on change",
	Long: `Watch the project tree and keep descriptors in sync as files change.

Runs a full generation pass, then watches the tree for source, asset, and
manifest changes. Edits are debounced into batches and each batch runs the
cheapest pass that covers it: an incremental pass for source edits, a full
pass when veles.toml itself changes. Build output and hidden directories
are ignored.

Tune watch.debounce_ms and watch.max_syncs_per_minute in idesync.toml.

Examples:
  idesync watch                   # Watch the current project
  idesync watch --root ~/game     # Watch a specific project`,
	RunE: runWatch,
}

func init() {
	WatchCmd.Flags().String("root", "", "Project root (default: generation.root from config)")
	WatchCmd.Flags().Bool("all", false, "Generate projects for external packages too")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}

	s, provider, err := newSynchronizer(cmd, cfg)
	if err != nil {
		return err
	}

	// Full pass up front so the editor opens a complete solution.
	if err := s.Sync(); err != nil {
		return err
	}
	pterm.Success.Printf("Generated %s (%d projects)\n", s.SolutionFilePath(), len(s.Relevant()))

	w, err := watch.NewWatcher(provider.Root(), s, watch.Options{
		Debounce:          time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		MaxSyncsPerMinute: cfg.Watch.MaxSyncsPerMinute,
		ManifestFile:      manifest.FileName,
		OnManifestChange:  provider.Reload,
	}, logger.Named("watch"))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		pterm.Println()
		pterm.Info.Println("Stopping watch")
		cancel()
	}()

	pterm.Info.Printf("Watching %s (Ctrl+C to stop)\n", provider.Root())
	return w.Run(ctx)
}
