// Package commands implements the idesync CLI subcommands.
package commands

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/velesbuild/idesync/config"
	"github.com/velesbuild/idesync/errors"
	"github.com/velesbuild/idesync/gen"
	"github.com/velesbuild/idesync/logger"
	"github.com/velesbuild/idesync/manifest"
)

// newSynchronizer builds the generation engine for the project named by the
// --root flag or configuration. The returned provider backs the engine and
// stays available for manifest reloads.
func newSynchronizer(cmd *cobra.Command, cfg *config.Config) (*gen.Synchronizer, *manifest.Provider, error) {
	root := cfg.Generation.Root
	if flagRoot, _ := cmd.Flags().GetString("root"); flagRoot != "" {
		root = flagRoot
	}

	provider, err := manifest.NewProvider(root, logger.Named("manifest"))
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load project manifest")
	}

	s := gen.NewSynchronizer(provider.Root(), provider, logger.Named("gen"))
	if len(cfg.Generation.ExtraExtensions) > 0 {
		s.SetExtraExtensions(cfg.Generation.ExtraExtensions)
	}

	// The manifest's own namespace applies unless configuration overrides it.
	namespace := cfg.Generation.RootNamespace
	if namespace == "" {
		namespace = provider.RootNamespace()
	}
	s.SetRootNamespace(namespace)

	generateAll, _ := cmd.Flags().GetBool("all")
	s.SetGenerateEverything(generateAll || cfg.Generation.GenerateAll)

	return s, provider, nil
}

// sortedPaths returns the captured descriptor paths in stable order.
func sortedPaths(captured map[string]string) []string {
	paths := make([]string, 0, len(captured))
	for path := range captured {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}
