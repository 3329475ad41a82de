package gen

import (
	"strings"

	"github.com/velesbuild/idesync/internal/util"
)

// reimportResyncExtensions are the asset types whose reimport always warrants
// a resync: compiled binaries change the reference graph, build-unit
// manifests change assembly membership. The set is fixed.
var reimportResyncExtensions = map[string]struct{}{
	binaryExtension:   {},
	manifestExtension: {},
}

// shouldResyncOnReimport reports whether a reimported asset forces a resync
// regardless of the relevance filter.
func shouldResyncOnReimport(asset string) bool {
	_, ok := reimportResyncExtensions[util.ExtensionOf(asset)]
	return ok
}

// hasRelevantChanges implements the resync gate: any affected file that is
// part of the output, or any reimported file in the fixed resync set.
func (s *Synchronizer) hasRelevantChanges(affectedFiles, reimportedFiles []string) bool {
	for _, file := range affectedFiles {
		if s.filter.IncludesFile(file) {
			return true
		}
	}
	for _, asset := range reimportedFiles {
		if shouldResyncOnReimport(asset) {
			return true
		}
	}
	return false
}

// changedAssemblyNames maps each changed file to its owning assembly via the
// host lookup and collects the output stems. Hosts may answer with either a
// bare assembly name or an output file name; the binary suffix is stripped so
// both forms intersect with Assembly.OutputStem.
func changedAssemblyNames(affectedFiles, reimportedFiles []string, nameForPath func(string) string) map[string]struct{} {
	names := make(map[string]struct{})
	collect := func(files []string) {
		for _, file := range files {
			name := nameForPath(file)
			if strings.TrimSpace(name) == "" {
				continue
			}
			// "Game.Core.dll.mdb" and "Game.Core.dll" both reduce to
			// "Game.Core": everything from the first binary suffix on goes.
			if i := strings.Index(name, "."+binaryExtension); i >= 0 {
				name = name[:i]
			}
			names[name] = struct{}{}
		}
	}
	collect(affectedFiles)
	collect(reimportedFiles)
	return names
}
