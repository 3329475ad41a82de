package gen

import (
	"strings"

	"github.com/velesbuild/idesync/host"
	"github.com/velesbuild/idesync/internal/util"
)

// Binary and manifest extensions that must stay discoverable in the IDE even
// though they are not source. The change detector shares these markers.
const (
	binaryExtension   = "dll"
	manifestExtension = "unitdef"
)

// Filter decides which files participate in generation. It combines the
// extension table with the host's package-origin classification and the
// "generate everything" override.
type Filter struct {
	classifier  *Classifier
	originOf    func(path string) host.Origin
	generateAll bool
}

// NewFilter builds a relevance filter. originOf is the host's package-origin
// lookup; a nil originOf treats every path as package-free.
func NewFilter(classifier *Classifier, originOf func(path string) host.Origin) *Filter {
	return &Filter{classifier: classifier, originOf: originOf}
}

// SetGenerateAll toggles the override that pulls non-internalized package
// files into generation.
func (f *Filter) SetGenerateAll(generateAll bool) {
	f.generateAll = generateAll
}

// GenerateAll reports the current override state.
func (f *Filter) GenerateAll() bool {
	return f.generateAll
}

// IncludesFile reports whether a file belongs in generated output.
//
// Files from non-internalized packages are excluded unless the override is
// set. Compiled binaries and build-unit manifests are always included
// regardless of the extension table, so the IDE can resolve them. Everything
// else is included iff its extension is recognized.
func (f *Filter) IncludesFile(file string) bool {
	if !f.generateAll && f.isExternalPackagePath(file) {
		return false
	}

	ext := util.ExtensionOf(file)
	if ext == binaryExtension {
		return true
	}
	if strings.HasSuffix(strings.ToLower(file), "."+manifestExtension) {
		return true
	}

	return f.classifier.IsRecognized(ext)
}

// RelevantAssemblies narrows the host graph to assemblies whose primary
// source category is the one this engine renders descriptors for. Input
// order is preserved; solution text stability depends on it.
func RelevantAssemblies(assemblies []host.Assembly) []host.Assembly {
	relevant := make([]host.Assembly, 0, len(assemblies))
	for _, a := range assemblies {
		if SourceLanguage(a.SourceFiles) == LanguageCSharp {
			relevant = append(relevant, a)
		}
	}
	return relevant
}

// isExternalPackagePath reports whether file belongs to a package whose
// content lives outside the project (registry, git, tarball, builtin).
func (f *Filter) isExternalPackagePath(file string) bool {
	if f.originOf == nil {
		return false
	}
	origin := f.originOf(file)
	return origin != host.OriginNone && !origin.Internalized()
}
