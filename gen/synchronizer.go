package gen

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/velesbuild/idesync/hook"
	"github.com/velesbuild/idesync/host"
	"github.com/velesbuild/idesync/internal/util"
)

// Synchronizer drives descriptor generation for one project root. It keeps no
// state between passes beyond the descriptors themselves; every pass
// re-derives the relevant set, the asset parts and the response-file data
// from the host provider.
type Synchronizer struct {
	root        string // absolute project root, native separators
	projectName string // base name of root, names the solution file

	provider      host.Provider
	classifier    *Classifier
	filter        *Filter
	settings      *Settings
	hooks         *hook.Registry
	writer        *Writer
	rootNamespace string
	log           *zap.SugaredLogger
}

// NewSynchronizer creates a synchronizer rooted at the given project
// directory. A relative root is resolved against the working directory.
func NewSynchronizer(root string, provider host.Provider, log *zap.SugaredLogger) *Synchronizer {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	root = filepath.Clean(root)

	classifier := NewClassifier(nil)
	settings := DefaultSettings()
	return &Synchronizer{
		root:        root,
		projectName: path.Base(util.NormalizePath(root)),
		provider:    provider,
		classifier:  classifier,
		filter:      NewFilter(classifier, provider.PackageOrigin),
		settings:    settings,
		hooks:       hook.Default(),
		writer:      NewWriter(settings, log),
		log:         log,
	}
}

// SetSettings swaps the output settings for subsequent passes.
func (s *Synchronizer) SetSettings(settings *Settings) {
	s.settings = settings
	s.writer = NewWriter(settings, s.log)
}

// SetHooks replaces the hook registry consulted during generation.
func (s *Synchronizer) SetHooks(hooks *hook.Registry) {
	s.hooks = hooks
}

// SetRootNamespace sets the namespace emitted into every project descriptor.
func (s *Synchronizer) SetRootNamespace(namespace string) {
	s.rootNamespace = namespace
}

// SetExtraExtensions replaces the caller-supplied recognized extensions on
// top of the built-in table.
func (s *Synchronizer) SetExtraExtensions(extensions []string) {
	generateAll := s.filter.GenerateAll()
	s.classifier = NewClassifier(extensions)
	s.filter = NewFilter(s.classifier, s.provider.PackageOrigin)
	s.filter.SetGenerateAll(generateAll)
}

// SetGenerateEverything toggles generation for files of non-internalized
// packages.
func (s *Synchronizer) SetGenerateEverything(generateAll bool) {
	s.filter.SetGenerateAll(generateAll)
}

// Relevant returns the assemblies the next pass would render projects for,
// in provider order.
func (s *Synchronizer) Relevant() []host.Assembly {
	return RelevantAssemblies(s.provider.Assemblies(s.filter.IncludesFile))
}

// SolutionFilePath is where the solution descriptor lives, named after the
// project root directory.
func (s *Synchronizer) SolutionFilePath() string {
	return filepath.Join(s.root, s.projectName+solutionExtension)
}

// ProjectFilePath is where an assembly's project descriptor lives, named
// after its output stem.
func (s *Synchronizer) ProjectFilePath(a host.Assembly) string {
	return filepath.Join(s.root, a.OutputStem()+projectExtension)
}

// HasSolutionBeenGenerated reports whether a solution descriptor exists from
// a previous pass. Its absence means generation never ran, which gates
// incremental syncs. Capture-mode passes count their captured solution.
func (s *Synchronizer) HasSolutionBeenGenerated() bool {
	if _, err := os.Stat(s.SolutionFilePath()); err == nil {
		return true
	}
	if !s.settings.WriteToDisk {
		_, ok := s.settings.captured(s.SolutionFilePath())
		return ok
	}
	return false
}

// Sync unconditionally regenerates the solution and every relevant project
// descriptor. A pre-generation hook may claim the pass, in which case
// rendering is skipped entirely; post-generation hooks run either way.
func (s *Synchronizer) Sync() error {
	if s.hooks.PreGeneration() {
		s.log.Infow("Generation claimed by pre-generation hook")
	} else if err := s.generateAll(); err != nil {
		return err
	}
	s.hooks.PostGeneration()
	return nil
}

// SyncIfNeeded regenerates descriptors for exactly the assemblies owning
// changed files. It reports whether a resync was warranted: never before the
// first full generation, and never when no change passes the relevance gate.
// The solution descriptor is not rewritten on this path.
func (s *Synchronizer) SyncIfNeeded(affectedFiles, reimportedFiles []string) (bool, error) {
	if !s.HasSolutionBeenGenerated() {
		return false, nil
	}
	if !s.hasRelevantChanges(affectedFiles, reimportedFiles) {
		return false, nil
	}

	relevant := RelevantAssemblies(s.provider.Assemblies(s.filter.IncludesFile))
	ctx := s.renderContext(relevant)
	changed := changedAssemblyNames(affectedFiles, reimportedFiles, s.provider.AssemblyNameForPath)

	regenerated := 0
	for _, a := range relevant {
		if _, ok := changed[a.OutputStem()]; !ok {
			continue
		}
		if err := s.syncProject(a, ctx); err != nil {
			return true, err
		}
		regenerated++
	}
	s.log.Debugw("Incremental sync complete",
		"affected", len(affectedFiles),
		"reimported", len(reimportedFiles),
		"regenerated", regenerated)
	return true, nil
}

// generateAll renders and persists the solution plus every relevant project.
func (s *Synchronizer) generateAll() error {
	relevant := RelevantAssemblies(s.provider.Assemblies(s.filter.IncludesFile))
	ctx := s.renderContext(relevant)

	if err := s.syncSolution(relevant); err != nil {
		return err
	}
	for _, a := range relevant {
		if err := s.syncProject(a, ctx); err != nil {
			return err
		}
	}
	s.log.Infow("Generation pass complete",
		"solution", s.SolutionFilePath(),
		"assemblies", len(relevant))
	return nil
}

func (s *Synchronizer) syncSolution(relevant []host.Assembly) error {
	target := s.SolutionFilePath()
	content := s.hooks.SolutionContent(target, renderSolution(relevant))
	_, err := s.writer.WriteIfChanged(target, content)
	return err
}

func (s *Synchronizer) syncProject(a host.Assembly, ctx renderContext) error {
	target := s.ProjectFilePath(a)
	content := s.hooks.ProjectContent(target, renderProject(a, s.responseFileData(a), ctx))
	_, err := s.writer.WriteIfChanged(target, content)
	return err
}

// renderContext assembles the per-pass inputs shared across project renders.
func (s *Synchronizer) renderContext(relevant []host.Assembly) renderContext {
	stems := make(map[string]string, len(relevant))
	for _, a := range relevant {
		stems[a.OutputStem()] = a.Name
	}
	ctx := renderContext{
		projectRoot:   strings.TrimSuffix(util.NormalizePath(s.root), "/"),
		rootNamespace: s.rootNamespace,
		activeDefines: s.provider.ActiveDefines(),
		relevantStems: stems,
		includes:      s.filter.IncludesFile,
		originOf:      s.provider.PackageOrigin,
	}
	ctx.assetParts = s.assetProjectParts(ctx)
	return ctx
}

// assetProjectParts builds descriptor fragments for recognized non-source
// assets, one block per owning assembly, in asset-enumeration order. The
// ownership lookup expects source-like paths, so the source extension is
// appended for the query.
func (s *Synchronizer) assetProjectParts(ctx renderContext) map[string]string {
	blocks := make(map[string]*strings.Builder)
	for _, asset := range s.provider.AssetPaths() {
		if !s.filter.IncludesFile(asset) {
			continue
		}
		ext := util.ExtensionOf(asset)
		if !s.classifier.IsRecognized(ext) || LanguageForExtension(ext) != LanguageNone {
			continue
		}
		owner := s.provider.AssemblyNameForPath(asset + ".cs")
		if owner == "" {
			continue
		}
		name := util.StemOf(owner)
		b, ok := blocks[name]
		if !ok {
			b = &strings.Builder{}
			blocks[name] = b
		}
		b.WriteString(assetEntry(asset, ctx))
	}

	parts := make(map[string]string, len(blocks))
	for name, b := range blocks {
		parts[name] = b.String()
	}
	return parts
}

// responseFileData parses an assembly's compiler response files. Parse errors
// are logged per entry and whatever was recovered is still merged in.
func (s *Synchronizer) responseFileData(a host.Assembly) []host.ResponseFile {
	if len(a.ResponseFiles) == 0 {
		return nil
	}
	systemDirs := s.provider.SystemReferenceDirectories(a.APICompatibility)
	parsed := make([]host.ResponseFile, 0, len(a.ResponseFiles))
	for _, rspPath := range a.ResponseFiles {
		data := s.provider.ParseResponseFile(rspPath, s.root, systemDirs)
		for _, parseErr := range data.Errors {
			s.log.Errorw("Response file parse error", "file", rspPath, "error", parseErr)
		}
		parsed = append(parsed, data)
	}
	return parsed
}
