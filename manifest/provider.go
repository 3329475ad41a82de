package manifest

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/velesbuild/idesync/host"
	"github.com/velesbuild/idesync/internal/util"
)

const (
	packagesDir     = "Packages"
	packageStoreDir = "Cache/PackageStore"

	sourceExtension = "cs"

	// originCacheSize bounds the package-origin lookup cache. Origin
	// resolution is pure prefix matching, but the watch loop asks for the
	// same paths over and over.
	originCacheSize = 1024
)

// Provider implements host.Provider on top of a veles.toml build manifest and
// the project tree on disk. Source files and assets are rescanned on every
// query, so a running pass always sees the current tree; the manifest itself
// is re-read only through Reload.
type Provider struct {
	root string
	log  *zap.SugaredLogger

	mu       sync.RWMutex
	manifest *Manifest

	origins *lru.Cache[string, host.Origin]
}

var _ host.Provider = (*Provider)(nil)

// NewProvider loads the build manifest at root and returns a provider over
// it. A relative root is resolved against the working directory.
func NewProvider(root string, log *zap.SugaredLogger) (*Provider, error) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	m, err := Load(root)
	if err != nil {
		return nil, err
	}
	origins, err := lru.New[string, host.Origin](originCacheSize)
	if err != nil {
		return nil, err
	}
	return &Provider{
		root:     root,
		log:      log,
		manifest: m,
		origins:  origins,
	}, nil
}

// Root returns the absolute project root the provider serves.
func (p *Provider) Root() string {
	return p.root
}

// RootNamespace returns the manifest's project-wide namespace.
func (p *Provider) RootNamespace() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.manifest.Project.RootNamespace
}

// Reload re-reads the manifest from disk and drops cached origin lookups.
// The watch loop calls it when the manifest itself changes.
func (p *Provider) Reload() error {
	m, err := Load(p.root)
	if err != nil {
		return err
	}
	p.mu.Lock()
	p.manifest = m
	p.mu.Unlock()
	p.origins.Purge()
	p.log.Debugw("Manifest reloaded", "root", p.root, "assemblies", len(m.Assemblies))
	return nil
}

// Assemblies returns the manifest's build units with source files that
// survive the include predicate, in manifest order. Units left without
// sources are omitted.
func (p *Provider) Assemblies(include func(file string) bool) []host.Assembly {
	p.mu.RLock()
	defer p.mu.RUnlock()

	assemblies := make([]host.Assembly, 0, len(p.manifest.Assemblies))
	for i := range p.manifest.Assemblies {
		section := &p.manifest.Assemblies[i]

		var sources []string
		for _, file := range p.sourceFiles(section) {
			if include == nil || include(file) {
				sources = append(sources, file)
			}
		}
		if len(sources) == 0 {
			continue
		}

		assemblies = append(assemblies, host.Assembly{
			Name:             section.Name,
			OutputPath:       section.Output,
			SourceFiles:      sources,
			References:       section.References,
			Defines:          section.Defines,
			AllowUnsafeCode:  section.Unsafe,
			ResponseFiles:    section.ResponseFiles,
			APICompatibility: section.compatibilityLevel(),
		})
	}
	return assemblies
}

// AssetPaths walks the project tree and returns every file below a top-level
// directory, relative to the root with forward slashes. Build output, caches
// and hidden directories are skipped; root-level loose files (the manifest,
// generated descriptors) are not assets.
func (p *Provider) AssetPaths() []string {
	var assets []string
	p.walk(p.root, func(rel string) {
		if !strings.Contains(rel, "/") {
			return
		}
		assets = append(assets, rel)
	})
	return assets
}

// AssemblyNameForPath resolves which assembly owns a source path: an exact
// match on an explicitly listed file wins, otherwise the assembly with the
// longest matching root directory. Returns "" when nothing claims the path.
// The path does not need to exist.
func (p *Provider) AssemblyNameForPath(path string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	norm := util.NormalizePath(path)
	best := ""
	bestLen := -1
	for i := range p.manifest.Assemblies {
		section := &p.manifest.Assemblies[i]
		for _, file := range section.Files {
			if util.NormalizePath(file) == norm {
				return section.Name
			}
		}
		for _, dir := range section.Roots {
			prefix := strings.TrimSuffix(util.NormalizePath(dir), "/") + "/"
			if strings.HasPrefix(norm, prefix) && len(prefix) > bestLen {
				best = section.Name
				bestLen = len(prefix)
			}
		}
	}
	return best
}

// PackageOrigin classifies the package a path belongs to, from the
// manifest's [packages] table first, then the Packages/ and
// Cache/PackageStore/ directory conventions. Lookups are cached.
func (p *Provider) PackageOrigin(path string) host.Origin {
	norm := util.NormalizePath(path)
	if origin, ok := p.origins.Get(norm); ok {
		return origin
	}
	origin := p.resolveOrigin(norm)
	p.origins.Add(norm, origin)
	return origin
}

// ActiveDefines returns the manifest's build-target defines.
func (p *Provider) ActiveDefines() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.manifest.Project.ActiveDefines
}

// SystemReferenceDirectories returns the framework reference directories for
// a compatibility profile.
func (p *Provider) SystemReferenceDirectories(level host.APICompatibility) []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if level == host.APICompatibilityLegacy {
		return p.manifest.Framework.Legacy
	}
	return p.manifest.Framework.Latest
}

func (p *Provider) resolveOrigin(norm string) host.Origin {
	p.mu.RLock()
	defer p.mu.RUnlock()

	origin := host.OriginNone
	bestLen := -1
	for prefix, name := range p.manifest.Packages {
		o, ok := parseOrigin(name)
		if !ok {
			continue
		}
		trimmed := strings.TrimSuffix(util.NormalizePath(prefix), "/")
		if norm != trimmed && !strings.HasPrefix(norm, trimmed+"/") {
			continue
		}
		if len(trimmed) > bestLen {
			origin = o
			bestLen = len(trimmed)
		}
	}
	if bestLen >= 0 {
		return origin
	}

	if strings.HasPrefix(norm, packagesDir+"/") {
		return host.OriginEmbedded
	}
	if strings.HasPrefix(norm, packageStoreDir+"/") {
		return host.OriginRegistry
	}
	return host.OriginNone
}

// sourceFiles collects an assembly's source list: explicitly declared files
// first, then compilable files found under its roots, deduplicated in
// first-seen order.
func (p *Provider) sourceFiles(section *AssemblySection) []string {
	var files []string
	seen := make(map[string]struct{})
	add := func(file string) {
		file = util.NormalizePath(file)
		if _, dup := seen[file]; dup {
			return
		}
		seen[file] = struct{}{}
		files = append(files, file)
	}

	for _, file := range section.Files {
		add(file)
	}
	for _, dir := range section.Roots {
		p.walk(filepath.Join(p.root, filepath.FromSlash(dir)), func(rel string) {
			if util.ExtensionOf(rel) == sourceExtension {
				add(rel)
			}
		})
	}
	return files
}

// walk visits regular files under dir in lexical order, reporting paths
// relative to the project root with forward slashes. Missing directories are
// fine; other walk errors are logged and skipped.
func (p *Provider) walk(dir string, visit func(rel string)) {
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			p.log.Warnw("Scan error", "path", path, "error", err)
			return nil
		}
		if d.IsDir() {
			if path != dir && skippedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(p.root, path)
		if relErr != nil {
			return nil
		}
		visit(util.NormalizePath(rel))
		return nil
	})
	if err != nil {
		p.log.Warnw("Scan aborted", "dir", dir, "error", err)
	}
}

// skippedDir reports whether a directory's content never participates in
// scanning: build output, caches and hidden directories.
func skippedDir(name string) bool {
	return name == "Cache" || name == "Temp" || strings.HasPrefix(name, ".")
}
