// Package manifest implements a file-based host provider. It loads the
// assembly graph from a veles.toml build manifest at the project root, scans
// the tree for source files and assets, and parses compiler response files.
// It exists for standalone and CI use, where no live editor supplies the
// graph.
package manifest

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/velesbuild/idesync/errors"
	"github.com/velesbuild/idesync/host"
)

// FileName is the build manifest's name at the project root.
const FileName = "veles.toml"

// Manifest is the decoded veles.toml build manifest.
type Manifest struct {
	// Project carries project-wide settings.
	Project ProjectSection `toml:"project"`

	// Framework maps compatibility profiles to system reference directories.
	Framework FrameworkSection `toml:"framework"`

	// Packages maps root-relative path prefixes to a package origin
	// ("embedded", "local", "registry", "git", "tarball", "builtin"). The
	// Packages/ and Cache/PackageStore/ directory conventions apply on top.
	Packages map[string]string `toml:"packages"`

	// Assemblies declares the build units, in build order.
	Assemblies []AssemblySection `toml:"assembly"`
}

// ProjectSection is the [project] table.
type ProjectSection struct {
	// Name of the project; informational, the solution file is named after
	// the root directory.
	Name string `toml:"name"`

	// ActiveDefines are preprocessor symbols active for the current build
	// target, in declared order.
	ActiveDefines []string `toml:"active_defines"`

	// RootNamespace is emitted into every project descriptor.
	RootNamespace string `toml:"root_namespace"`
}

// FrameworkSection is the [framework] table.
type FrameworkSection struct {
	// Latest lists reference directories for the current framework profile.
	Latest []string `toml:"latest"`

	// Legacy lists reference directories for the frozen legacy profile.
	Legacy []string `toml:"legacy"`
}

// AssemblySection is one [[assembly]] entry.
type AssemblySection struct {
	// Name is the assembly name; required, unique.
	Name string `toml:"name"`

	// Output is the compiled binary path relative to the project root.
	// Defaults to Cache/Assemblies/<name>.dll.
	Output string `toml:"output"`

	// Roots are directories whose source files belong to this assembly.
	Roots []string `toml:"roots"`

	// Files lists additional files in declared order, ahead of scanned root
	// content. Binary entries here become references in the descriptor.
	Files []string `toml:"files"`

	// References are binary reference paths.
	References []string `toml:"references"`

	// Defines are extra preprocessor symbols for this assembly.
	Defines []string `toml:"defines"`

	// Unsafe mirrors the compiler's unsafe-code switch.
	Unsafe bool `toml:"unsafe"`

	// ResponseFiles are compiler response files to merge, relative to the
	// project root.
	ResponseFiles []string `toml:"response_files"`

	// APICompatibility is "latest" (default) or "legacy".
	APICompatibility string `toml:"api_compatibility"`
}

// Load reads and validates the build manifest at the given project root.
// Returns errors.ErrNotAProject when root is not a directory, and
// errors.ErrManifestNotFound when the directory holds no manifest.
func Load(root string) (*Manifest, error) {
	if info, err := os.Stat(root); os.IsNotExist(err) || (err == nil && !info.IsDir()) {
		return nil, errors.Wrapf(errors.ErrNotAProject, "%s", root)
	}
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrapf(errors.ErrManifestNotFound, "%s", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	if err := m.validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid manifest %s", path)
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	seen := make(map[string]struct{}, len(m.Assemblies))
	for i := range m.Assemblies {
		a := &m.Assemblies[i]
		if a.Name == "" {
			return errors.Newf("assembly %d has no name", i)
		}
		if _, dup := seen[a.Name]; dup {
			return errors.Newf("duplicate assembly name: %s", a.Name)
		}
		seen[a.Name] = struct{}{}

		if a.Output == "" {
			a.Output = "Cache/Assemblies/" + a.Name + ".dll"
		}
		switch a.APICompatibility {
		case "", "latest", "legacy":
		default:
			return errors.Newf("assembly %s: unknown api_compatibility %q", a.Name, a.APICompatibility)
		}
	}

	for prefix, origin := range m.Packages {
		if _, ok := parseOrigin(origin); !ok {
			return errors.Newf("package %s: unknown origin %q", prefix, origin)
		}
	}
	return nil
}

// compatibilityLevel maps the manifest's profile string to the host enum.
func (a *AssemblySection) compatibilityLevel() host.APICompatibility {
	if a.APICompatibility == "legacy" {
		return host.APICompatibilityLegacy
	}
	return host.APICompatibilityLatest
}

// parseOrigin maps a manifest origin string to the host enum.
func parseOrigin(s string) (host.Origin, bool) {
	switch s {
	case "embedded":
		return host.OriginEmbedded, true
	case "local":
		return host.OriginLocal, true
	case "registry":
		return host.OriginRegistry, true
	case "git":
		return host.OriginGit, true
	case "tarball":
		return host.OriginTarball, true
	case "builtin":
		return host.OriginBuiltIn, true
	default:
		return host.OriginNone, false
	}
}
