// Package host defines the contract between the generation engine and the
// build environment that owns the assembly graph. The engine never inspects
// the environment directly; everything it needs arrives through a Provider.
package host

import (
	"path"
	"strings"
)

// Origin classifies where a package-owned path comes from.
type Origin int

const (
	// OriginNone means the path does not belong to any package.
	OriginNone Origin = iota
	// OriginEmbedded is a package whose files live inside the project root.
	OriginEmbedded
	// OriginLocal is a package referenced from a directory on local disk.
	OriginLocal
	// OriginRegistry is a package fetched from the package registry.
	OriginRegistry
	// OriginGit is a package fetched from a git URL.
	OriginGit
	// OriginTarball is a package unpacked from a tarball.
	OriginTarball
	// OriginBuiltIn is a package shipped with the editor itself.
	OriginBuiltIn
)

// Internalized reports whether the package's files are physically part of the
// project rather than fetched from an external source. Only internalized
// package files participate in project generation by default.
func (o Origin) Internalized() bool {
	return o == OriginEmbedded || o == OriginLocal
}

func (o Origin) String() string {
	switch o {
	case OriginEmbedded:
		return "embedded"
	case OriginLocal:
		return "local"
	case OriginRegistry:
		return "registry"
	case OriginGit:
		return "git"
	case OriginTarball:
		return "tarball"
	case OriginBuiltIn:
		return "builtin"
	default:
		return "none"
	}
}

// APICompatibility selects the framework surface an assembly compiles against.
type APICompatibility int

const (
	// APICompatibilityLatest targets the current framework profile.
	APICompatibilityLatest APICompatibility = iota
	// APICompatibilityLegacy targets the frozen legacy profile kept for old
	// projects.
	APICompatibilityLegacy
)

// Assembly describes one build unit of the host environment: a named group of
// source files compiled together with a shared reference list and compiler
// options. Identity is Name plus OutputPath. The engine treats an Assembly as
// immutable for the duration of one generation pass.
type Assembly struct {
	// Name is the assembly name as the host build pipeline knows it.
	Name string

	// OutputPath is where the host compiles the assembly to, relative to the
	// project root (e.g. "Cache/Assemblies/Game.Core.dll").
	OutputPath string

	// SourceFiles lists the assembly's source files in host-declared order.
	// The engine preserves this order in generated descriptors.
	SourceFiles []string

	// References lists binary reference paths, direct and transitive.
	References []string

	// Defines are the preprocessor symbols visible to this assembly.
	Defines []string

	// AllowUnsafeCode mirrors the host compiler's unsafe-code switch.
	AllowUnsafeCode bool

	// ResponseFiles are paths to compiler response files that contribute
	// extra references, defines and flags.
	ResponseFiles []string

	// APICompatibility is the framework profile the assembly targets.
	APICompatibility APICompatibility
}

// OutputStem returns the base name of the assembly's output path without the
// binary extension. Project descriptors are named after it, and incremental
// regeneration matches changed files against it. Both separator styles are
// accepted regardless of the platform the engine runs on.
func (a Assembly) OutputStem() string {
	p := strings.ReplaceAll(a.OutputPath, `\`, "/")
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}

// ResponseFile is the parsed content of one compiler response file. Parse
// errors are carried alongside the partial result; callers log them and merge
// what was recovered.
type ResponseFile struct {
	// References are resolved full paths to referenced binaries.
	References []string

	// Defines are preprocessor symbols added by the response file.
	Defines []string

	// Unsafe is true when the response file enables unsafe code.
	Unsafe bool

	// Errors describes entries that could not be parsed or resolved.
	Errors []string
}
