package host

// Provider supplies the engine with the host environment's view of the
// project: its assemblies, loose assets, package layout and compiler
// configuration. Implementations must be safe to call repeatedly within a
// generation pass and must return stable results for unchanged inputs, since
// descriptor output is compared byte-for-byte across passes.
type Provider interface {
	// Assemblies returns the build units whose source files survive the
	// include filter. An assembly with no surviving source files is omitted.
	// Returns an empty slice when nothing matches (not an error).
	Assemblies(include func(file string) bool) []Assembly

	// AssetPaths returns every asset path the host tracks, relative to the
	// project root. The engine filters these down to the non-source files
	// worth listing in project descriptors.
	AssetPaths() []string

	// AssemblyNameForPath returns the name of the assembly that would own the
	// given source path under the host's ownership rules. The path does not
	// need to exist.
	AssemblyNameForPath(path string) string

	// PackageOrigin classifies the package a path belongs to. Returns
	// OriginNone for paths outside any package.
	PackageOrigin(path string) Origin

	// ParseResponseFile parses one compiler response file. Relative reference
	// paths resolve against baseDir first, then against each system reference
	// directory. Parse failures are reported in the result's Errors, never as
	// a panic; partial results are still usable.
	ParseResponseFile(path, baseDir string, systemRefDirs []string) ResponseFile

	// ActiveDefines returns the preprocessor symbols active for the current
	// build target, in host-declared order.
	ActiveDefines() []string

	// SystemReferenceDirectories returns the directories holding framework
	// reference binaries for the given compatibility profile.
	SystemReferenceDirectories(level APICompatibility) []string
}
