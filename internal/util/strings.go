package util

import "strings"

// NormalizePath converts backslash separators to forward slashes. Host build
// manifests and response files may carry Windows-style paths regardless of
// the platform the tool runs on.
func NormalizePath(path string) string {
	return strings.ReplaceAll(path, `\`, "/")
}

// TrimPathPrefix removes prefix plus its trailing separator from path.
// Returns path unchanged when it does not start with prefix. Comparison is
// exact; callers normalize separators first.
func TrimPathPrefix(path, prefix string) string {
	if prefix == "" {
		return path
	}
	prefix = strings.TrimSuffix(prefix, "/")
	if strings.HasPrefix(path, prefix+"/") {
		return path[len(prefix)+1:]
	}
	return path
}

// ExtensionOf returns the lower-cased extension of path without the leading
// dot, or "" when path has none. "Assets/Foo.CS" yields "cs".
func ExtensionOf(path string) string {
	base := path
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		base = base[i+1:]
	}
	i := strings.LastIndexByte(base, '.')
	if i < 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// StemOf returns the final path element without its extension, accepting
// either separator style. "Cache/Assemblies/Game.Core.dll" yields
// "Game.Core".
func StemOf(path string) string {
	base := NormalizePath(path)
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}
