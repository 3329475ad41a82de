package manifest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"

	"github.com/velesbuild/idesync/host"
	"github.com/velesbuild/idesync/internal/util"
)

// maxResponseFileDepth bounds @include recursion. Ten levels is far beyond
// any real compiler setup; past that we assume a cycle.
const maxResponseFileDepth = 10

// ParseResponseFile parses one compiler response file. Lines are split
// shell-style so quoted paths with spaces survive; `#` lines are comments.
// Recognized arguments: -r:/-reference:, -d:/-define: (semicolon-joined),
// -unsafe/-unsafe+/-unsafe-, @file includes. Unknown flags and unresolvable
// references are collected as errors; the partial result is still returned.
func (p *Provider) ParseResponseFile(path, baseDir string, systemRefDirs []string) host.ResponseFile {
	var result host.ResponseFile
	p.parseResponseFile(path, baseDir, systemRefDirs, 0, &result)
	return result
}

func (p *Provider) parseResponseFile(path, baseDir string, systemRefDirs []string, depth int, result *host.ResponseFile) {
	if depth > maxResponseFileDepth {
		result.Errors = append(result.Errors, fmt.Sprintf("include depth exceeded at %s", path))
		return
	}

	full := filepath.FromSlash(util.NormalizePath(path))
	if !filepath.IsAbs(full) {
		full = filepath.Join(baseDir, full)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read %s: %v", path, err))
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(strings.TrimRight(line, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args, err := shellquote.Split(line)
		if err != nil {
			// Unbalanced quotes: fall back to whitespace splitting.
			p.log.Debugw("Quote parsing failed, using simple split", "file", path, "line", line, "error", err)
			args = strings.Fields(line)
		}
		for _, arg := range args {
			p.parseArgument(arg, baseDir, systemRefDirs, depth, result)
		}
	}
}

func (p *Provider) parseArgument(arg, baseDir string, systemRefDirs []string, depth int, result *host.ResponseFile) {
	switch {
	case strings.HasPrefix(arg, "@"):
		p.parseResponseFile(arg[1:], baseDir, systemRefDirs, depth+1, result)

	case strings.HasPrefix(arg, "-r:"), strings.HasPrefix(arg, "-reference:"):
		value := strings.Trim(arg[strings.IndexByte(arg, ':')+1:], `"`)
		if value == "" {
			result.Errors = append(result.Errors, "empty reference: "+arg)
			return
		}
		resolved, ok := resolveReference(value, baseDir, systemRefDirs)
		if !ok {
			result.Errors = append(result.Errors, "could not resolve reference: "+value)
			return
		}
		result.References = append(result.References, resolved)

	case strings.HasPrefix(arg, "-d:"), strings.HasPrefix(arg, "-define:"):
		value := arg[strings.IndexByte(arg, ':')+1:]
		for _, define := range strings.Split(value, ";") {
			if define = strings.TrimSpace(define); define != "" {
				result.Defines = append(result.Defines, define)
			}
		}

	case arg == "-unsafe", arg == "-unsafe+":
		result.Unsafe = true

	case arg == "-unsafe-":
		result.Unsafe = false

	case strings.HasPrefix(arg, "-"):
		result.Errors = append(result.Errors, "unknown flag: "+arg)

	default:
		// Bare arguments are compiler source inputs; the assembly graph
		// already carries those.
	}
}

// resolveReference locates a referenced binary on disk: an absolute path as
// given, a relative one against baseDir first and then each system reference
// directory in order. Extensionless references get the binary extension
// appended. The first existing candidate wins.
func resolveReference(ref, baseDir string, systemRefDirs []string) (string, bool) {
	norm := util.NormalizePath(ref)
	if util.ExtensionOf(norm) == "" {
		norm += ".dll"
	}

	native := filepath.FromSlash(norm)
	var candidates []string
	if filepath.IsAbs(native) {
		candidates = []string{native}
	} else {
		candidates = make([]string, 0, 1+len(systemRefDirs))
		candidates = append(candidates, filepath.Join(baseDir, native))
		for _, dir := range systemRefDirs {
			candidates = append(candidates, filepath.Join(dir, native))
		}
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return util.NormalizePath(candidate), true
		}
	}
	return "", false
}
