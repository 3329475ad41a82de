package gen

import (
	"strings"

	"github.com/velesbuild/idesync/internal/util"
)

// Language is the source category of a file or assembly. The engine renders
// descriptors for exactly one category; everything else in the extension
// table is a solution-relevant asset, not source.
type Language int

const (
	// LanguageNone marks recognized non-source assets (shaders, markup,
	// build-unit manifests).
	LanguageNone Language = iota
	// LanguageCSharp is the one category this engine emits projects for.
	LanguageCSharp
)

func (l Language) String() string {
	if l == LanguageCSharp {
		return "csharp"
	}
	return "none"
}

// builtinExtensions maps dot-stripped, lower-cased extensions to their
// language category. Membership in this table is what makes a file
// solution-relevant; the category decides whether it compiles.
var builtinExtensions = map[string]Language{
	"cs":       LanguageCSharp,
	"shader":   LanguageNone,
	"compute":  LanguageNone,
	"hlsl":     LanguageNone,
	"glslinc":  LanguageNone,
	"cginc":    LanguageNone,
	"raytrace": LanguageNone,
	"template": LanguageNone,
	"vml":      LanguageNone,
	"vss":      LanguageNone,
	"unitdef":  LanguageNone,
}

// normalizeExtension strips leading dots and lower-cases, so ".CS", "CS" and
// "cs" all address the same table entry.
func normalizeExtension(extension string) string {
	return strings.ToLower(strings.TrimLeft(extension, "."))
}

// Classifier answers extension-membership and language-category questions.
// Callers may extend the built-in table with extra recognized extensions;
// those always classify as LanguageNone.
type Classifier struct {
	extra map[string]struct{}
}

// NewClassifier builds a classifier. extraExtensions entries may carry a
// leading dot and any casing; both are normalized away.
func NewClassifier(extraExtensions []string) *Classifier {
	c := &Classifier{extra: make(map[string]struct{}, len(extraExtensions))}
	for _, ext := range extraExtensions {
		if norm := normalizeExtension(ext); norm != "" {
			c.extra[norm] = struct{}{}
		}
	}
	return c
}

// IsRecognized reports whether the extension (dot optional, case ignored) is
// in the combined built-in plus configured set.
func (c *Classifier) IsRecognized(extension string) bool {
	ext := normalizeExtension(extension)
	if _, ok := builtinExtensions[ext]; ok {
		return true
	}
	_, ok := c.extra[ext]
	return ok
}

// LanguageForExtension returns the built-in category for an extension, or
// LanguageNone when the table does not know it.
func LanguageForExtension(extension string) Language {
	return builtinExtensions[normalizeExtension(extension)]
}

// SourceLanguage classifies an ordered source-file list by its first entry.
// Empty lists classify as LanguageNone.
func SourceLanguage(sourceFiles []string) Language {
	return LanguageForExtension(sourceExtension(sourceFiles))
}

// sourceExtension is the dot-stripped extension of the first source file, or
// "" for an empty list. Solution identifiers key off it.
func sourceExtension(sourceFiles []string) string {
	if len(sourceFiles) == 0 {
		return ""
	}
	return util.ExtensionOf(sourceFiles[0])
}
