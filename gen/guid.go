package gen

import (
	"crypto/md5"
	"strings"

	"github.com/google/uuid"
)

// CSharpProjectTypeID is the well-known Visual Studio project-type identifier
// for C# class libraries. Every C# project entry in a solution carries it; it
// is a published constant, never derived.
const CSharpProjectTypeID = "FAE04EC0-301F-11D3-BF4B-00C04F79EFBC"

// ProjectID returns the deterministic identifier for a project. Identical
// names yield identical identifiers on every machine and every run; IDEs key
// project state on it, so it must never drift.
func ProjectID(name string) string {
	return guidFor(name + "salt")
}

// SolutionID returns the solution-entry type identifier for a project whose
// sources carry the given extension. The target source category collapses to
// the fixed C# constant; anything else gets a name-derived identifier.
func SolutionID(name, sourceExtension string) string {
	if normalizeExtension(sourceExtension) == "cs" {
		return CSharpProjectTypeID
	}
	return guidFor(name)
}

// guidFor hashes the key and formats the 16 digest bytes in canonical dashed
// 8-4-4-4-12 grouping, upper-cased. MD5 here is an identity scheme, not a
// security boundary: swapping the hash would orphan every project identifier
// already on disk.
func guidFor(key string) string {
	sum := md5.Sum([]byte(key))
	id, err := uuid.FromBytes(sum[:])
	if err != nil {
		// FromBytes only fails on length != 16; sum is always 16 bytes.
		panic(err)
	}
	return strings.ToUpper(id.String())
}
