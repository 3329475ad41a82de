package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/velesbuild/idesync/host"
)

func fixtureProvider(t *testing.T) *Provider {
	t.Helper()
	root := writeTree(t, map[string]string{
		FileName:                          fixtureManifest,
		"Assets/Scripts/Player.cs":        "class Player {}",
		"Assets/Scripts/Sub/Enemy.cs":     "class Enemy {}",
		"Assets/Scripts/notes.txt":        "not source",
		"Assets/Editor/EditorWindow.cs":   "class EditorWindow {}",
		"Assets/Water.shader":             "Shader",
		"Vendor/com.thirdparty/Lib.cs":    "class Lib {}",
		"Cache/Assemblies/Game.Core.dll":  "bin",
		"Temp/scratch.cs":                 "scratch",
		".git/config":                     "git",
		"Packages/com.veles.ui/Button.cs": "class Button {}",
	})
	p, err := NewProvider(root, zap.NewNop().Sugar())
	require.NoError(t, err)
	return p
}

func TestProvider_Assemblies(t *testing.T) {
	p := fixtureProvider(t)

	assemblies := p.Assemblies(nil)
	require.Len(t, assemblies, 2)

	core := assemblies[0]
	assert.Equal(t, "Game.Core", core.Name)
	assert.Equal(t, "Cache/Assemblies/Game.Core.dll", core.OutputPath)
	// Lexical scan order; the .txt never qualifies.
	assert.Equal(t, []string{
		"Assets/Scripts/Player.cs",
		"Assets/Scripts/Sub/Enemy.cs",
	}, core.SourceFiles)

	editor := assemblies[1]
	assert.Equal(t, []string{"Assets/Editor/EditorWindow.cs"}, editor.SourceFiles)
	assert.Equal(t, []string{"Cache/Assemblies/Game.Core.dll"}, editor.References)
	assert.True(t, editor.AllowUnsafeCode)
	assert.Equal(t, host.APICompatibilityLegacy, editor.APICompatibility)
}

func TestProvider_AssembliesAppliesFilter(t *testing.T) {
	p := fixtureProvider(t)

	assemblies := p.Assemblies(func(file string) bool {
		return file != "Assets/Editor/EditorWindow.cs"
	})

	// The editor assembly loses its only source and is omitted.
	require.Len(t, assemblies, 1)
	assert.Equal(t, "Game.Core", assemblies[0].Name)
}

func TestProvider_ExplicitFilesComeFirst(t *testing.T) {
	root := writeTree(t, map[string]string{
		FileName: `
[[assembly]]
name = "Game.Core"
roots = ["Assets/Scripts"]
files = ["Assets/Plugins/Lib.dll", "Assets/Scripts/Player.cs"]
`,
		"Assets/Scripts/Player.cs": "class Player {}",
		"Assets/Scripts/Zoo.cs":    "class Zoo {}",
		"Assets/Plugins/Lib.dll":   "bin",
	})
	p, err := NewProvider(root, zap.NewNop().Sugar())
	require.NoError(t, err)

	assemblies := p.Assemblies(nil)
	require.Len(t, assemblies, 1)
	assert.Equal(t, []string{
		"Assets/Plugins/Lib.dll",
		"Assets/Scripts/Player.cs",
		"Assets/Scripts/Zoo.cs",
	}, assemblies[0].SourceFiles, "declared files first, scan fills in without duplicates")
}

func TestProvider_AssetPaths(t *testing.T) {
	p := fixtureProvider(t)

	assets := p.AssetPaths()

	assert.Contains(t, assets, "Assets/Water.shader")
	assert.Contains(t, assets, "Assets/Scripts/notes.txt")
	assert.Contains(t, assets, "Packages/com.veles.ui/Button.cs")
	for _, asset := range assets {
		assert.NotContains(t, asset, "Cache/", "build output is not an asset")
		assert.NotContains(t, asset, "Temp/")
		assert.NotContains(t, asset, ".git/")
		assert.NotEqual(t, FileName, asset, "root-level files are not assets")
	}
}

func TestProvider_AssemblyNameForPath(t *testing.T) {
	p := fixtureProvider(t)

	tests := []struct {
		path string
		want string
	}{
		{path: "Assets/Scripts/Player.cs", want: "Game.Core"},
		{path: "Assets/Scripts/New/Unwritten.cs", want: "Game.Core"},
		{path: "Assets/Editor/Anything.cs", want: "Game.Editor"},
		{path: `Assets\Editor\Windows.cs`, want: "Game.Editor"},
		{path: "Assets/Loose.cs", want: ""},
		{path: "Elsewhere/X.cs", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.AssemblyNameForPath(tt.path), "path %q", tt.path)
	}
}

func TestProvider_AssemblyNameForPath_LongestRootWins(t *testing.T) {
	root := writeTree(t, map[string]string{
		FileName: `
[[assembly]]
name = "Game.Core"
roots = ["Assets"]

[[assembly]]
name = "Game.Editor"
roots = ["Assets/Editor"]
`,
	})
	p, err := NewProvider(root, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Equal(t, "Game.Editor", p.AssemblyNameForPath("Assets/Editor/E.cs"))
	assert.Equal(t, "Game.Core", p.AssemblyNameForPath("Assets/Player.cs"))
}

func TestProvider_AssemblyNameForPath_ExplicitFileWins(t *testing.T) {
	root := writeTree(t, map[string]string{
		FileName: `
[[assembly]]
name = "Game.Core"
roots = ["Assets"]

[[assembly]]
name = "Special"
files = ["Assets/Special.cs"]
`,
	})
	p, err := NewProvider(root, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Equal(t, "Special", p.AssemblyNameForPath("Assets/Special.cs"))
}

func TestProvider_PackageOrigin(t *testing.T) {
	p := fixtureProvider(t)

	tests := []struct {
		path string
		want host.Origin
	}{
		{path: "Vendor/com.thirdparty/Lib.cs", want: host.OriginRegistry},
		{path: "Vendor/com.thirdparty", want: host.OriginRegistry},
		{path: "Packages/com.veles.ui/Button.cs", want: host.OriginEmbedded},
		{path: "Cache/PackageStore/com.ext/Lib.cs", want: host.OriginRegistry},
		{path: "Assets/Scripts/Player.cs", want: host.OriginNone},
		{path: "Vendor/com.other/Lib.cs", want: host.OriginNone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, p.PackageOrigin(tt.path), "path %q", tt.path)
		// Second lookup answers from cache.
		assert.Equal(t, tt.want, p.PackageOrigin(tt.path), "cached path %q", tt.path)
	}
}

func TestProvider_PackageOrigin_TableBeatsConvention(t *testing.T) {
	root := writeTree(t, map[string]string{
		FileName: `
[packages]
"Packages/com.pinned" = "local"
`,
	})
	p, err := NewProvider(root, zap.NewNop().Sugar())
	require.NoError(t, err)

	assert.Equal(t, host.OriginLocal, p.PackageOrigin("Packages/com.pinned/A.cs"))
	assert.Equal(t, host.OriginEmbedded, p.PackageOrigin("Packages/com.other/A.cs"))
}

func TestProvider_SystemReferenceDirectories(t *testing.T) {
	p := fixtureProvider(t)

	assert.Equal(t, []string{"/veles/ref/latest"}, p.SystemReferenceDirectories(host.APICompatibilityLatest))
	assert.Equal(t, []string{"/veles/ref/legacy"}, p.SystemReferenceDirectories(host.APICompatibilityLegacy))
}

func TestProvider_ActiveDefinesAndNamespace(t *testing.T) {
	p := fixtureProvider(t)

	assert.Equal(t, []string{"VELES_EDITOR"}, p.ActiveDefines())
	assert.Equal(t, "Veles.Demo", p.RootNamespace())
}

func TestProvider_Reload(t *testing.T) {
	p := fixtureProvider(t)
	require.Len(t, p.Assemblies(nil), 2)

	updated := fixtureManifest + `
[[assembly]]
name = "Game.Tests"
roots = ["Assets/Tests"]
files = ["Assets/Tests/SmokeTest.cs"]
`
	require.NoError(t, os.WriteFile(filepath.Join(p.Root(), FileName), []byte(updated), 0644))
	require.NoError(t, p.Reload())

	assert.Len(t, p.Assemblies(nil), 3)
}

func TestProvider_NewSourcesAppearWithoutReload(t *testing.T) {
	p := fixtureProvider(t)

	path := filepath.Join(p.Root(), "Assets", "Scripts", "Added.cs")
	require.NoError(t, os.WriteFile(path, []byte("class Added {}"), 0644))

	assemblies := p.Assemblies(nil)
	require.Len(t, assemblies, 2)
	assert.Contains(t, assemblies[0].SourceFiles, "Assets/Scripts/Added.cs")
}
