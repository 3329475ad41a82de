package gen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velesbuild/idesync/host"
)

func testRenderContext() renderContext {
	return renderContext{
		projectRoot:   "/proj/VelesDemo",
		relevantStems: map[string]string{},
		includes:      func(string) bool { return true },
	}
}

// assertOrdered checks that the wanted substrings occur in content in the
// given order.
func assertOrdered(t *testing.T, content string, wanted ...string) {
	t.Helper()
	offset := 0
	for _, want := range wanted {
		i := strings.Index(content[offset:], want)
		require.GreaterOrEqual(t, i, 0, "missing %q after offset %d", want, offset)
		offset += i + len(want)
	}
}

func TestRenderProject_CompileItems(t *testing.T) {
	a := host.Assembly{
		Name:       "Game.Core",
		OutputPath: "Cache/Assemblies/Game.Core.dll",
		SourceFiles: []string{
			"Assets/Scripts/Player.cs",
			"/proj/VelesDemo/Assets/Scripts/Enemy.cs",
		},
	}

	content := renderProject(a, nil, testRenderContext())

	assert.Contains(t, content, `    <Compile Include="Assets\Scripts\Player.cs" />`+crlf)
	assert.Contains(t, content, `    <Compile Include="Assets\Scripts\Enemy.cs" />`+crlf)
	assertOrdered(t, content, `Player.cs`, `Enemy.cs`)
	assert.NotContains(t, content, "<Reference ")
	assert.NotContains(t, content, "<ProjectReference ")
}

func TestRenderProject_HeaderFields(t *testing.T) {
	ctx := testRenderContext()
	ctx.rootNamespace = "Veles.Game"
	a := host.Assembly{
		Name:        "Game.Core",
		OutputPath:  "Cache/Assemblies/Game.Core.dll",
		SourceFiles: []string{"Assets/A.cs"},
	}

	content := renderProject(a, nil, ctx)

	assert.True(t, strings.HasPrefix(content, `<?xml version="1.0" encoding="utf-8"?>`+crlf))
	assert.Contains(t, content, `<Project ToolsVersion="4.0" DefaultTargets="Build" xmlns="http://schemas.microsoft.com/developer/msbuild/2003">`)
	assert.Contains(t, content, `<RootNamespace>Veles.Game</RootNamespace>`)
	assert.Contains(t, content, `<AssemblyName>Game.Core</AssemblyName>`)
	assert.Contains(t, content, `<ProjectGuid>{`+ProjectID("Game.Core")+`}</ProjectGuid>`)
	assert.Contains(t, content, `<OutputPath>Temp\bin\Debug\</OutputPath>`)
	assert.Contains(t, content, `<OutputPath>Temp\bin\Release\</OutputPath>`)
	assert.Contains(t, content, `<NoWarn>0169</NoWarn>`)
	assert.True(t, strings.HasSuffix(content, `</Project>`+crlf))
}

func TestRenderProject_CRLFOnly(t *testing.T) {
	a := host.Assembly{
		Name:        "Game.Core",
		OutputPath:  "Cache/Assemblies/Game.Core.dll",
		SourceFiles: []string{"Assets/A.cs"},
	}

	content := renderProject(a, nil, testRenderContext())

	stripped := strings.ReplaceAll(content, crlf, "")
	assert.NotContains(t, stripped, "\n")
	assert.NotContains(t, stripped, "\r")
}

func TestRenderProject_EscapesMarkupInPaths(t *testing.T) {
	a := host.Assembly{
		Name:        "Game.Core",
		OutputPath:  "Cache/Assemblies/Game.Core.dll",
		SourceFiles: []string{`Assets/A&B's <x>.cs`},
	}

	content := renderProject(a, nil, testRenderContext())

	assert.Contains(t, content, `    <Compile Include="Assets\A&amp;B&apos;s &lt;x&gt;.cs" />`+crlf)
}

func TestRenderProject_DefinesMergeOrderAndDedup(t *testing.T) {
	ctx := testRenderContext()
	ctx.activeDefines = []string{"VELES_EDITOR", "debug"}
	a := host.Assembly{
		Name:        "Game.Core",
		OutputPath:  "Cache/Assemblies/Game.Core.dll",
		SourceFiles: []string{"Assets/A.cs"},
		Defines:     []string{"GAME_CORE", "TRACE"},
	}
	rsp := []host.ResponseFile{{Defines: []string{"EXTRA", "game_core"}}}

	content := renderProject(a, rsp, ctx)

	assert.Contains(t, content, `<DefineConstants>DEBUG;TRACE;VELES_EDITOR;GAME_CORE;EXTRA</DefineConstants>`)
	// Defines appear in the Debug group only.
	assert.Equal(t, 1, strings.Count(content, "<DefineConstants>"))
}

func TestRenderProject_UnsafeFlag(t *testing.T) {
	base := host.Assembly{
		Name:        "Game.Core",
		OutputPath:  "Cache/Assemblies/Game.Core.dll",
		SourceFiles: []string{"Assets/A.cs"},
	}

	t.Run("default off", func(t *testing.T) {
		content := renderProject(base, nil, testRenderContext())
		assert.Contains(t, content, `<AllowUnsafeBlocks>false</AllowUnsafeBlocks>`)
		assert.NotContains(t, content, `<AllowUnsafeBlocks>true</AllowUnsafeBlocks>`)
	})

	t.Run("assembly flag", func(t *testing.T) {
		a := base
		a.AllowUnsafeCode = true
		content := renderProject(a, nil, testRenderContext())
		assert.Equal(t, 2, strings.Count(content, `<AllowUnsafeBlocks>true</AllowUnsafeBlocks>`))
	})

	t.Run("response file flag", func(t *testing.T) {
		rsp := []host.ResponseFile{{Unsafe: true}}
		content := renderProject(base, rsp, testRenderContext())
		assert.Equal(t, 2, strings.Count(content, `<AllowUnsafeBlocks>true</AllowUnsafeBlocks>`))
	})
}

func TestRenderProject_CompatibilityProfiles(t *testing.T) {
	a := host.Assembly{
		Name:        "Game.Core",
		OutputPath:  "Cache/Assemblies/Game.Core.dll",
		SourceFiles: []string{"Assets/A.cs"},
	}

	latest := renderProject(a, nil, testRenderContext())
	assert.Contains(t, latest, `<LangVersion>latest</LangVersion>`)
	assert.Contains(t, latest, `<TargetFrameworkVersion>v4.7.1</TargetFrameworkVersion>`)

	a.APICompatibility = host.APICompatibilityLegacy
	legacy := renderProject(a, nil, testRenderContext())
	assert.Contains(t, legacy, `<LangVersion>4</LangVersion>`)
	assert.Contains(t, legacy, `<TargetFrameworkVersion>v3.5</TargetFrameworkVersion>`)
}

func TestRenderProject_BinarySourceBecomesReference(t *testing.T) {
	a := host.Assembly{
		Name:       "Game.Core",
		OutputPath: "Cache/Assemblies/Game.Core.dll",
		SourceFiles: []string{
			"Assets/A.cs",
			"Assets/Plugins/Newtonsoft.Json.dll",
		},
	}

	content := renderProject(a, nil, testRenderContext())

	assert.NotContains(t, content, `<Compile Include="Assets\Plugins\Newtonsoft.Json.dll"`)
	assert.Contains(t, content, `    <Reference Include="Newtonsoft.Json">`+crlf)
	assert.Contains(t, content, `      <HintPath>/proj/VelesDemo/Assets/Plugins/Newtonsoft.Json.dll</HintPath>`+crlf)
}

func TestRenderProject_ImplicitEngineReferencesDropped(t *testing.T) {
	a := host.Assembly{
		Name:        "Game.Core",
		OutputPath:  "Cache/Assemblies/Game.Core.dll",
		SourceFiles: []string{"Assets/A.cs"},
		References: []string{
			"/veles/Managed/VelesEngine.dll",
			`C:\Veles\Managed\VelesEditor.dll`,
			"/veles/Managed/VelesEngine.UI.dll",
		},
	}

	content := renderProject(a, nil, testRenderContext())

	assert.NotContains(t, content, "VelesEngine.dll")
	assert.NotContains(t, content, "VelesEditor.dll")
	assert.Contains(t, content, `<Reference Include="VelesEngine.UI">`)
}

func TestRenderProject_InterProjectReference(t *testing.T) {
	ctx := testRenderContext()
	ctx.relevantStems = map[string]string{"Game.Core": "Game.Core"}
	a := host.Assembly{
		Name:        "Game.Editor",
		OutputPath:  "Cache/Assemblies/Game.Editor.dll",
		SourceFiles: []string{"Assets/Editor/E.cs"},
		References:  []string{"Cache/Assemblies/Game.Core.dll"},
	}

	content := renderProject(a, nil, ctx)

	assert.NotContains(t, content, `<Reference Include="Game.Core">`)
	assertOrdered(t, content,
		`  </ItemGroup>`+crlf+`  <ItemGroup>`+crlf,
		`    <ProjectReference Include="Game.Core.csproj">`+crlf,
		`      <Project>{`+ProjectID("Game.Core")+`}</Project>`+crlf,
		`      <Name>Game.Core</Name>`+crlf,
		`    </ProjectReference>`+crlf,
	)
}

func TestRenderProject_UnknownOutputDirReferenceDegrades(t *testing.T) {
	ctx := testRenderContext()
	a := host.Assembly{
		Name:        "Game.Editor",
		OutputPath:  "Cache/Assemblies/Game.Editor.dll",
		SourceFiles: []string{"Assets/Editor/E.cs"},
		References:  []string{`Cache\Assemblies\ThirdParty.dll`},
	}

	content := renderProject(a, nil, ctx)

	assert.NotContains(t, content, "<ProjectReference")
	assert.Contains(t, content, `<Reference Include="ThirdParty">`)
	assert.Contains(t, content, `<HintPath>/proj/VelesDemo/Cache/Assemblies/ThirdParty.dll</HintPath>`)
}

func TestRenderProject_ReferenceOrderAndDedup(t *testing.T) {
	ctx := testRenderContext()
	ctx.relevantStems = map[string]string{"Game.Core": "Game.Core"}
	a := host.Assembly{
		Name:       "Game.Editor",
		OutputPath: "Cache/Assemblies/Game.Editor.dll",
		SourceFiles: []string{
			"Assets/Editor/E.cs",
			"Assets/Plugins/Own.dll",
		},
		References: []string{
			"Assets/Plugins/Own.dll",
			"Cache/Assemblies/Game.Core.dll",
			"/libs/External.dll",
		},
	}
	rsp := []host.ResponseFile{{References: []string{"/rsp/FromResponse.dll", "/libs/External.dll"}}}

	content := renderProject(a, rsp, ctx)

	assert.Equal(t, 1, strings.Count(content, `<Reference Include="Own">`))
	assert.Equal(t, 1, strings.Count(content, `<Reference Include="External">`))
	assertOrdered(t, content,
		`<Reference Include="Own">`,
		`<Reference Include="External">`,
		`<Reference Include="FromResponse">`,
		`<ProjectReference Include="Game.Core.csproj">`,
	)
}

func TestRenderProject_ResponseReferencesNeverInterProject(t *testing.T) {
	ctx := testRenderContext()
	ctx.relevantStems = map[string]string{"Game.Core": "Game.Core"}
	a := host.Assembly{
		Name:        "Game.Editor",
		OutputPath:  "Cache/Assemblies/Game.Editor.dll",
		SourceFiles: []string{"Assets/Editor/E.cs"},
	}
	rsp := []host.ResponseFile{{References: []string{"Cache/Assemblies/Game.Core.dll"}}}

	content := renderProject(a, rsp, ctx)

	assert.NotContains(t, content, "<ProjectReference")
	assert.Contains(t, content, `<Reference Include="Game.Core">`)
}

func TestRenderProject_AssetPartPlacement(t *testing.T) {
	ctx := testRenderContext()
	ctx.assetParts = map[string]string{
		"Game.Core": `    <None Include="Assets\Water.shader" />` + crlf,
	}
	a := host.Assembly{
		Name:        "Game.Core",
		OutputPath:  "Cache/Assemblies/Game.Core.dll",
		SourceFiles: []string{"Assets/A.cs"},
		References:  []string{"/libs/External.dll"},
	}

	content := renderProject(a, nil, ctx)

	assertOrdered(t, content,
		`<Compile Include="Assets\A.cs" />`,
		`<None Include="Assets\Water.shader" />`,
		`<Reference Include="External">`,
	)
}

func TestRenderProject_FilterExcludesSourceFiles(t *testing.T) {
	ctx := testRenderContext()
	ctx.includes = func(file string) bool { return !strings.Contains(file, "Excluded") }
	a := host.Assembly{
		Name:       "Game.Core",
		OutputPath: "Cache/Assemblies/Game.Core.dll",
		SourceFiles: []string{
			"Assets/A.cs",
			"Assets/Excluded/B.cs",
		},
	}

	content := renderProject(a, nil, ctx)

	assert.Contains(t, content, `<Compile Include="Assets\A.cs" />`)
	assert.NotContains(t, content, "Excluded")
}

func TestRenderProject_PackagePathReanchored(t *testing.T) {
	ctx := testRenderContext()
	ctx.originOf = func(path string) host.Origin {
		if strings.HasPrefix(path, "Packages/") {
			return host.OriginEmbedded
		}
		return host.OriginNone
	}
	a := host.Assembly{
		Name:        "Veles.UI",
		OutputPath:  "Cache/Assemblies/Veles.UI.dll",
		SourceFiles: []string{"Packages/stale/../com.veles.ui/Runtime/Button.cs"},
	}

	content := renderProject(a, nil, ctx)

	assert.Contains(t, content, `    <Compile Include="Packages\com.veles.ui\Runtime\Button.cs" />`+crlf)
}

func TestCompiledOutputStem(t *testing.T) {
	tests := []struct {
		ref  string
		stem string
		ok   bool
	}{
		{ref: "Cache/Assemblies/Game.Core.dll", stem: "Game.Core", ok: true},
		{ref: `Cache\Assemblies\Game.Core.dll`, stem: "Game.Core", ok: true},
		{ref: "cache/assemblies/Game.Core.DLL", stem: "Game.Core", ok: true},
		{ref: "Other/Game.Core.dll", ok: false},
		{ref: "Cache/Assemblies/Game.Core.pdb", ok: false},
		{ref: "Cache/Assemblies/.dll", ok: false},
		{ref: "Game.Core.dll", ok: false},
	}
	for _, tt := range tests {
		stem, ok := compiledOutputStem(tt.ref)
		assert.Equal(t, tt.ok, ok, "ref %q", tt.ref)
		if tt.ok {
			assert.Equal(t, tt.stem, stem, "ref %q", tt.ref)
		}
	}
}
