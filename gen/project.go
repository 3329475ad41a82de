package gen

import (
	"fmt"
	"path"
	"strings"

	"github.com/velesbuild/idesync/host"
	"github.com/velesbuild/idesync/internal/util"
)

// Descriptor text conventions. Output uses Windows line endings end to end;
// generated files are compared byte-for-byte across passes, so none of these
// may drift.
const (
	crlf = "\r\n"

	msbuildNamespace = "http://schemas.microsoft.com/developer/msbuild/2003"
	toolsVersion     = "4.0"
	productVersion   = "10.0.20506"

	projectExtension  = ".csproj"
	solutionExtension = ".sln"

	// compiledOutputDir is where the host build drops assembly binaries.
	// References into it resolve to sibling projects when the file stem names
	// a relevant assembly.
	compiledOutputDir = "Cache/Assemblies"
)

// implicitEngineAssemblies are referenced by every assembly implicitly; the
// IDE resolves them through its registered SDK, so descriptors never list
// them.
var implicitEngineAssemblies = []string{"VelesEngine.dll", "VelesEditor.dll"}

// baseDefines seed every assembly's define list before host and assembly
// defines are merged in.
var baseDefines = []string{"DEBUG", "TRACE"}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escapeXML(s string) string {
	return xmlEscaper.Replace(s)
}

// renderContext carries the per-pass inputs shared by every project render:
// the resolved root, host-level defines, the asset fragments and the
// relevance machinery. It is immutable during a pass.
type renderContext struct {
	// projectRoot is the absolute project root with forward slashes and no
	// trailing separator.
	projectRoot   string
	rootNamespace string
	activeDefines []string

	// assetParts maps assembly name to its non-source item block.
	assetParts map[string]string

	// relevantStems maps output stem to assembly name for every relevant
	// assembly, for inter-project reference resolution.
	relevantStems map[string]string

	includes func(file string) bool
	originOf func(path string) host.Origin
}

// renderProject produces the full project descriptor text for one assembly.
// Emission order is fixed: compile items in host-declared order, asset parts,
// own references, response-file references, then inter-project references in
// their own item group. The order is what makes output reproducible.
func renderProject(a host.Assembly, responseFiles []host.ResponseFile, ctx renderContext) string {
	var b strings.Builder
	b.WriteString(projectHeader(a, responseFiles, ctx))

	// Binaries listed among the source files compile nowhere; they re-enter
	// below as references.
	var binaryRefs []string
	for _, file := range a.SourceFiles {
		if !ctx.includes(file) {
			continue
		}
		if util.ExtensionOf(file) == binaryExtension {
			binaryRefs = append(binaryRefs, file)
			continue
		}
		b.WriteString(`    <Compile Include="` + ctx.escapedRelativePath(file) + `" />` + crlf)
	}

	if part, ok := ctx.assetParts[a.Name]; ok {
		b.WriteString(part)
	}

	// interProject collects referenced assembly names in encounter order;
	// their entries close the file in a second item group.
	var interProject []string
	seen := make(map[string]struct{})
	appendReference := func(ref string, allowInterProject bool) {
		if _, dup := seen[ref]; dup {
			return
		}
		seen[ref] = struct{}{}
		if isImplicitEngineReference(ref) {
			return
		}
		if allowInterProject {
			if stem, ok := compiledOutputStem(ref); ok {
				if name, relevant := ctx.relevantStems[stem]; relevant {
					interProject = append(interProject, name)
					return
				}
				// Stem matches no known assembly: degrade to a plain
				// file reference rather than fail.
			}
		}
		b.WriteString(referenceEntry(ref, ctx.projectRoot))
	}

	for _, ref := range binaryRefs {
		appendReference(ref, true)
	}
	for _, ref := range a.References {
		appendReference(ref, true)
	}
	for _, rsp := range responseFiles {
		for _, ref := range rsp.References {
			appendReference(ref, false)
		}
	}

	if len(interProject) > 0 {
		b.WriteString(`  </ItemGroup>` + crlf)
		b.WriteString(`  <ItemGroup>` + crlf)
		for _, name := range interProject {
			b.WriteString(projectReferenceEntry(name))
		}
	}

	b.WriteString(projectFooter())
	return b.String()
}

// projectHeader renders everything up to and including the opening of the
// item group: schema metadata, the language marker, the identity property
// group and the Debug/Release configuration groups.
func projectHeader(a host.Assembly, responseFiles []host.ResponseFile, ctx renderContext) string {
	allowUnsafe := a.AllowUnsafeCode
	for _, rsp := range responseFiles {
		if rsp.Unsafe {
			allowUnsafe = true
		}
	}

	defines := strings.Join(mergeDefines(ctx.activeDefines, a.Defines, responseFiles), ";")
	frameworkVersion, langVersion := compatibilityProfile(a.APICompatibility)

	lines := []string{
		`<?xml version="1.0" encoding="utf-8"?>`,
		fmt.Sprintf(`<Project ToolsVersion="%s" DefaultTargets="Build" xmlns="%s">`, toolsVersion, msbuildNamespace),
		`  <PropertyGroup>`,
		fmt.Sprintf(`    <LangVersion>%s</LangVersion>`, langVersion),
		`  </PropertyGroup>`,
		`  <PropertyGroup>`,
		`    <Configuration Condition=" '$(Configuration)' == '' ">Debug</Configuration>`,
		`    <Platform Condition=" '$(Platform)' == '' ">AnyCPU</Platform>`,
		fmt.Sprintf(`    <ProductVersion>%s</ProductVersion>`, productVersion),
		`    <SchemaVersion>2.0</SchemaVersion>`,
		fmt.Sprintf(`    <RootNamespace>%s</RootNamespace>`, escapeXML(ctx.rootNamespace)),
		fmt.Sprintf(`    <ProjectGuid>{%s}</ProjectGuid>`, ProjectID(a.Name)),
		`    <OutputType>Library</OutputType>`,
		`    <AppDesignerFolder>Properties</AppDesignerFolder>`,
		fmt.Sprintf(`    <AssemblyName>%s</AssemblyName>`, escapeXML(a.Name)),
		fmt.Sprintf(`    <TargetFrameworkVersion>%s</TargetFrameworkVersion>`, frameworkVersion),
		`    <FileAlignment>512</FileAlignment>`,
		`    <BaseDirectory>.</BaseDirectory>`,
		`  </PropertyGroup>`,
		`  <PropertyGroup Condition=" '$(Configuration)|$(Platform)' == 'Debug|AnyCPU' ">`,
		`    <DebugSymbols>true</DebugSymbols>`,
		`    <DebugType>full</DebugType>`,
		`    <Optimize>false</Optimize>`,
		`    <OutputPath>Temp\bin\Debug\</OutputPath>`,
		fmt.Sprintf(`    <DefineConstants>%s</DefineConstants>`, escapeXML(defines)),
		`    <ErrorReport>prompt</ErrorReport>`,
		`    <WarningLevel>4</WarningLevel>`,
		`    <NoWarn>0169</NoWarn>`,
		fmt.Sprintf(`    <AllowUnsafeBlocks>%t</AllowUnsafeBlocks>`, allowUnsafe),
		`  </PropertyGroup>`,
		`  <PropertyGroup Condition=" '$(Configuration)|$(Platform)' == 'Release|AnyCPU' ">`,
		`    <DebugType>pdbonly</DebugType>`,
		`    <Optimize>true</Optimize>`,
		`    <OutputPath>Temp\bin\Release\</OutputPath>`,
		`    <ErrorReport>prompt</ErrorReport>`,
		`    <WarningLevel>4</WarningLevel>`,
		`    <NoWarn>0169</NoWarn>`,
		fmt.Sprintf(`    <AllowUnsafeBlocks>%t</AllowUnsafeBlocks>`, allowUnsafe),
		`  </PropertyGroup>`,
		`  <PropertyGroup>`,
		`    <NoConfig>true</NoConfig>`,
		`    <NoStdLib>true</NoStdLib>`,
		`    <AddAdditionalExplicitAssemblyReferences>false</AddAdditionalExplicitAssemblyReferences>`,
		`    <ImplicitlyExpandNETStandardFacades>false</ImplicitlyExpandNETStandardFacades>`,
		`    <ImplicitlyExpandDesignTimeFacades>false</ImplicitlyExpandDesignTimeFacades>`,
		`  </PropertyGroup>`,
		`  <ItemGroup>`,
		``,
	}
	return strings.Join(lines, crlf)
}

// projectFooter closes the open item group and the document.
func projectFooter() string {
	lines := []string{
		`  </ItemGroup>`,
		`  <Import Project="$(MSBuildToolsPath)\Microsoft.CSharp.targets" />`,
		`  <!-- To modify your build process, add your task inside one of the targets below and uncomment it.`,
		`       Other similar extension points exist, see Microsoft.Common.targets.`,
		`  <Target Name="BeforeBuild">`,
		`  </Target>`,
		`  <Target Name="AfterBuild">`,
		`  </Target>`,
		`  -->`,
		`</Project>`,
		``,
	}
	return strings.Join(lines, crlf)
}

// mergeDefines combines the fixed base pair, host active defines, assembly
// defines and response-file defines, preserving first-seen order and
// first-seen casing. Later duplicates are dropped case-insensitively.
func mergeDefines(activeDefines, assemblyDefines []string, responseFiles []host.ResponseFile) []string {
	merged := make([]string, 0, len(baseDefines)+len(activeDefines)+len(assemblyDefines))
	seen := make(map[string]struct{})
	add := func(defines []string) {
		for _, define := range defines {
			define = strings.TrimSpace(define)
			if define == "" {
				continue
			}
			key := strings.ToLower(define)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, define)
		}
	}
	add(baseDefines)
	add(activeDefines)
	add(assemblyDefines)
	for _, rsp := range responseFiles {
		add(rsp.Defines)
	}
	return merged
}

// compatibilityProfile maps an API compatibility level to the framework and
// language versions the descriptor declares.
func compatibilityProfile(level host.APICompatibility) (frameworkVersion, langVersion string) {
	if level == host.APICompatibilityLegacy {
		return "v3.5", "4"
	}
	return "v4.7.1", "latest"
}

// referenceEntry renders one plain file reference. The hint path is rooted
// against the project directory and emitted with forward slashes.
func referenceEntry(ref, projectRoot string) string {
	full := util.NormalizePath(ref)
	if !isRooted(full) {
		full = projectRoot + "/" + full
	}
	name := util.StemOf(full)
	return `    <Reference Include="` + escapeXML(name) + `">` + crlf +
		`      <HintPath>` + escapeXML(full) + `</HintPath>` + crlf +
		`    </Reference>` + crlf
}

// projectReferenceEntry renders one inter-project reference carrying the
// referenced project's deterministic identifier.
func projectReferenceEntry(name string) string {
	return `    <ProjectReference Include="` + escapeXML(name) + projectExtension + `">` + crlf +
		`      <Project>{` + ProjectID(name) + `}</Project>` + crlf +
		`      <Name>` + escapeXML(name) + `</Name>` + crlf +
		`    </ProjectReference>` + crlf
}

// assetEntry renders one non-source asset item for the asset-project-part
// map.
func assetEntry(asset string, ctx renderContext) string {
	return `    <None Include="` + ctx.escapedRelativePath(asset) + `" />` + crlf
}

// isImplicitEngineReference reports whether ref points at one of the host
// assemblies every project references implicitly.
func isImplicitEngineReference(ref string) bool {
	norm := strings.ToLower(util.NormalizePath(ref))
	for _, implicit := range implicitEngineAssemblies {
		name := strings.ToLower(implicit)
		if norm == name || strings.HasSuffix(norm, "/"+name) {
			return true
		}
	}
	return false
}

// compiledOutputStem extracts the file stem from a reference into the
// compiled-output directory. The directory prefix and binary extension match
// case-insensitively and accept either separator; anything else is not a
// candidate for inter-project resolution.
func compiledOutputStem(ref string) (string, bool) {
	norm := util.NormalizePath(ref)
	prefix := compiledOutputDir + "/"
	if len(norm) <= len(prefix) || !strings.EqualFold(norm[:len(prefix)], prefix) {
		return "", false
	}
	rest := norm[len(prefix):]
	suffix := "." + binaryExtension
	if len(rest) <= len(suffix) || !strings.EqualFold(rest[len(rest)-len(suffix):], suffix) {
		return "", false
	}
	return rest[:len(rest)-len(suffix)], true
}

// escapedRelativePath makes file relative to the project root, converts it to
// the descriptor's backslash separators and escapes markup metacharacters.
// Package-owned files route through an absolute path first: package
// remapping assumes native separators, and the absolute form re-anchors the
// file under the project root before relativizing again.
func (ctx renderContext) escapedRelativePath(file string) string {
	rel := util.TrimPathPrefix(util.NormalizePath(file), ctx.projectRoot)
	if ctx.originOf != nil && ctx.originOf(rel) != host.OriginNone {
		abs := rel
		if !isRooted(abs) {
			abs = path.Join(ctx.projectRoot, abs)
		}
		rel = util.TrimPathPrefix(path.Clean(abs), ctx.projectRoot)
	}
	return escapeXML(strings.ReplaceAll(rel, "/", `\`))
}

// isRooted reports whether a normalized path is absolute. Drive-letter paths
// count as rooted even off Windows, since manifests may carry them.
func isRooted(p string) bool {
	if path.IsAbs(p) {
		return true
	}
	return len(p) >= 2 && p[1] == ':'
}
