package gen

import (
	"fmt"
	"strings"

	"github.com/velesbuild/idesync/host"
)

const (
	solutionFormatVersion       = "12.00"
	solutionVisualStudioVersion = "15"
)

// Solution templates are authored with four-space indents and expanded to
// tab indentation up front, before any assembly-supplied text is
// interpolated, so project names are never rewritten by the expansion.
var (
	solutionFrame = tabbed([]string{
		``,
		`Microsoft Visual Studio Solution File, Format Version %s`,
		`# Visual Studio %s`,
		`%s`,
		`Global`,
		`    GlobalSection(SolutionConfigurationPlatforms) = preSolution`,
		`        Debug|Any CPU = Debug|Any CPU`,
		`        Release|Any CPU = Release|Any CPU`,
		`    EndGlobalSection`,
		`    GlobalSection(ProjectConfigurationPlatforms) = postSolution`,
		`%s`,
		`    EndGlobalSection`,
		`    GlobalSection(SolutionProperties) = preSolution`,
		`        HideSolutionNode = FALSE`,
		`    EndGlobalSection`,
		`EndGlobal`,
		``,
	})

	solutionProjectEntryTemplate = tabbed([]string{
		`Project("{%s}") = "%s", "%s", "{%s}"`,
		`EndProject`,
	})

	solutionProjectConfigurationTemplate = tabbed([]string{
		`        {%s}.Debug|Any CPU.ActiveCfg = Debug|Any CPU`,
		`        {%s}.Debug|Any CPU.Build.0 = Debug|Any CPU`,
		`        {%s}.Release|Any CPU.ActiveCfg = Release|Any CPU`,
		`        {%s}.Release|Any CPU.Build.0 = Release|Any CPU`,
	})
)

func tabbed(lines []string) string {
	return strings.ReplaceAll(strings.Join(lines, crlf), "    ", "\t")
}

// renderSolution produces the solution descriptor text for the given
// assemblies. They must already be filtered to the relevant set; their order
// is preserved as-is, which keeps the text stable across passes.
func renderSolution(assemblies []host.Assembly) string {
	entries := make([]string, 0, len(assemblies))
	configurations := make([]string, 0, len(assemblies))
	for _, a := range assemblies {
		projectID := ProjectID(a.Name)
		entries = append(entries, fmt.Sprintf(solutionProjectEntryTemplate,
			SolutionID(a.Name, sourceExtension(a.SourceFiles)),
			a.Name,
			a.OutputStem()+projectExtension,
			projectID,
		))
		configurations = append(configurations, fmt.Sprintf(solutionProjectConfigurationTemplate,
			projectID, projectID, projectID, projectID,
		))
	}
	return fmt.Sprintf(solutionFrame,
		solutionFormatVersion,
		solutionVisualStudioVersion,
		strings.Join(entries, crlf),
		strings.Join(configurations, crlf),
	)
}
