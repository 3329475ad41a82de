package manifest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/velesbuild/idesync/gen"
)

// The provider and the generation engine meet only at the host contract.
// This drives the pair end to end on a fixture project.
func TestProvider_DrivesGeneration(t *testing.T) {
	p := fixtureProvider(t)

	settings := gen.CaptureSettings()
	s := gen.NewSynchronizer(p.Root(), p, zap.NewNop().Sugar())
	s.SetSettings(settings)
	s.SetRootNamespace(p.RootNamespace())

	require.NoError(t, s.Sync())
	require.Len(t, settings.Captured, 3, "solution plus one project per assembly")

	solution := settings.Captured[s.SolutionFilePath()]
	assert.Contains(t, solution, `"Game.Core", "Game.Core.csproj"`)
	assert.Contains(t, solution, `"Game.Editor", "Game.Editor.csproj"`)

	assemblies := p.Assemblies(nil)
	require.Len(t, assemblies, 2)

	core := settings.Captured[s.ProjectFilePath(assemblies[0])]
	player := strings.Index(core, `<Compile Include="Assets\Scripts\Player.cs" />`)
	enemy := strings.Index(core, `<Compile Include="Assets\Scripts\Sub\Enemy.cs" />`)
	require.GreaterOrEqual(t, player, 0, "missing Player.cs item:\n%s", core)
	require.GreaterOrEqual(t, enemy, 0, "missing Enemy.cs item:\n%s", core)
	assert.Less(t, player, enemy, "manifest scan order survives into the descriptor")
	assert.Contains(t, core, "<RootNamespace>Veles.Demo</RootNamespace>")
	assert.Contains(t, core, "<DefineConstants>DEBUG;TRACE;VELES_EDITOR</DefineConstants>")

	editor := settings.Captured[s.ProjectFilePath(assemblies[1])]
	assert.Contains(t, editor, `<ProjectReference Include="Game.Core.csproj">`)
	assert.Contains(t, editor, "<AllowUnsafeBlocks>true</AllowUnsafeBlocks>")
	assert.Contains(t, editor, "<TargetFrameworkVersion>v3.5</TargetFrameworkVersion>")
	assert.Contains(t, editor, "<DefineConstants>DEBUG;TRACE;VELES_EDITOR;EDITOR_ONLY</DefineConstants>")
}
