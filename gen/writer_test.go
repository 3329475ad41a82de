package gen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWriter_WritesNewFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Game.Core.csproj")
	w := NewWriter(DefaultSettings(), zap.NewNop().Sugar())

	wrote, err := w.WriteIfChanged(target, "content\r\n")
	require.NoError(t, err)
	assert.True(t, wrote)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "content\r\n", string(data))
	// No byte-order marker.
	assert.NotEqual(t, byte(0xEF), data[0])
}

func TestWriter_SkipsIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Game.Core.csproj")
	require.NoError(t, os.WriteFile(target, []byte("content\r\n"), 0644))

	w := NewWriter(DefaultSettings(), zap.NewNop().Sugar())
	wrote, err := w.WriteIfChanged(target, "content\r\n")
	require.NoError(t, err)
	assert.False(t, wrote)
}

func TestWriter_RewritesChangedContent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Game.Core.csproj")
	require.NoError(t, os.WriteFile(target, []byte("old\r\n"), 0644))

	w := NewWriter(DefaultSettings(), zap.NewNop().Sugar())
	wrote, err := w.WriteIfChanged(target, "new\r\n")
	require.NoError(t, err)
	assert.True(t, wrote)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "new\r\n", string(data))
}

func TestWriter_CaptureMode(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Game.Core.csproj")
	settings := CaptureSettings()
	w := NewWriter(settings, zap.NewNop().Sugar())

	wrote, err := w.WriteIfChanged(target, "content\r\n")
	require.NoError(t, err)
	assert.True(t, wrote)

	_, statErr := os.Stat(target)
	assert.True(t, os.IsNotExist(statErr), "capture mode must not touch disk")
	assert.Equal(t, "content\r\n", settings.Captured[target])
}

func TestWriter_CaptureModeStillComparesDisk(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "Game.Core.csproj")
	require.NoError(t, os.WriteFile(target, []byte("content\r\n"), 0644))

	settings := CaptureSettings()
	w := NewWriter(settings, zap.NewNop().Sugar())

	wrote, err := w.WriteIfChanged(target, "content\r\n")
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Empty(t, settings.Captured)
}
