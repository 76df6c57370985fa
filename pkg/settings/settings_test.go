package settings

import (
	"os"
	"path/filepath"
	"testing"

	gotoml "github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsLoad(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	assert.Contains(t, s.Dependencies.Core, "vue")
	assert.Contains(t, s.Dependencies.CoreDev, "vite")
	assert.Equal(t, ".stencilignore", s.Prune.IgnoreFile)
	assert.True(t, s.Journal.Enabled)
	assert.Equal(t, 10, s.Journal.Retention)

	// source-embedded manifests come before plain JSON
	require.NotEmpty(t, s.Manifest.SearchOrder)
	assert.Equal(t, "manifest.config.ts", s.Manifest.SearchOrder[0])
}

func TestManifestBearing(t *testing.T) {
	s, err := Default()
	require.NoError(t, err)

	assert.True(t, s.ManifestBearing("browser-extension"))
	assert.True(t, s.ManifestBearing("webext"))
	assert.False(t, s.ManifestBearing("library"))
	assert.False(t, s.ManifestBearing(""))
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	override := `
[dependencies]
core = ["vue", "vue-router"]

[journal]
retention = 3
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(override), 0o644))

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"vue", "vue-router"}, s.Dependencies.Core)
	assert.Equal(t, 3, s.Journal.Retention)
	// untouched sections keep defaults
	assert.Equal(t, ".stencilignore", s.Prune.IgnoreFile)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName),
		[]byte("[journal]\nretention = 3\n"), 0o644))

	t.Setenv("STENCIL_JOURNAL_RETENTION", "7")

	s, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, s.Journal.Retention)
}

func TestLoadWithoutFile(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, s.Dependencies.Core, "vue")
}

func TestFromMap(t *testing.T) {
	s, err := FromMap(map[string]interface{}{
		"dependencies.core": []string{"react"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"react"}, s.Dependencies.Core)
	assert.Contains(t, s.Dependencies.CoreDev, "vite")
}

func TestDefaultTOMLRoundTrips(t *testing.T) {
	data, err := DefaultTOML()
	require.NoError(t, err)

	var s Settings
	require.NoError(t, gotoml.Unmarshal(data, &s))

	defaults, err := Default()
	require.NoError(t, err)
	assert.Equal(t, defaults, &s)
}
