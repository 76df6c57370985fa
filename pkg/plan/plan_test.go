package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencilworks/stencil/pkg/settings"
	"github.com/stencilworks/stencil/pkg/testutil"
	"github.com/stencilworks/stencil/pkg/types"
)

func testSettings(t *testing.T) *settings.Settings {
	t.Helper()
	s, err := settings.Default()
	require.NoError(t, err)
	return s
}

func webextConfig() *types.TemplateConfig {
	return &types.TemplateConfig{
		Meta: types.Meta{Name: "vue-webext", Type: "browser-extension"},
		Layers: []types.Layer{
			{
				Key: "pages",
				Items: []types.Item{
					{
						ID: "popup", Name: "Popup", DefaultEnabled: true,
						Files:        []string{"src/ui/popup/**/*"},
						ManifestKeys: []string{"action"},
					},
					{
						ID: "options", Name: "Options",
						Files:        []string{"src/ui/options/**/*"},
						ManifestKeys: []string{"options_page"},
					},
				},
			},
			{
				Key: "features",
				Items: []types.Item{
					{
						ID: "stateManagement", Name: "Pinia",
						Dependencies: []types.Dependency{{Name: "pinia", Version: "^2.0.0"}},
						CodePatterns: []types.CodePattern{{
							File:    "src/**/*.ts",
							Pattern: `(?m)^import .* from 'pinia'\n`,
							Action:  "keep",
						}},
					},
				},
			},
		},
	}
}

func webextTree(t *testing.T) types.FS {
	return testutil.NewTemplateFS(t, "/proj", map[string]string{
		"template.config.json":       "{}",
		"src/ui/popup/Popup.vue":     "<template/>",
		"src/ui/options/Options.vue": "<template/>",
		"src/main.ts":                "import { createPinia } from 'pinia'\nimport App from './App.vue'\n",
		"manifest.config.ts": `export default {
  action: { default_popup: "popup.html" },
  options_page: "options.html",
}`,
		"package.json": `{
  "name": "demo",
  "dependencies": {
    "vue": "^3.4.0",
    "pinia": "^1.0.0"
  },
  "devDependencies": {
    "vite": "^5.0.0"
  }
}`,
	})
}

func TestBuildFullSelection(t *testing.T) {
	fsys := webextTree(t)

	p, err := Build(fsys, "/proj", webextConfig(), types.Selections{
		"pages":    {"popup", "options"},
		"features": {"stateManagement"},
	}, testSettings(t))
	require.NoError(t, err)

	assert.Empty(t, p.ReadyRemovals())

	// the only write is the pinia version pin in package.json
	require.Len(t, p.Writes, 1)
	assert.Equal(t, types.WriteDeps, p.Writes[0].Kind)
	assert.Contains(t, string(p.Writes[0].Content), `"pinia": "^2.0.0"`)
}

func TestBuildUnselectedPage(t *testing.T) {
	fsys := webextTree(t)

	p, err := Build(fsys, "/proj", webextConfig(), types.Selections{
		"pages":    {"popup"},
		"features": {"stateManagement"},
	}, testSettings(t))
	require.NoError(t, err)

	removals := p.ReadyRemovals()
	require.Len(t, removals, 1)
	assert.Equal(t, "/proj/src/ui/options", removals[0].Path)
	assert.True(t, removals[0].Recursive)

	var manifestWrite *types.FileWriteOp
	for i := range p.Writes {
		if p.Writes[i].Kind == types.WriteManifest {
			manifestWrite = &p.Writes[i]
		}
	}
	require.NotNil(t, manifestWrite, "unselected options page patches the manifest")
	assert.NotContains(t, string(manifestWrite.Content), "options_page")
	assert.Contains(t, string(manifestWrite.Content), "default_popup")
}

func TestBuildUnselectedFeaturePrunesAndRemovesDeps(t *testing.T) {
	fsys := webextTree(t)

	p, err := Build(fsys, "/proj", webextConfig(), types.Selections{
		"pages":    {"popup", "options"},
		"features": {},
	}, testSettings(t))
	require.NoError(t, err)

	var pruneWrite, depsWrite *types.FileWriteOp
	for i := range p.Writes {
		switch p.Writes[i].Kind {
		case types.WritePrune:
			pruneWrite = &p.Writes[i]
		case types.WriteDeps:
			depsWrite = &p.Writes[i]
		}
	}

	require.NotNil(t, pruneWrite)
	assert.Equal(t, "/proj/src/main.ts", pruneWrite.Path)
	assert.Equal(t, "import App from './App.vue'\n", string(pruneWrite.Content))

	require.NotNil(t, depsWrite)
	assert.NotContains(t, string(depsWrite.Content), "pinia")
	assert.Contains(t, string(depsWrite.Content), "vue")
}

func TestBuildDoesNotMutate(t *testing.T) {
	fsys := webextTree(t)
	before := testutil.Snapshot(t, fsys, "/proj")
	mainBefore := testutil.ReadString(t, fsys, "/proj/src/main.ts")

	_, err := Build(fsys, "/proj", webextConfig(), types.Selections{}, testSettings(t))
	require.NoError(t, err)

	assert.Equal(t, before, testutil.Snapshot(t, fsys, "/proj"))
	assert.Equal(t, mainBefore, testutil.ReadString(t, fsys, "/proj/src/main.ts"))
}

func TestBuildNoPackageJSON(t *testing.T) {
	fsys := testutil.NewTemplateFS(t, "/proj", map[string]string{
		"src/main.ts": "export {}\n",
	})

	cfg := webextConfig()
	p, err := Build(fsys, "/proj", cfg, types.Selections{
		"pages": {"popup", "options"}, "features": {"stateManagement"},
	}, testSettings(t))
	require.NoError(t, err)

	for _, w := range p.Writes {
		assert.NotEqual(t, types.WriteDeps, w.Kind)
	}
}

func TestBuildManifestMissing(t *testing.T) {
	fsys := testutil.NewTemplateFS(t, "/proj", map[string]string{
		"src/main.ts": "export {}\n",
	})

	p, err := Build(fsys, "/proj", webextConfig(), types.Selections{
		"pages": {"popup"}, "features": {"stateManagement"},
	}, testSettings(t))
	require.NoError(t, err)

	found := false
	for _, w := range p.Warnings {
		if w.Stage == "manifest" {
			found = true
		}
	}
	assert.True(t, found, "missing manifest surfaces as a warning")
}

func TestBuildNonManifestTemplateType(t *testing.T) {
	fsys := webextTree(t)

	cfg := webextConfig()
	cfg.Meta.Type = "library"

	p, err := Build(fsys, "/proj", cfg, types.Selections{
		"pages": {"popup"}, "features": {"stateManagement"},
	}, testSettings(t))
	require.NoError(t, err)

	for _, w := range p.Writes {
		assert.NotEqual(t, types.WriteManifest, w.Kind)
	}
}

func TestBuildUnknownSelectionWarnsButPlansNothingExtra(t *testing.T) {
	fsys := webextTree(t)

	p, err := Build(fsys, "/proj", webextConfig(), types.Selections{
		"pages":    {"popup", "options", "sidebar"},
		"features": {"stateManagement"},
	}, testSettings(t))
	require.NoError(t, err)

	require.NotEmpty(t, p.Warnings)
	assert.Equal(t, "selections", p.Warnings[0].Stage)
	assert.Empty(t, p.ReadyRemovals())
}

func TestBuildDropsWritesUnderRemovals(t *testing.T) {
	fsys := testutil.NewTemplateFS(t, "/proj", map[string]string{
		"src/extra/helper.ts": "import { createPinia } from 'pinia'\n",
	})

	cfg := &types.TemplateConfig{
		Meta: types.Meta{Type: "browser-extension"},
		Layers: []types.Layer{{
			Key: "features",
			Items: []types.Item{{
				ID: "stateManagement", Name: "Pinia",
				Files: []string{"src/extra/**/*"},
				CodePatterns: []types.CodePattern{{
					File:    "src/**/*.ts",
					Pattern: `(?m)^import .* from 'pinia'\n`,
					Action:  "keep",
				}},
			}},
		}},
	}

	p, err := Build(fsys, "/proj", cfg, types.Selections{"features": {}}, testSettings(t))
	require.NoError(t, err)

	require.Len(t, p.ReadyRemovals(), 1)
	assert.Empty(t, p.Writes, "pruning a file that is being deleted is pointless")
}

func TestBuildReservedActionIsNoOp(t *testing.T) {
	fsys := testutil.NewTemplateFS(t, "/proj", map[string]string{
		"src/main.ts": "keep me\n",
	})

	cfg := &types.TemplateConfig{
		Layers: []types.Layer{{
			Key: "features",
			Items: []types.Item{{
				ID: "x", Name: "X",
				CodePatterns: []types.CodePattern{{
					File: "src/**/*.ts", Pattern: "keep me", Action: "replace",
				}},
			}},
		}},
	}

	p, err := Build(fsys, "/proj", cfg, types.Selections{"features": {}}, testSettings(t))
	require.NoError(t, err)
	assert.Empty(t, p.Writes)
	assert.Empty(t, p.Warnings)
}
