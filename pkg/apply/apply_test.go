package apply

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencilworks/stencil/pkg/errors"
	"github.com/stencilworks/stencil/pkg/testutil"
	"github.com/stencilworks/stencil/pkg/types"
)

const applyConfig = `{
  "templateName": "vue-webext",
  "templateType": "browser-extension",
  "pages": {
    "popup": {
      "name": "Popup",
      "defaultEnabled": true,
      "files": ["src/ui/popup/**/*"],
      "manifestKeys": ["action"]
    },
    "options": {
      "name": "Options",
      "defaultEnabled": false,
      "files": ["src/ui/options/**/*"],
      "manifestKeys": ["options_page"]
    }
  }
}`

func applyFS(t *testing.T) types.FS {
	return testutil.NewTemplateFS(t, "/proj", map[string]string{
		"template.config.json":       applyConfig,
		"src/ui/popup/Popup.vue":     "<template/>",
		"src/ui/options/Options.vue": "<template/>",
		"manifest.json": `{
  "action": {"default_popup": "popup.html"},
  "options_page": "options.html"
}`,
	})
}

func TestRunAppliesSelections(t *testing.T) {
	fsys := applyFS(t)

	out, err := Run(context.Background(), fsys, Options{
		ProjectDir: "/proj",
		Selections: types.Selections{"pages": {"popup"}},
	}, NewFSExecutor(fsys, false))
	require.NoError(t, err)

	assert.Equal(t, "vue-webext", out.Config.Meta.Name)
	assert.True(t, out.Result.Changed())
	assert.False(t, testutil.Exists(t, fsys, "/proj/src/ui/options"))
	assert.True(t, testutil.Exists(t, fsys, "/proj/src/ui/popup/Popup.vue"))

	manifest := testutil.ReadString(t, fsys, "/proj/manifest.json")
	assert.NotContains(t, manifest, "options_page")
	assert.Contains(t, manifest, "default_popup")
}

func TestRunDefaultSelections(t *testing.T) {
	fsys := applyFS(t)

	// nil selections keep default-enabled items only: popup stays,
	// options goes
	out, err := Run(context.Background(), fsys, Options{ProjectDir: "/proj"},
		NewFSExecutor(fsys, false))
	require.NoError(t, err)

	assert.True(t, out.Result.Changed())
	assert.False(t, testutil.Exists(t, fsys, "/proj/src/ui/options"))
	assert.True(t, testutil.Exists(t, fsys, "/proj/src/ui/popup/Popup.vue"))
}

func TestRunIsIdempotent(t *testing.T) {
	fsys := applyFS(t)
	opts := Options{
		ProjectDir: "/proj",
		Selections: types.Selections{"pages": {"popup"}},
	}

	first, err := Run(context.Background(), fsys, opts, NewFSExecutor(fsys, false))
	require.NoError(t, err)
	require.True(t, first.Result.Changed())

	after := testutil.Snapshot(t, fsys, "/proj")

	second, err := Run(context.Background(), fsys, opts, NewFSExecutor(fsys, false))
	require.NoError(t, err)
	assert.True(t, second.Plan.IsEmpty())
	assert.False(t, second.Result.Changed())
	assert.Equal(t, after, testutil.Snapshot(t, fsys, "/proj"))
}

func TestRunEmptyPlanShortCircuits(t *testing.T) {
	fsys := applyFS(t)

	out, err := Run(context.Background(), fsys, Options{
		ProjectDir: "/proj",
		Selections: types.Selections{"pages": {"popup", "options"}},
	}, NewFSExecutor(fsys, false))
	require.NoError(t, err)

	assert.True(t, out.Plan.IsEmpty())
	assert.False(t, out.Result.Changed())
	assert.True(t, testutil.Exists(t, fsys, "/proj/src/ui/options/Options.vue"))
}

func TestRunMissingConfig(t *testing.T) {
	fsys := testutil.NewTemplateFS(t, "/proj", map[string]string{
		"src/main.ts": "export {}\n",
	})

	_, err := Run(context.Background(), fsys, Options{ProjectDir: "/proj"},
		NewFSExecutor(fsys, false))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigNotFound))
}

func TestPrepareBuildsWithoutMutating(t *testing.T) {
	fsys := applyFS(t)
	before := testutil.Snapshot(t, fsys, "/proj")

	cfg, s, p, err := Prepare(fsys, Options{
		ProjectDir: "/proj",
		Selections: types.Selections{"pages": {"popup"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "vue-webext", cfg.Meta.Name)
	assert.NotNil(t, s)
	assert.False(t, p.IsEmpty())
	assert.Equal(t, before, testutil.Snapshot(t, fsys, "/proj"))
}
