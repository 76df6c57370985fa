package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencilworks/stencil/pkg/apply"
	"github.com/stencilworks/stencil/pkg/errors"
	"github.com/stencilworks/stencil/pkg/plan"
	"github.com/stencilworks/stencil/pkg/types"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"", FormatAuto},
		{"auto", FormatAuto},
		{"term", FormatTerminal},
		{"text", FormatText},
		{"plain", FormatText},
		{"json", FormatJSON},
		{"yaml", FormatYAML},
		{"YML", FormatYAML},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestPlainRenderPlan(t *testing.T) {
	p := &plan.Plan{
		ID:         "p1",
		ProjectDir: "/proj",
		Removals: []types.RemovalOp{
			{Path: "/proj/src/ui/options", Recursive: true, Status: types.StatusReady},
			{Path: "/proj/src/ghost.ts", Status: types.StatusSkipped, Reason: "not present"},
			{Path: "/proj/src/oops", Status: types.StatusConflict, Reason: "file where directory expected"},
		},
		Writes: []types.FileWriteOp{
			{Kind: types.WriteDeps, Path: "/proj/package.json"},
		},
		Warnings: []types.Warning{
			{Stage: "manifest", Path: "/proj", Message: "no manifest found to patch"},
		},
	}

	out := (&PlainRenderer{}).RenderPlan(p)

	assert.Contains(t, out, "remove dir /proj/src/ui/options")
	assert.Contains(t, out, "skip /proj/src/ghost.ts (not present)")
	assert.Contains(t, out, "conflict /proj/src/oops (file where directory expected)")
	assert.Contains(t, out, "/proj/package.json")
	assert.Contains(t, out, "[manifest] /proj: no manifest found to patch")
}

func TestPlainRenderEmptyPlan(t *testing.T) {
	out := (&PlainRenderer{}).RenderPlan(&plan.Plan{ID: "p1"})
	assert.Contains(t, out, "Nothing to do")
}

func TestPlainRenderResult(t *testing.T) {
	res := &apply.Result{
		PlanID:    "p1",
		Removed:   []string{"/proj/src/unused.ts"},
		Written:   []string{"/proj/package.json"},
		BackupDir: "/state/journal/p1",
	}

	out := (&PlainRenderer{}).RenderResult(res)

	assert.Contains(t, out, "removed /proj/src/unused.ts")
	assert.Contains(t, out, "rewrote /proj/package.json")
	assert.Contains(t, out, "backups in /state/journal/p1")
}

func TestPlainRenderResultDryRun(t *testing.T) {
	res := &apply.Result{
		PlanID:    "p1",
		DryRun:    true,
		Removed:   []string{"/proj/src/unused.ts"},
		BackupDir: "/state/journal/p1",
	}

	out := (&PlainRenderer{}).RenderResult(res)

	assert.Contains(t, out, "would remove /proj/src/unused.ts")
	assert.NotContains(t, out, "backups in")
}

func TestPlainRenderConfig(t *testing.T) {
	cfg := &types.TemplateConfig{
		Meta: types.Meta{Name: "vue-webext", Type: "browser-extension", Description: "A starter"},
		Layers: []types.Layer{{
			Key: "pages",
			Items: []types.Item{
				{ID: "popup", Name: "Popup", DefaultEnabled: true, Files: []string{"src/ui/popup/**/*"}},
				{ID: "options", Name: "Options", Dependencies: []types.Dependency{{Name: "x"}}},
			},
		}},
	}

	out := (&PlainRenderer{}).RenderConfig(cfg)

	assert.Contains(t, out, "vue-webext")
	assert.Contains(t, out, "A starter")
	assert.Contains(t, out, "type: browser-extension")
	assert.Contains(t, out, "pages:")
	assert.Contains(t, out, "* popup")
	assert.Contains(t, out, "options")
	assert.Contains(t, out, "1 dep(s)")
}

func TestPlainRenderError(t *testing.T) {
	r := &PlainRenderer{}

	assert.Empty(t, r.RenderError(nil))

	err := errors.New(errors.ErrConfigNotFound, "no template.config.json")
	out := r.RenderError(err)
	assert.Contains(t, out, string(errors.ErrConfigNotFound))
	assert.Contains(t, out, "no template.config.json")
}

func TestNewRendererPicksByFormat(t *testing.T) {
	assert.IsType(t, &TerminalRenderer{}, NewRenderer(FormatTerminal))
	assert.IsType(t, &PlainRenderer{}, NewRenderer(FormatText))
	assert.IsType(t, &PlainRenderer{}, NewRenderer(FormatAuto))
}
