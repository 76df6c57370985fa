package templateconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stencilworks/stencil/pkg/types"
)

func twoLayerConfig() *types.TemplateConfig {
	return &types.TemplateConfig{
		Meta: types.Meta{Name: "demo"},
		Layers: []types.Layer{
			{
				Key: "pages",
				Items: []types.Item{
					{ID: "popup", Name: "Popup", DefaultEnabled: true},
					{ID: "options", Name: "Options", DefaultEnabled: false},
				},
			},
			{
				Key: "features",
				Items: []types.Item{
					{ID: "stateManagement", Name: "Pinia", DefaultEnabled: true},
				},
			},
		},
	}
}

func TestDefaultSelections(t *testing.T) {
	sel := DefaultSelections(twoLayerConfig())

	assert.Equal(t, types.Selections{
		"pages":    {"popup"},
		"features": {"stateManagement"},
	}, sel)
}

func TestNormalizeFillsMissingLayers(t *testing.T) {
	cfg := twoLayerConfig()

	out, warnings := Normalize(cfg, types.Selections{"pages": {"popup"}})
	assert.Empty(t, warnings)
	assert.Equal(t, []string{"popup"}, out["pages"])

	ids, ok := out["features"]
	assert.True(t, ok)
	assert.Empty(t, ids)
}

func TestNormalizeWarnsOnUnknownIDs(t *testing.T) {
	cfg := twoLayerConfig()

	out, warnings := Normalize(cfg, types.Selections{
		"pages":   {"popup", "sidebar"},
		"widgets": {"clock"},
	})

	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0].Message, `no item "sidebar"`)
	assert.Contains(t, warnings[1].Message, `unknown layer "widgets"`)

	// unknown IDs stay in the selection but are inert
	assert.Equal(t, []string{"popup", "sidebar"}, out["pages"])
}

func TestUnselectedItemsDocumentOrder(t *testing.T) {
	cfg := twoLayerConfig()

	unselected := UnselectedItems(cfg, types.Selections{"pages": {"options"}})

	require.Len(t, unselected, 2)
	assert.Equal(t, "pages", unselected[0].Layer)
	assert.Equal(t, "popup", unselected[0].Item.ID)
	assert.Equal(t, "features", unselected[1].Layer)
	assert.Equal(t, "stateManagement", unselected[1].Item.ID)
}

func TestSelectedItems(t *testing.T) {
	cfg := twoLayerConfig()

	selected := SelectedItems(cfg, types.Selections{
		"pages":    {"popup"},
		"features": {"stateManagement"},
	})

	require.Len(t, selected, 2)
	assert.Equal(t, "popup", selected[0].Item.ID)
	assert.Equal(t, "stateManagement", selected[1].Item.ID)
}
