package templateconfig

import (
	"fmt"

	"github.com/stencilworks/stencil/pkg/types"
)

// LayerItem pairs an item with the key of the layer that owns it.
type LayerItem struct {
	Layer string
	Item  *types.Item
}

// DefaultSelections returns the selection implied by the config when the
// user accepts every default: per layer, the IDs of items with
// defaultEnabled true. Every layer is present, possibly with an empty
// list.
func DefaultSelections(cfg *types.TemplateConfig) types.Selections {
	sel := make(types.Selections, len(cfg.Layers))
	for _, layer := range cfg.Layers {
		ids := []string{}
		for _, item := range layer.Items {
			if item.DefaultEnabled {
				ids = append(ids, item.ID)
			}
		}
		sel[layer.Key] = ids
	}
	return sel
}

// Normalize fills missing layers with empty selections and reports
// selection entries that reference nothing in the config. Unknown IDs are
// kept lenient per the engine contract (they select nothing) but are
// surfaced as warnings so caller typos stay visible.
func Normalize(cfg *types.TemplateConfig, sel types.Selections) (types.Selections, []types.Warning) {
	out := make(types.Selections, len(cfg.Layers))
	var warnings []types.Warning

	for _, layer := range cfg.Layers {
		ids := append([]string{}, sel[layer.Key]...)
		for _, id := range ids {
			if layer.Item(id) == nil {
				warnings = append(warnings, types.Warning{
					Stage:   "selections",
					Message: fmt.Sprintf("layer %q has no item %q", layer.Key, id),
				})
			}
		}
		out[layer.Key] = ids
	}

	for key := range sel {
		if cfg.Layer(key) == nil {
			warnings = append(warnings, types.Warning{
				Stage:   "selections",
				Message: fmt.Sprintf("selection references unknown layer %q", key),
			})
		}
	}

	return out, warnings
}

// UnselectedItems returns, in document order, every item the selection
// leaves out. These are the items whose files, manifest keys, and code
// patterns get removed.
func UnselectedItems(cfg *types.TemplateConfig, sel types.Selections) []LayerItem {
	var out []LayerItem
	for i := range cfg.Layers {
		layer := &cfg.Layers[i]
		for j := range layer.Items {
			if !sel.Has(layer.Key, layer.Items[j].ID) {
				out = append(out, LayerItem{Layer: layer.Key, Item: &layer.Items[j]})
			}
		}
	}
	return out
}

// SelectedItems returns, in document order, every item the selection
// keeps.
func SelectedItems(cfg *types.TemplateConfig, sel types.Selections) []LayerItem {
	var out []LayerItem
	for i := range cfg.Layers {
		layer := &cfg.Layers[i]
		for j := range layer.Items {
			if sel.Has(layer.Key, layer.Items[j].ID) {
				out = append(out, LayerItem{Layer: layer.Key, Item: &layer.Items[j]})
			}
		}
	}
	return out
}
