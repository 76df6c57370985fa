package commands

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/stencilworks/stencil/pkg/errors"
	"github.com/stencilworks/stencil/pkg/types"
)

// parseSelections resolves the selection flags into one Selections
// map. The file loads first, then --select values override per layer.
// Both empty means nil, which lets the engine fall back to the
// template's defaults.
func parseSelections(selects []string, file string) (types.Selections, error) {
	var sel types.Selections

	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "reading selections file %s", file)
		}
		sel = types.Selections{}
		if err := json.Unmarshal(data, &sel); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "parsing selections file %s", file)
		}
	}

	for _, raw := range selects {
		layer, ids, err := parseSelect(raw)
		if err != nil {
			return nil, err
		}
		if sel == nil {
			sel = types.Selections{}
		}
		sel[layer] = ids
	}

	return sel, nil
}

// parseSelect splits one --select value of the form layer=id1,id2.
// An empty right side ("pages=") deselects the whole layer.
func parseSelect(raw string) (string, []string, error) {
	layer, rest, found := strings.Cut(raw, "=")
	layer = strings.TrimSpace(layer)
	if !found || layer == "" {
		return "", nil, errors.Newf(errors.ErrInvalidInput,
			"invalid --select value %q, expected layer=id1,id2", raw)
	}

	ids := []string{}
	for _, id := range strings.Split(rest, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return layer, ids, nil
}
