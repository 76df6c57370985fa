package types

// Selections maps a layer key to the item IDs the user kept in that layer.
// A missing layer key is equivalent to an empty selection for that layer.
type Selections map[string][]string

// Has reports whether the item id is selected within the given layer.
func (s Selections) Has(layerKey, id string) bool {
	for _, selected := range s[layerKey] {
		if selected == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the selections.
func (s Selections) Clone() Selections {
	out := make(Selections, len(s))
	for k, ids := range s {
		out[k] = append([]string(nil), ids...)
	}
	return out
}
