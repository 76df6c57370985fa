package types

// ConfigFileName is the template configuration document stencil looks for
// at the root of a cloned template.
const ConfigFileName = "template.config.json"

// ReservedKeys are the top-level keys of template.config.json that hold
// template metadata rather than layers.
var ReservedKeys = map[string]bool{
	"templateName":        true,
	"templateType":        true,
	"templateDescription": true,
	"templateAuthor":      true,
	"version":             true,
}

// Meta holds the reserved scalar fields of a template configuration.
type Meta struct {
	Name        string
	Type        string
	Description string
	Author      string
	Version     string
}

// TemplateConfig is the typed view of template.config.json: fixed metadata
// plus the ordered list of layers. Layer order follows document key order
// so every engine iterates the same way.
type TemplateConfig struct {
	Meta   Meta
	Layers []Layer
}

// Layer finds a layer by key, or nil if the document has no such layer.
func (c *TemplateConfig) Layer(key string) *Layer {
	for i := range c.Layers {
		if c.Layers[i].Key == key {
			return &c.Layers[i]
		}
	}
	return nil
}

// LayerKeys returns layer keys in document order.
func (c *TemplateConfig) LayerKeys() []string {
	keys := make([]string, len(c.Layers))
	for i, l := range c.Layers {
		keys[i] = l.Key
	}
	return keys
}

// Layer is a named category of independently selectable items. Item order
// follows document key order within the layer object.
type Layer struct {
	Key   string
	Items []Item
}

// Item finds an item by ID, or nil if the layer has no such item.
func (l *Layer) Item(id string) *Item {
	for i := range l.Items {
		if l.Items[i].ID == id {
			return &l.Items[i]
		}
	}
	return nil
}

// ItemIDs returns item IDs in document order.
func (l *Layer) ItemIDs() []string {
	ids := make([]string, len(l.Items))
	for i, it := range l.Items {
		ids[i] = it.ID
	}
	return ids
}

// Item is one selectable unit within a layer. When an item is not part of
// the user's selection, its Files and Directories are removed from the
// project tree, its ManifestKeys are stripped from the extension manifest,
// its CodePatterns are pruned from matching sources, and its Dependencies
// become removal candidates for package.json.
type Item struct {
	ID             string        `mapstructure:"-"`
	Name           string        `mapstructure:"name"`
	Description    string        `mapstructure:"description"`
	DefaultEnabled bool          `mapstructure:"defaultEnabled"`
	Files          []string      `mapstructure:"files"`
	Directories    []string      `mapstructure:"directories"`
	Dependencies   []Dependency  `mapstructure:"dependencies"`
	ManifestKeys   []string      `mapstructure:"manifestKeys"`
	CodePatterns   []CodePattern `mapstructure:"codePatterns"`
}

// Dependency declares a package.json dependency owned by an item. The
// (Name, Dev) pair is the identity used for set membership; Version, when
// present on a selected item, overrides whatever version the manifest has.
type Dependency struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
	Dev     bool   `mapstructure:"dev"`
}

// PatternActionKeep marks a code pattern whose matches must be removed
// when the owning item is unselected. Any other action value is a no-op,
// reserved for future write actions.
const PatternActionKeep = "keep"

// CodePattern is a glob+regex rule: File selects sources under the project
// directory, Pattern (Go regexp source) selects the text that belongs to
// the owning item.
type CodePattern struct {
	File    string `mapstructure:"file"`
	Pattern string `mapstructure:"pattern"`
	Action  string `mapstructure:"action"`
}
