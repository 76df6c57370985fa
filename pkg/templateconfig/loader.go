package templateconfig

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"regexp"

	"github.com/go-viper/mapstructure/v2"
	"github.com/stencilworks/stencil/pkg/errors"
	"github.com/stencilworks/stencil/pkg/jsonobj"
	"github.com/stencilworks/stencil/pkg/logging"
	"github.com/stencilworks/stencil/pkg/types"
)

// Load reads template.config.json from dir and decodes it into the typed
// document model. Layer and item order follow document key order.
//
// Every top-level key whose value is a JSON object and that is not one of
// the reserved metadata keys becomes a layer; other values are skipped
// with a debug log. The whole document is validated on load: items need a
// name, dependencies need a name, and code pattern regexes must compile.
func Load(fsys types.FS, dir string) (*types.TemplateConfig, error) {
	logger := logging.GetLogger("templateconfig")
	path := filepath.Join(dir, types.ConfigFileName)

	data, err := fsys.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.Newf(errors.ErrConfigNotFound,
				"no %s found in %s", types.ConfigFileName, dir).
				WithDetail("dir", dir)
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess,
			"reading %s", path)
	}

	doc, err := jsonobj.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse,
			"parsing %s", path)
	}

	cfg := &types.TemplateConfig{}
	for _, key := range doc.Keys() {
		raw, _ := doc.Get(key)

		if types.ReservedKeys[key] {
			if err := setMetaField(&cfg.Meta, key, raw); err != nil {
				return nil, err
			}
			continue
		}

		if !isObject(raw) {
			logger.Debug().Str("key", key).Msg("Skipping non-object top-level key")
			continue
		}

		layer, err := decodeLayer(key, raw)
		if err != nil {
			return nil, err
		}
		cfg.Layers = append(cfg.Layers, *layer)
	}

	logger.Debug().
		Str("template", cfg.Meta.Name).
		Strs("layers", cfg.LayerKeys()).
		Msg("Template configuration loaded")

	return cfg, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}

func setMetaField(meta *types.Meta, key string, raw json.RawMessage) error {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return errors.Wrapf(err, errors.ErrConfigInvalid,
			"metadata field %q must be a string", key)
	}
	switch key {
	case "templateName":
		meta.Name = value
	case "templateType":
		meta.Type = value
	case "templateDescription":
		meta.Description = value
	case "templateAuthor":
		meta.Author = value
	case "version":
		meta.Version = value
	}
	return nil
}

func decodeLayer(key string, raw json.RawMessage) (*types.Layer, error) {
	layerDoc, err := jsonobj.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse,
			"parsing layer %q", key)
	}

	layer := &types.Layer{Key: key}
	for _, id := range layerDoc.Keys() {
		var fields map[string]interface{}
		if err := layerDoc.Unmarshal(id, &fields); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigInvalid,
				"item %q in layer %q is not an object", id, key)
		}

		item, err := decodeItem(key, id, fields)
		if err != nil {
			return nil, err
		}
		layer.Items = append(layer.Items, *item)
	}
	return layer, nil
}

func decodeItem(layerKey, id string, fields map[string]interface{}) (*types.Item, error) {
	// defaultEnabled defaults to true; mapstructure leaves absent fields
	// untouched so the zero-input decode keeps it
	item := &types.Item{ID: id, DefaultEnabled: true}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           item,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "building item decoder")
	}
	if err := decoder.Decode(fields); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigInvalid,
			"decoding item %q in layer %q", id, layerKey)
	}

	if err := validateItem(layerKey, item); err != nil {
		return nil, err
	}
	return item, nil
}

func validateItem(layerKey string, item *types.Item) error {
	if item.Name == "" {
		return errors.Newf(errors.ErrConfigInvalid,
			"item %q in layer %q has no name", item.ID, layerKey)
	}
	for _, dep := range item.Dependencies {
		if dep.Name == "" {
			return errors.Newf(errors.ErrConfigInvalid,
				"item %q in layer %q declares a dependency without a name", item.ID, layerKey)
		}
	}
	for _, cp := range item.CodePatterns {
		if cp.File == "" || cp.Pattern == "" {
			return errors.Newf(errors.ErrConfigInvalid,
				"item %q in layer %q has a code pattern without file or pattern", item.ID, layerKey)
		}
		if _, err := regexp.Compile(cp.Pattern); err != nil {
			return errors.Wrapf(err, errors.ErrConfigInvalid,
				"item %q in layer %q: code pattern does not compile", item.ID, layerKey).
				WithDetail("pattern", cp.Pattern)
		}
	}
	return nil
}
