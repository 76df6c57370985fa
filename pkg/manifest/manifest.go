// Package manifest patches the extension manifest of a template: either a
// plain JSON file (manifest.json) or a source-embedded manifest
// (manifest.config.ts and friends), where keys are removed by structural
// token scanning rather than regex surgery.
package manifest

import (
	"path/filepath"
	"strings"

	"github.com/stencilworks/stencil/pkg/errors"
	"github.com/stencilworks/stencil/pkg/jsonobj"
	"github.com/stencilworks/stencil/pkg/types"
)

// Kind says how a found manifest is encoded.
type Kind string

const (
	// KindJSON is a plain JSON manifest file
	KindJSON Kind = "json"
	// KindSource is a manifest embedded in a source file
	KindSource Kind = "source"
)

// Find locates the template's manifest, trying searchOrder entries
// relative to projectDir; the first hit wins. Entries ending in .json are
// plain manifests, anything else is treated as source-embedded. A
// template is assumed to have exactly one manifest representation.
func Find(fsys types.FS, projectDir string, searchOrder []string) (string, Kind, bool) {
	for _, entry := range searchOrder {
		path := filepath.Join(projectDir, filepath.FromSlash(entry))
		info, err := fsys.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry), ".json") {
			return path, KindJSON, true
		}
		return path, KindSource, true
	}
	return "", "", false
}

// Patch removes keys from manifest content of the given kind, returning
// the new content and whether anything changed.
func Patch(data []byte, kind Kind, keys []string) ([]byte, bool, error) {
	switch kind {
	case KindJSON:
		return PatchJSON(data, keys)
	case KindSource:
		out, changed := PatchSource(data, keys)
		return out, changed, nil
	default:
		return nil, false, errors.Newf(errors.ErrManifestPatch, "unknown manifest kind %q", kind)
	}
}

// PatchJSON removes keys from a JSON manifest, preserving the order of
// the remaining properties.
func PatchJSON(data []byte, keys []string) ([]byte, bool, error) {
	obj, err := jsonobj.Parse(data)
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrManifestPatch, "parsing JSON manifest")
	}

	changed := false
	for _, key := range keys {
		if obj.Delete(key) {
			changed = true
		}
	}
	if !changed {
		return data, false, nil
	}

	out, err := obj.Marshal()
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrManifestPatch, "serializing JSON manifest")
	}
	return out, true, nil
}

// PatchSource removes keys from a source-embedded manifest by structural
// scanning: each property and its value are located with brace, bracket,
// string, and comment awareness, removed together with one adjacent
// comma, and a final cleanup pass drops any separator left dangling.
func PatchSource(data []byte, keys []string) ([]byte, bool) {
	out := data
	changed := false
	for _, key := range keys {
		var removed bool
		out, removed = removeProperty(out, key)
		changed = changed || removed
	}
	if changed {
		out = cleanupSeparators(out)
	}
	return out, changed
}
