// Package testutil provides fixture helpers for engine tests: in-memory
// template trees built on the afero filesystem.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stencilworks/stencil/pkg/filesystem"
	"github.com/stencilworks/stencil/pkg/types"
)

// NewTemplateFS creates an in-memory filesystem populated with the given
// files under root. Map keys are slash-separated paths relative to root.
func NewTemplateFS(t *testing.T, root string, files map[string]string) types.FS {
	t.Helper()
	fsys := filesystem.NewMemory()
	WriteTree(t, fsys, root, files)
	return fsys
}

// WriteTree writes files into fsys under root, creating parent
// directories as needed.
func WriteTree(t *testing.T, fsys types.FS, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, fsys.WriteFile(path, []byte(content), 0o644))
	}
}

// Exists reports whether path exists in fsys.
func Exists(t *testing.T, fsys types.FS, path string) bool {
	t.Helper()
	_, err := fsys.Stat(path)
	return err == nil
}

// ReadString reads path from fsys, failing the test on error.
func ReadString(t *testing.T, fsys types.FS, path string) string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// Snapshot walks fsys from root and returns the set of file paths
// (relative, slash-separated). Directories are not listed.
func Snapshot(t *testing.T, fsys types.FS, root string) map[string]bool {
	t.Helper()
	out := make(map[string]bool)
	var walk func(dir string)
	walk = func(dir string) {
		entries, err := fsys.ReadDir(dir)
		if err != nil {
			return
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if entry.IsDir() {
				walk(full)
				continue
			}
			rel, err := filepath.Rel(root, full)
			require.NoError(t, err)
			out[filepath.ToSlash(rel)] = true
		}
	}
	walk(root)
	return out
}
