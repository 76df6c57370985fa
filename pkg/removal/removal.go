// Package removal plans the deletion of files and directories belonging
// to unselected items. It never touches the filesystem itself; the
// resulting RemovalOps are executed as part of the staged plan.
package removal

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/stencilworks/stencil/pkg/logging"
	"github.com/stencilworks/stencil/pkg/templateconfig"
	"github.com/stencilworks/stencil/pkg/types"
)

// NormalizePattern recovers the literal filesystem path from a config
// pattern. A trailing "/**/*" or "/**/" signals that the author meant
// "delete this directory wholesale"; both suffixes are stripped and
// dirIntent is reported true.
func NormalizePattern(pattern string) (path string, dirIntent bool) {
	switch {
	case strings.HasSuffix(pattern, "/**/*"):
		return strings.TrimSuffix(pattern, "/**/*"), true
	case strings.HasSuffix(pattern, "/**/"):
		return strings.TrimSuffix(pattern, "/**/"), true
	}
	return pattern, false
}

// Plan computes the removal operations for every unselected item, in
// document order, files before directories within each item. Absent paths
// become skipped ops; a file found where the pattern claimed a directory
// becomes a conflict and is left untouched.
func Plan(fsys types.FS, projectDir string, cfg *types.TemplateConfig, sel types.Selections) []types.RemovalOp {
	logger := logging.GetLogger("removal")

	var ops []types.RemovalOp
	for _, li := range templateconfig.UnselectedItems(cfg, sel) {
		patterns := make([]string, 0, len(li.Item.Files)+len(li.Item.Directories))
		patterns = append(patterns, li.Item.Files...)
		patterns = append(patterns, li.Item.Directories...)

		for _, pattern := range patterns {
			op := planOne(fsys, projectDir, li.Layer, li.Item.ID, pattern)
			logger.Debug().
				Str("layer", op.Layer).
				Str("item", op.Item).
				Str("path", op.Path).
				Str("status", string(op.Status)).
				Msg("Planned removal")
			ops = append(ops, op)
		}
	}
	return ops
}

func planOne(fsys types.FS, projectDir, layer, item, pattern string) types.RemovalOp {
	rel, dirIntent := NormalizePattern(pattern)
	path := filepath.Join(projectDir, filepath.FromSlash(rel))

	op := types.RemovalOp{
		Layer:   layer,
		Item:    item,
		Pattern: pattern,
		Path:    path,
	}

	// never delete outside the project tree
	if escaped, err := filepath.Rel(projectDir, path); err != nil || strings.HasPrefix(escaped, "..") {
		op.Status = types.StatusConflict
		op.Reason = "path escapes the project directory"
		return op
	}

	info, err := fsys.Stat(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			op.Status = types.StatusSkipped
			op.Reason = "path does not exist"
			return op
		}
		op.Status = types.StatusConflict
		op.Reason = err.Error()
		return op
	}

	if info.IsDir() {
		// directories are always removable, whatever the pattern claimed
		op.Status = types.StatusReady
		op.Recursive = true
		return op
	}

	if dirIntent {
		// a file where the pattern claimed a directory: likely a naming
		// collision with a template convention elsewhere, leave it alone
		op.Status = types.StatusConflict
		op.Reason = "pattern expects a directory but found a file"
		return op
	}

	op.Status = types.StatusReady
	return op
}
