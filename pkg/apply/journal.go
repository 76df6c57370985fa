package apply

import (
	stderrors "errors"
	"io/fs"
	"path/filepath"
	"sort"
	"time"

	"github.com/stencilworks/stencil/pkg/errors"
	"github.com/stencilworks/stencil/pkg/logging"
	"github.com/stencilworks/stencil/pkg/types"
)

// Journal keeps pre-mutation copies of files so an apply can be undone
// by hand. Each plan gets its own directory under the journal root,
// mirroring the project's relative layout.
type Journal struct {
	fsys types.FS
	root string
}

// NewJournal creates a journal rooted at root on fsys.
func NewJournal(fsys types.FS, root string) *Journal {
	return &Journal{fsys: fsys, root: root}
}

// DefaultRoot is where the OS-backed journal lives.
func DefaultRoot() string {
	return filepath.Join(logging.StateDir(), "journal")
}

// BackupDir returns the directory holding backups for one plan.
func (j *Journal) BackupDir(planID string) string {
	return filepath.Join(j.root, planID)
}

// BackupFile copies one project file into the plan's backup directory
// before it is removed or overwritten.
func (j *Journal) BackupFile(planID, projectDir, path string) error {
	rel, err := filepath.Rel(projectDir, path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "resolving %s against %s", path, projectDir)
	}

	content, err := j.fsys.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "reading %s for backup", path)
	}

	dest := filepath.Join(j.BackupDir(planID), rel)
	if err := j.fsys.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "creating backup directory for %s", rel)
	}
	if err := j.fsys.WriteFile(dest, content, 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "writing backup of %s", rel)
	}
	return nil
}

// BackupTree copies every file under dir into the plan's backup
// directory.
func (j *Journal) BackupTree(planID, projectDir, dir string) error {
	entries, err := j.fsys.ReadDir(dir)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "reading %s for backup", dir)
	}
	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := j.BackupTree(planID, projectDir, child); err != nil {
				return err
			}
			continue
		}
		if err := j.BackupFile(planID, projectDir, child); err != nil {
			return err
		}
	}
	return nil
}

// Prune deletes the oldest plan directories until at most keep remain.
func (j *Journal) Prune(keep int) error {
	if keep < 1 {
		keep = 1
	}

	entries, err := j.fsys.ReadDir(j.root)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "reading journal root %s", j.root)
	}

	type aged struct {
		name string
		mod  time.Time
	}
	var dirs []aged
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := j.fsys.Stat(filepath.Join(j.root, entry.Name()))
		if err != nil {
			continue
		}
		dirs = append(dirs, aged{name: entry.Name(), mod: info.ModTime()})
	}

	if len(dirs) <= keep {
		return nil
	}

	sort.Slice(dirs, func(a, b int) bool { return dirs[a].mod.After(dirs[b].mod) })

	logger := logging.GetLogger("apply.journal")
	for _, old := range dirs[keep:] {
		path := filepath.Join(j.root, old.name)
		if err := j.fsys.RemoveAll(path); err != nil {
			logger.Warn().Err(err).Str("path", path).Msg("Failed to prune journal entry")
			continue
		}
		logger.Debug().Str("path", path).Msg("Pruned journal entry")
	}
	return nil
}
