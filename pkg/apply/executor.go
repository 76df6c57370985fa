package apply

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/stencilworks/stencil/pkg/errors"
	"github.com/stencilworks/stencil/pkg/logging"
	"github.com/stencilworks/stencil/pkg/plan"
	"github.com/stencilworks/stencil/pkg/types"
)

// Executor carries out a built plan. Implementations must execute
// removals before writes.
type Executor interface {
	Execute(ctx context.Context, p *plan.Plan) (*Result, error)
}

// Result reports what an executor did (or, in dry-run mode, would do).
type Result struct {
	PlanID    string
	DryRun    bool
	Removed   []string
	Written   []string
	Skipped   []types.RemovalOp
	BackupDir string
}

// Changed reports whether anything was (or would be) mutated.
func (r *Result) Changed() bool {
	return len(r.Removed) > 0 || len(r.Written) > 0
}

// FSExecutor executes a plan directly through a types.FS. It backs
// every mutated file up to the journal first, so a failed apply can be
// recovered from by hand.
type FSExecutor struct {
	fsys      types.FS
	logger    zerolog.Logger
	dryRun    bool
	force     bool
	journal   *Journal
	retention int
}

// NewFSExecutor creates an executor over fsys.
func NewFSExecutor(fsys types.FS, dryRun bool) *FSExecutor {
	return &FSExecutor{
		fsys:   fsys,
		logger: logging.GetLogger("apply.executor"),
		dryRun: dryRun,
	}
}

// EnableForce makes the executor carry out conflicting removals too: a
// pattern that named a directory but matched a file removes the file.
func (e *FSExecutor) EnableForce(force bool) *FSExecutor {
	e.force = force
	return e
}

// WithJournal enables pre-mutation backups. After a successful run the
// journal is pruned down to retention entries.
func (e *FSExecutor) WithJournal(j *Journal, retention int) *FSExecutor {
	e.journal = j
	e.retention = retention
	return e
}

// Execute runs the plan: removals first, then file writes. The first
// failure aborts; everything already mutated has a journal backup.
func (e *FSExecutor) Execute(ctx context.Context, p *plan.Plan) (*Result, error) {
	res := &Result{PlanID: p.ID, DryRun: e.dryRun}
	if e.journal != nil {
		res.BackupDir = e.journal.BackupDir(p.ID)
	}

	for _, op := range p.Removals {
		if !e.shouldRemove(p.ProjectDir, op) {
			res.Skipped = append(res.Skipped, op)
			continue
		}
		if e.dryRun {
			e.logger.Info().Str("path", op.Path).Bool("recursive", op.Recursive).Msg("Would remove")
			res.Removed = append(res.Removed, op.Path)
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := e.remove(p, op); err != nil {
			return res, err
		}
		res.Removed = append(res.Removed, op.Path)
	}

	for _, w := range p.Writes {
		if e.dryRun {
			e.logger.Info().Str("path", w.Path).Str("kind", string(w.Kind)).Msg("Would rewrite")
			res.Written = append(res.Written, w.Path)
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if err := e.write(p, w); err != nil {
			return res, err
		}
		res.Written = append(res.Written, w.Path)
	}

	if !e.dryRun && e.journal != nil && e.retention > 0 {
		if err := e.journal.Prune(e.retention); err != nil {
			e.logger.Warn().Err(err).Msg("Journal pruning failed")
		}
	}

	e.logger.Info().
		Str("plan", p.ID).
		Bool("dryRun", e.dryRun).
		Int("removed", len(res.Removed)).
		Int("written", len(res.Written)).
		Msg("Plan executed")

	return res, nil
}

func (e *FSExecutor) shouldRemove(projectDir string, op types.RemovalOp) bool {
	switch op.Status {
	case types.StatusReady:
		return true
	case types.StatusConflict:
		// force never reaches outside the project tree
		return e.force && withinProject(projectDir, op.Path)
	default:
		return false
	}
}

// withinProject reports whether path resolves strictly inside projectDir.
func withinProject(projectDir, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(projectDir), filepath.Clean(path))
	if err != nil || rel == "." || rel == ".." {
		return false
	}
	return !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (e *FSExecutor) remove(p *plan.Plan, op types.RemovalOp) error {
	if e.journal != nil {
		var err error
		if op.Recursive {
			err = e.journal.BackupTree(p.ID, p.ProjectDir, op.Path)
		} else {
			err = e.journal.BackupFile(p.ID, p.ProjectDir, op.Path)
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrPlanExecute, "backing up %s", op.Path)
		}
	}

	e.logger.Debug().Str("path", op.Path).Bool("recursive", op.Recursive).Msg("Removing")
	if op.Recursive {
		if err := e.fsys.RemoveAll(op.Path); err != nil {
			return errors.Wrapf(err, errors.ErrFileRemove, "removing %s", op.Path)
		}
		return nil
	}
	if err := e.fsys.Remove(op.Path); err != nil {
		return errors.Wrapf(err, errors.ErrFileRemove, "removing %s", op.Path)
	}
	return nil
}

func (e *FSExecutor) write(p *plan.Plan, w types.FileWriteOp) error {
	if e.journal != nil {
		if _, err := e.fsys.Stat(w.Path); err == nil {
			if err := e.journal.BackupFile(p.ID, p.ProjectDir, w.Path); err != nil {
				return errors.Wrapf(err, errors.ErrPlanExecute, "backing up %s", w.Path)
			}
		}
	}

	e.logger.Debug().Str("path", w.Path).Str("kind", string(w.Kind)).Msg("Rewriting")
	if err := e.fsys.WriteFile(w.Path, w.Content, 0o644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "writing %s", w.Path)
	}
	return nil
}
