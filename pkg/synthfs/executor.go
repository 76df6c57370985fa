// Package synthfs executes plans against the real filesystem through a
// synthfs pipeline. Every staged mutation is validated and queued before
// anything runs, so a plan that cannot be expressed never gets halfway
// applied. Recursive directory removals fall outside the pipeline and
// run first.
package synthfs

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"

	"github.com/stencilworks/stencil/pkg/apply"
	"github.com/stencilworks/stencil/pkg/errors"
	stencilfs "github.com/stencilworks/stencil/pkg/filesystem"
	"github.com/stencilworks/stencil/pkg/logging"
	"github.com/stencilworks/stencil/pkg/plan"
	"github.com/stencilworks/stencil/pkg/types"
)

// PipelineExecutor is the OS-backed plan executor used by the CLI.
type PipelineExecutor struct {
	logger    zerolog.Logger
	dryRun    bool
	force     bool
	pipeFS    synthfs.FileSystem
	osFS      types.FS
	journal   *apply.Journal
	retention int
}

// NewPipelineExecutor creates an executor against the real filesystem.
func NewPipelineExecutor(dryRun bool) *PipelineExecutor {
	return &PipelineExecutor{
		logger: logging.GetLogger("synthfs"),
		dryRun: dryRun,
		pipeFS: filesystem.NewOSFileSystem("/"),
		osFS:   stencilfs.NewOS(),
	}
}

// EnableForce makes conflicting removals execute too.
func (e *PipelineExecutor) EnableForce(force bool) *PipelineExecutor {
	e.force = force
	return e
}

// WithJournal enables pre-mutation backups and post-run pruning.
func (e *PipelineExecutor) WithJournal(j *apply.Journal, retention int) *PipelineExecutor {
	e.journal = j
	e.retention = retention
	return e
}

// Execute carries out the plan. File deletes and rewrites run through a
// single synthfs pipeline; recursive directory removals run before it.
func (e *PipelineExecutor) Execute(ctx context.Context, p *plan.Plan) (*apply.Result, error) {
	res := &apply.Result{PlanID: p.ID, DryRun: e.dryRun}
	if e.journal != nil {
		res.BackupDir = e.journal.BackupDir(p.ID)
	}

	var dirs []types.RemovalOp
	var files []types.RemovalOp
	for _, op := range p.Removals {
		switch {
		case op.Status == types.StatusReady && op.Recursive:
			dirs = append(dirs, op)
		case op.Status == types.StatusReady,
			op.Status == types.StatusConflict && e.force:
			files = append(files, op)
		default:
			res.Skipped = append(res.Skipped, op)
		}
	}

	if e.dryRun {
		e.logDryRun(dirs, files, p.Writes)
		for _, op := range append(dirs, files...) {
			res.Removed = append(res.Removed, op.Path)
		}
		for _, w := range p.Writes {
			res.Written = append(res.Written, w.Path)
		}
		return res, nil
	}

	// validate before mutating anything
	for _, op := range append(append([]types.RemovalOp{}, dirs...), files...) {
		if err := validateProjectPath(p.ProjectDir, op.Path); err != nil {
			return res, err
		}
	}
	for _, w := range p.Writes {
		if err := validateProjectPath(p.ProjectDir, w.Path); err != nil {
			return res, err
		}
	}

	if err := e.backup(p, dirs, files); err != nil {
		return res, err
	}

	for _, op := range dirs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		e.logger.Debug().Str("path", op.Path).Msg("Removing directory")
		if err := e.osFS.RemoveAll(op.Path); err != nil {
			return res, errors.Wrapf(err, errors.ErrFileRemove, "removing %s", op.Path)
		}
		res.Removed = append(res.Removed, op.Path)
	}

	pipeline := synthfs.NewMemPipeline()
	count := 0
	for _, op := range files {
		synthOp, err := convertDelete(op.Path)
		if err != nil {
			return res, err
		}
		if err := pipeline.Add(synthOp); err != nil {
			return res, errors.Wrap(err, errors.ErrPlanExecute, "queueing delete")
		}
		count++
	}
	for _, w := range p.Writes {
		synthOp, err := convertWrite(w)
		if err != nil {
			return res, err
		}
		if err := pipeline.Add(synthOp); err != nil {
			return res, errors.Wrap(err, errors.ErrPlanExecute, "queueing write")
		}
		count++
	}

	if count > 0 {
		e.logger.Info().Int("operationCount", count).Msg("Executing pipeline")
		result := synthfs.NewExecutor().Run(ctx, pipeline, e.pipeFS)
		if result.GetError() != nil {
			return res, errors.Wrap(result.GetError(), errors.ErrPlanExecute,
				"executing plan pipeline")
		}
	}

	for _, op := range files {
		res.Removed = append(res.Removed, op.Path)
	}
	for _, w := range p.Writes {
		res.Written = append(res.Written, w.Path)
	}

	if e.journal != nil && e.retention > 0 {
		if err := e.journal.Prune(e.retention); err != nil {
			e.logger.Warn().Err(err).Msg("Journal pruning failed")
		}
	}

	e.logger.Info().
		Str("plan", p.ID).
		Int("removed", len(res.Removed)).
		Int("written", len(res.Written)).
		Msg("Plan executed")

	return res, nil
}

func (e *PipelineExecutor) backup(p *plan.Plan, dirs, files []types.RemovalOp) error {
	if e.journal == nil {
		return nil
	}
	for _, op := range dirs {
		if err := e.journal.BackupTree(p.ID, p.ProjectDir, op.Path); err != nil {
			return errors.Wrapf(err, errors.ErrPlanExecute, "backing up %s", op.Path)
		}
	}
	for _, op := range files {
		if err := e.journal.BackupFile(p.ID, p.ProjectDir, op.Path); err != nil {
			return errors.Wrapf(err, errors.ErrPlanExecute, "backing up %s", op.Path)
		}
	}
	for _, w := range p.Writes {
		if _, err := e.osFS.Stat(w.Path); err != nil {
			continue
		}
		if err := e.journal.BackupFile(p.ID, p.ProjectDir, w.Path); err != nil {
			return errors.Wrapf(err, errors.ErrPlanExecute, "backing up %s", w.Path)
		}
	}
	return nil
}

func (e *PipelineExecutor) logDryRun(dirs, files []types.RemovalOp, writes []types.FileWriteOp) {
	for _, op := range dirs {
		e.logger.Info().Str("path", op.Path).Msg("Would remove directory")
	}
	for _, op := range files {
		e.logger.Info().Str("path", op.Path).Msg("Would remove file")
	}
	for _, w := range writes {
		e.logger.Info().
			Str("path", w.Path).
			Str("kind", string(w.Kind)).
			Int("contentLen", len(w.Content)).
			Msg("Would rewrite file")
	}
}

// validateProjectPath rejects any mutation outside the project tree.
func validateProjectPath(projectDir, path string) error {
	rel, err := filepath.Rel(filepath.Clean(projectDir), filepath.Clean(path))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return errors.Newf(errors.ErrInvalidInput,
			"mutation target is outside the project directory: %s", path)
	}
	return nil
}

func convertDelete(path string) (synthfs.Operation, error) {
	relPath, err := filepath.Rel("/", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "converting path %s", path)
	}
	opID := core.OperationID(fmt.Sprintf("delete-%s", path))
	return synthfs.NewOperationsPackageAdapter(operations.NewDeleteOperation(opID, relPath)), nil
}

func convertWrite(w types.FileWriteOp) (synthfs.Operation, error) {
	relPath, err := filepath.Rel("/", w.Path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "converting path %s", w.Path)
	}
	opID := core.OperationID(fmt.Sprintf("write-%s-%s", w.Kind, w.Path))
	createOp := operations.NewCreateFileOperation(opID, relPath)
	createOp.SetItem(&fileItem{
		path:    relPath,
		content: w.Content,
		mode:    0o644,
	})
	return synthfs.NewOperationsPackageAdapter(createOp), nil
}

// fileItem satisfies the item interface synthfs file operations need.
type fileItem struct {
	path    string
	content []byte
	mode    fs.FileMode
}

func (f *fileItem) Path() string       { return f.path }
func (f *fileItem) Type() string       { return "file" }
func (f *fileItem) Content() []byte    { return f.content }
func (f *fileItem) Mode() fs.FileMode  { return f.mode }
func (f *fileItem) IsDir() bool        { return false }
func (f *fileItem) ModTime() time.Time { return time.Now() }
func (f *fileItem) Size() int64        { return int64(len(f.content)) }
