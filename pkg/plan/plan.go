// Package plan computes the full set of intended mutations for one
// stencil invocation as data: removals, manifest edits, code pattern
// prunes, and the dependency rewrite. Building a plan only reads the
// project tree; executing it (pkg/apply, pkg/synthfs) performs the
// writes. A failure while building any one stage degrades to a warning
// so a single malformed template asset never blocks the rest of the
// customization.
package plan

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/stencilworks/stencil/pkg/deps"
	"github.com/stencilworks/stencil/pkg/logging"
	"github.com/stencilworks/stencil/pkg/manifest"
	"github.com/stencilworks/stencil/pkg/prune"
	"github.com/stencilworks/stencil/pkg/removal"
	"github.com/stencilworks/stencil/pkg/settings"
	"github.com/stencilworks/stencil/pkg/templateconfig"
	"github.com/stencilworks/stencil/pkg/types"
)

// Plan is the staged set of mutations for one invocation. Removals are
// executed before writes; within each slice, order follows the config
// document.
type Plan struct {
	ID         string
	ProjectDir string
	Removals   []types.RemovalOp
	Writes     []types.FileWriteOp
	Warnings   []types.Warning
}

// IsEmpty reports whether executing the plan would change nothing.
func (p *Plan) IsEmpty() bool {
	for _, r := range p.Removals {
		if r.Status == types.StatusReady {
			return false
		}
	}
	return len(p.Writes) == 0
}

// ReadyRemovals returns only the removals that will execute.
func (p *Plan) ReadyRemovals() []types.RemovalOp {
	var out []types.RemovalOp
	for _, r := range p.Removals {
		if r.Status == types.StatusReady {
			out = append(out, r)
		}
	}
	return out
}

// Build computes the plan for applying sel to the template in
// projectDir. The filesystem is never written.
func Build(fsys types.FS, projectDir string, cfg *types.TemplateConfig, sel types.Selections, s *settings.Settings) (*Plan, error) {
	logger := logging.GetLogger("plan")
	defer logging.LogOperationStart(logger, "build")()

	normalized, warnings := templateconfig.Normalize(cfg, sel)

	p := &Plan{
		ID:         uuid.NewString(),
		ProjectDir: projectDir,
		Warnings:   warnings,
	}

	// stage 1: removals, decided before anything reads the tree
	p.Removals = removal.Plan(fsys, projectDir, cfg, normalized)

	// pending chains rewrites of the same file across stages
	pending := newPendingWrites(fsys)

	buildManifestStage(fsys, p, pending, cfg, normalized, s)
	buildPruneStage(fsys, p, pending, cfg, normalized, s)
	buildDepsStage(p, pending, cfg, normalized, s)

	p.Writes = pending.writes()
	p.dropWritesUnderRemovals()

	logger.Info().
		Str("plan", p.ID).
		Int("removals", len(p.ReadyRemovals())).
		Int("writes", len(p.Writes)).
		Int("warnings", len(p.Warnings)).
		Msg("Plan built")

	return p, nil
}

func buildManifestStage(fsys types.FS, p *Plan, pending *pendingWrites, cfg *types.TemplateConfig, sel types.Selections, s *settings.Settings) {
	logger := logging.GetLogger("plan.manifest")

	if !s.ManifestBearing(cfg.Meta.Type) {
		logger.Debug().Str("templateType", cfg.Meta.Type).Msg("Template type carries no manifest")
		return
	}

	type keyedItem struct {
		layer, item string
		keys        []string
	}
	var items []keyedItem
	for _, li := range templateconfig.UnselectedItems(cfg, sel) {
		if len(li.Item.ManifestKeys) > 0 {
			items = append(items, keyedItem{li.Layer, li.Item.ID, li.Item.ManifestKeys})
		}
	}
	if len(items) == 0 {
		return
	}

	path, kind, ok := manifest.Find(fsys, p.ProjectDir, s.Manifest.SearchOrder)
	if !ok {
		p.warn("manifest", p.ProjectDir, "no manifest found to patch")
		return
	}

	content, err := pending.read(path)
	if err != nil {
		p.warn("manifest", path, fmt.Sprintf("reading manifest: %v", err))
		return
	}

	for _, ki := range items {
		patched, changed, err := manifest.Patch(content, kind, ki.keys)
		if err != nil {
			// abandon patching this manifest, later stages still run
			p.warn("manifest", path, fmt.Sprintf("patching for item %q: %v", ki.item, err))
			return
		}
		if changed {
			content = patched
			pending.stage(types.FileWriteOp{
				Kind: types.WriteManifest, Layer: ki.layer, Item: ki.item,
				Path: path, Content: content,
			})
		}
	}
}

func buildPruneStage(fsys types.FS, p *Plan, pending *pendingWrites, cfg *types.TemplateConfig, sel types.Selections, s *settings.Settings) {
	logger := logging.GetLogger("plan.prune")

	excludes := append([]string{}, s.Prune.Exclude...)
	excludes = append(excludes, prune.LoadIgnore(fsys, p.ProjectDir, s.Prune.IgnoreFile)...)

	for _, li := range templateconfig.UnselectedItems(cfg, sel) {
		for _, cp := range li.Item.CodePatterns {
			if cp.Action != types.PatternActionKeep {
				logger.Debug().
					Str("action", cp.Action).
					Str("item", li.Item.ID).
					Msg("Ignoring code pattern with reserved action")
				continue
			}

			re, err := regexp.Compile(cp.Pattern)
			if err != nil {
				p.warn("prune", cp.File, fmt.Sprintf("item %q: compiling pattern: %v", li.Item.ID, err))
				continue
			}

			files, err := prune.Glob(fsys, p.ProjectDir, cp.File, excludes)
			if err != nil {
				p.warn("prune", cp.File, fmt.Sprintf("item %q: %v", li.Item.ID, err))
				continue
			}

			for _, file := range files {
				content, err := pending.read(file)
				if err != nil {
					p.warn("prune", file, fmt.Sprintf("reading: %v", err))
					continue
				}
				stripped, changed := prune.Strip(content, re)
				if !changed {
					continue
				}
				pending.stage(types.FileWriteOp{
					Kind: types.WritePrune, Layer: li.Layer, Item: li.Item.ID,
					Path: file, Content: stripped,
				})
			}
		}
	}
}

func buildDepsStage(p *Plan, pending *pendingWrites, cfg *types.TemplateConfig, sel types.Selections, s *settings.Settings) {
	logger := logging.GetLogger("plan.deps")

	path := filepath.Join(p.ProjectDir, deps.PackageJSON)
	content, err := pending.read(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			logger.Debug().Msg("No package.json, skipping dependency resolution")
			return
		}
		p.warn("deps", path, fmt.Sprintf("reading: %v", err))
		return
	}

	rewritten, err := deps.Rewrite(content, cfg, sel, s.Dependencies.Core, s.Dependencies.CoreDev)
	if err != nil {
		p.warn("deps", path, err.Error())
		return
	}
	if string(rewritten) == string(content) {
		return
	}
	pending.stage(types.FileWriteOp{Kind: types.WriteDeps, Path: path, Content: rewritten})
}

// dropWritesUnderRemovals discards planned writes whose target a ready
// removal will delete anyway; executing them would resurrect the file.
func (p *Plan) dropWritesUnderRemovals() {
	ready := p.ReadyRemovals()
	kept := p.Writes[:0]
	for _, w := range p.Writes {
		covered := false
		for _, r := range ready {
			if w.Path == r.Path || (r.Recursive && strings.HasPrefix(w.Path, r.Path+string(filepath.Separator))) {
				covered = true
				break
			}
		}
		if covered {
			continue
		}
		kept = append(kept, w)
	}
	p.Writes = kept
}

func (p *Plan) warn(stage, path, message string) {
	logger := logging.GetLogger("plan." + stage)
	logger.Warn().Str("path", path).Msg(message)
	p.Warnings = append(p.Warnings, types.Warning{Stage: stage, Path: path, Message: message})
}

// pendingWrites tracks the newest staged content per path so that later
// stages operate on earlier stages' output. One final write per path
// survives, in first-touch order.
type pendingWrites struct {
	fsys   types.FS
	order  []string
	staged map[string]types.FileWriteOp
}

func newPendingWrites(fsys types.FS) *pendingWrites {
	return &pendingWrites{fsys: fsys, staged: map[string]types.FileWriteOp{}}
}

func (pw *pendingWrites) read(path string) ([]byte, error) {
	if op, ok := pw.staged[path]; ok {
		return op.Content, nil
	}
	return pw.fsys.ReadFile(path)
}

func (pw *pendingWrites) stage(op types.FileWriteOp) {
	if _, ok := pw.staged[op.Path]; !ok {
		pw.order = append(pw.order, op.Path)
	}
	pw.staged[op.Path] = op
}

func (pw *pendingWrites) writes() []types.FileWriteOp {
	out := make([]types.FileWriteOp, 0, len(pw.order))
	for _, path := range pw.order {
		out = append(out, pw.staged[path])
	}
	return out
}
