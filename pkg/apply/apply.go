// Package apply orchestrates one stencil run: load the template
// config and settings, build the plan, hand it to an executor, and
// report the outcome.
package apply

import (
	"context"

	"github.com/stencilworks/stencil/pkg/logging"
	"github.com/stencilworks/stencil/pkg/plan"
	"github.com/stencilworks/stencil/pkg/settings"
	"github.com/stencilworks/stencil/pkg/templateconfig"
	"github.com/stencilworks/stencil/pkg/types"
)

// Options configures a run.
type Options struct {
	// ProjectDir is the root of the cloned template.
	ProjectDir string

	// Selections maps layer keys to the item IDs the user kept. Nil
	// means every default-enabled item.
	Selections types.Selections

	DryRun bool
	Force  bool
}

// RunResult bundles everything a caller needs to report on a run.
type RunResult struct {
	Config *types.TemplateConfig
	Plan   *plan.Plan
	Result *Result
}

// Prepare loads the template config and settings and builds the plan
// without executing anything.
func Prepare(fsys types.FS, opts Options) (*types.TemplateConfig, *settings.Settings, *plan.Plan, error) {
	cfg, err := templateconfig.Load(fsys, opts.ProjectDir)
	if err != nil {
		return nil, nil, nil, err
	}

	s, err := settings.Load(opts.ProjectDir)
	if err != nil {
		return nil, nil, nil, err
	}

	sel := opts.Selections
	if sel == nil {
		sel = templateconfig.DefaultSelections(cfg)
	}

	p, err := plan.Build(fsys, opts.ProjectDir, cfg, sel, s)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, s, p, nil
}

// Run builds and executes the plan for opts.
func Run(ctx context.Context, fsys types.FS, opts Options, exec Executor) (*RunResult, error) {
	logger := logging.GetLogger("apply")
	defer logging.LogOperationStart(logger, "apply")()

	cfg, _, p, err := Prepare(fsys, opts)
	if err != nil {
		return nil, err
	}

	if p.IsEmpty() {
		logger.Info().Str("plan", p.ID).Msg("Nothing to do")
		return &RunResult{Config: cfg, Plan: p, Result: &Result{PlanID: p.ID, DryRun: opts.DryRun}}, nil
	}

	res, err := exec.Execute(ctx, p)
	if err != nil {
		return &RunResult{Config: cfg, Plan: p, Result: res}, err
	}
	return &RunResult{Config: cfg, Plan: p, Result: res}, nil
}
