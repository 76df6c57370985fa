// Package text renders plans, results and template configs for the
// terminal. The styled renderer is used on capable TTYs, the plain one
// everywhere else.
package text

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/stencilworks/stencil/pkg/apply"
	"github.com/stencilworks/stencil/pkg/errors"
	"github.com/stencilworks/stencil/pkg/plan"
	"github.com/stencilworks/stencil/pkg/types"
)

// Renderer turns engine output into user-facing text.
type Renderer interface {
	RenderPlan(p *plan.Plan) string
	RenderResult(res *apply.Result) string
	RenderConfig(cfg *types.TemplateConfig) string
	RenderError(err error) string
}

// NewRenderer picks a renderer for the resolved format.
func NewRenderer(f Format) Renderer {
	if f == FormatTerminal {
		return &TerminalRenderer{}
	}
	return &PlainRenderer{}
}

// TerminalRenderer renders styled output.
type TerminalRenderer struct{}

func (r *TerminalRenderer) RenderPlan(p *plan.Plan) string {
	if p.IsEmpty() && len(p.Warnings) == 0 {
		return MutedStyle.Render("Nothing to do: every selected item is already in place")
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("Plan") + "\n")

	for _, op := range p.Removals {
		switch op.Status {
		case types.StatusReady:
			kind := "remove"
			if op.Recursive {
				kind = "remove dir"
			}
			fmt.Fprintf(&b, "  %s %s %s\n", PendingIndicator, KindStyle.Render(kind), PathStyle.Render(op.Path))
		case types.StatusConflict:
			fmt.Fprintf(&b, "  %s %s %s %s\n", WarningIndicator, KindStyle.Render("conflict"),
				PathStyle.Render(op.Path), MutedStyle.Render(op.Reason))
		default:
			fmt.Fprintf(&b, "  %s %s %s %s\n", InfoIndicator, MutedStyle.Render("skip"),
				PathStyle.Render(op.Path), MutedStyle.Render(op.Reason))
		}
	}

	for _, w := range p.Writes {
		fmt.Fprintf(&b, "  %s %s %s\n", PendingIndicator, KindStyle.Render(string(w.Kind)), PathStyle.Render(w.Path))
	}

	renderWarnings(&b, p.Warnings, WarningIndicator)

	return strings.TrimRight(b.String(), "\n")
}

func (r *TerminalRenderer) RenderResult(res *apply.Result) string {
	var b strings.Builder

	removed, written := "Removed", "Rewrote"
	if res.DryRun {
		removed, written = "Would remove", "Would rewrite"
	}

	for _, path := range res.Removed {
		fmt.Fprintf(&b, "%s %s %s\n", SuccessIndicator, removed, PathStyle.Render(path))
	}
	for _, path := range res.Written {
		fmt.Fprintf(&b, "%s %s %s\n", SuccessIndicator, written, PathStyle.Render(path))
	}
	for _, op := range res.Skipped {
		if op.Status == types.StatusConflict {
			fmt.Fprintf(&b, "%s Skipped %s %s\n", WarningIndicator,
				PathStyle.Render(op.Path), MutedStyle.Render(op.Reason))
		}
	}

	if !res.Changed() {
		b.WriteString(MutedStyle.Render("Nothing to do") + "\n")
	} else if res.BackupDir != "" && !res.DryRun {
		fmt.Fprintf(&b, "%s Backups in %s\n", InfoIndicator, PathStyle.Render(res.BackupDir))
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *TerminalRenderer) RenderConfig(cfg *types.TemplateConfig) string {
	var b strings.Builder

	name := cfg.Meta.Name
	if name == "" {
		name = "(unnamed template)"
	}
	b.WriteString(TitleStyle.Render(name) + "\n")
	if cfg.Meta.Description != "" {
		b.WriteString(MutedStyle.Render(cfg.Meta.Description) + "\n")
	}
	if cfg.Meta.Type != "" {
		fmt.Fprintf(&b, "%s type: %s\n", InfoIndicator, cfg.Meta.Type)
	}

	for _, layer := range cfg.Layers {
		b.WriteString("\n" + TitleStyle.Render(layer.Key) + "\n")
		for i := range layer.Items {
			item := &layer.Items[i]
			marker := InfoIndicator
			if item.DefaultEnabled {
				marker = SuccessIndicator
			}
			fmt.Fprintf(&b, "  %s %s %s\n", marker, KindStyle.Render(item.ID),
				MutedStyle.Render(itemSummary(item)))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		return fmt.Sprintf("%s Error [%s]: %s",
			pterm.Error.Prefix.Text,
			pterm.Error.MessageStyle.Sprint(code),
			err.Error())
	}
	return fmt.Sprintf("%s %s", pterm.Error.Prefix.Text, pterm.Error.MessageStyle.Sprint(err.Error()))
}

// PlainRenderer renders unstyled output for pipes and dumb terminals.
type PlainRenderer struct{}

func (r *PlainRenderer) RenderPlan(p *plan.Plan) string {
	if p.IsEmpty() && len(p.Warnings) == 0 {
		return "Nothing to do: every selected item is already in place"
	}

	var b strings.Builder
	b.WriteString("Plan:\n")

	for _, op := range p.Removals {
		switch op.Status {
		case types.StatusReady:
			kind := "remove"
			if op.Recursive {
				kind = "remove dir"
			}
			fmt.Fprintf(&b, "  %s %s\n", kind, op.Path)
		case types.StatusConflict:
			fmt.Fprintf(&b, "  conflict %s (%s)\n", op.Path, op.Reason)
		default:
			fmt.Fprintf(&b, "  skip %s (%s)\n", op.Path, op.Reason)
		}
	}

	for _, w := range p.Writes {
		fmt.Fprintf(&b, "  %s %s\n", w.Kind, w.Path)
	}

	if len(p.Warnings) > 0 {
		b.WriteString("Warnings:\n")
		for _, warn := range p.Warnings {
			fmt.Fprintf(&b, "  [%s] %s: %s\n", warn.Stage, warn.Path, warn.Message)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *PlainRenderer) RenderResult(res *apply.Result) string {
	var b strings.Builder

	removed, written := "removed", "rewrote"
	if res.DryRun {
		removed, written = "would remove", "would rewrite"
	}

	for _, path := range res.Removed {
		fmt.Fprintf(&b, "%s %s\n", removed, path)
	}
	for _, path := range res.Written {
		fmt.Fprintf(&b, "%s %s\n", written, path)
	}
	for _, op := range res.Skipped {
		if op.Status == types.StatusConflict {
			fmt.Fprintf(&b, "skipped %s (%s)\n", op.Path, op.Reason)
		}
	}

	if !res.Changed() {
		b.WriteString("Nothing to do\n")
	} else if res.BackupDir != "" && !res.DryRun {
		fmt.Fprintf(&b, "backups in %s\n", res.BackupDir)
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *PlainRenderer) RenderConfig(cfg *types.TemplateConfig) string {
	var b strings.Builder

	name := cfg.Meta.Name
	if name == "" {
		name = "(unnamed template)"
	}
	b.WriteString(name + "\n")
	if cfg.Meta.Description != "" {
		b.WriteString(cfg.Meta.Description + "\n")
	}
	if cfg.Meta.Type != "" {
		fmt.Fprintf(&b, "type: %s\n", cfg.Meta.Type)
	}

	for _, layer := range cfg.Layers {
		fmt.Fprintf(&b, "\n%s:\n", layer.Key)
		for i := range layer.Items {
			item := &layer.Items[i]
			marker := " "
			if item.DefaultEnabled {
				marker = "*"
			}
			fmt.Fprintf(&b, "  %s %s %s\n", marker, item.ID, itemSummary(item))
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		return fmt.Sprintf("Error [%s]: %s", code, err.Error())
	}
	return fmt.Sprintf("Error: %s", err.Error())
}

func renderWarnings(b *strings.Builder, warnings []types.Warning, indicator string) {
	if len(warnings) == 0 {
		return
	}
	b.WriteString(WarningStyle.Render("Warnings") + "\n")
	for _, warn := range warnings {
		fmt.Fprintf(b, "  %s [%s] %s: %s\n", indicator, warn.Stage,
			PathStyle.Render(warn.Path), warn.Message)
	}
}

func itemSummary(item *types.Item) string {
	var parts []string
	if item.Name != "" && item.Name != item.ID {
		parts = append(parts, item.Name)
	}
	if n := len(item.Files) + len(item.Directories); n > 0 {
		parts = append(parts, fmt.Sprintf("%d path(s)", n))
	}
	if n := len(item.Dependencies); n > 0 {
		parts = append(parts, fmt.Sprintf("%d dep(s)", n))
	}
	return strings.Join(parts, ", ")
}
