package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stencilworks/stencil/pkg/apply"
	"github.com/stencilworks/stencil/pkg/filesystem"
	"github.com/stencilworks/stencil/pkg/plan"
	"github.com/stencilworks/stencil/pkg/ui/text"
)

func newPlanCmd() *cobra.Command {
	var (
		selects        []string
		selectionsFile string
		format         string
	)

	cmd := &cobra.Command{
		Use:     "plan [project-dir]",
		Short:   MsgPlanShort,
		Long:    MsgPlanLong,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := resolveProjectDir(args)
			if err != nil {
				return err
			}

			sel, err := parseSelections(selects, selectionsFile)
			if err != nil {
				return err
			}

			_, _, p, err := apply.Prepare(filesystem.NewOS(), apply.Options{
				ProjectDir: projectDir,
				Selections: sel,
			})
			if err != nil {
				return err
			}

			f, err := text.ParseFormat(format)
			if err != nil {
				return err
			}

			switch f {
			case text.FormatJSON:
				return writeJSON(planView(p))
			case text.FormatYAML:
				data, err := yaml.Marshal(planView(p))
				if err != nil {
					return err
				}
				fmt.Print(string(data))
				return nil
			default:
				if f == text.FormatAuto {
					f = text.DetectFormat(os.Stdout)
				}
				fmt.Println(text.NewRenderer(f).RenderPlan(p))
				return nil
			}
		},
	}

	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil,
		"Item selections for one layer, e.g. pages=popup,options (repeatable)")
	cmd.Flags().StringVar(&selectionsFile, "selections-file", "",
		"JSON file mapping layer keys to selected item IDs")
	cmd.Flags().StringVar(&format, "format", "auto", "Output format: text, term, json or yaml")

	return cmd
}

type removalView struct {
	Path      string `json:"path" yaml:"path"`
	Recursive bool   `json:"recursive" yaml:"recursive"`
	Status    string `json:"status" yaml:"status"`
	Reason    string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

type writeView struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`
}

type warningView struct {
	Stage   string `json:"stage" yaml:"stage"`
	Path    string `json:"path" yaml:"path"`
	Message string `json:"message" yaml:"message"`
}

type planDoc struct {
	ID       string        `json:"id" yaml:"id"`
	Project  string        `json:"project" yaml:"project"`
	Removals []removalView `json:"removals" yaml:"removals"`
	Writes   []writeView   `json:"writes" yaml:"writes"`
	Warnings []warningView `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func planView(p *plan.Plan) planDoc {
	doc := planDoc{ID: p.ID, Project: p.ProjectDir}
	for _, op := range p.Removals {
		doc.Removals = append(doc.Removals, removalView{
			Path:      op.Path,
			Recursive: op.Recursive,
			Status:    string(op.Status),
			Reason:    op.Reason,
		})
	}
	for _, w := range p.Writes {
		doc.Writes = append(doc.Writes, writeView{Path: w.Path, Kind: string(w.Kind)})
	}
	for _, warn := range p.Warnings {
		doc.Warnings = append(doc.Warnings, warningView{
			Stage: warn.Stage, Path: warn.Path, Message: warn.Message,
		})
	}
	return doc
}
