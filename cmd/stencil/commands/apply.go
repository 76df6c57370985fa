package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/stencilworks/stencil/pkg/apply"
	"github.com/stencilworks/stencil/pkg/filesystem"
	"github.com/stencilworks/stencil/pkg/synthfs"
	"github.com/stencilworks/stencil/pkg/ui/text"
)

func newApplyCmd() *cobra.Command {
	var (
		selects        []string
		selectionsFile string
		useDefaults    bool
	)

	cmd := &cobra.Command{
		Use:     "apply [project-dir]",
		Short:   MsgApplyShort,
		Long:    MsgApplyLong,
		Example: MsgApplyExample,
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
			if useDefaults {
				sel = nil
			}

			dryRun, _ := cmd.Root().PersistentFlags().GetBool("dry-run")
			force, _ := cmd.Root().PersistentFlags().GetBool("force")

			fsys := filesystem.NewOS()
			_, s, p, err := apply.Prepare(fsys, apply.Options{
				ProjectDir: projectDir,
				Selections: sel,
			})
			if err != nil {
				return err
			}

			for _, w := range p.Warnings {
				fmt.Fprintf(os.Stderr, "warning [%s] %s: %s\n", w.Stage, w.Path, w.Message)
			}

			exec := synthfs.NewPipelineExecutor(dryRun).EnableForce(force)
			if s.Journal.Enabled {
				exec = exec.WithJournal(apply.NewJournal(fsys, apply.DefaultRoot()), s.Journal.Retention)
			}

			// the spinner only shows on an interactive terminal
			var spinner *pterm.SpinnerPrinter
			if !dryRun && text.DetectFormat(os.Stderr) == text.FormatTerminal {
				spinner, _ = pterm.DefaultSpinner.WithWriter(os.Stderr).Start("Applying plan")
			}

			res, err := exec.Execute(cmd.Context(), p)
			if spinner != nil {
				if err != nil {
					spinner.Fail("apply failed")
				} else {
					spinner.Success("plan applied")
				}
			}
			if err != nil {
				return err
			}

			renderer := text.NewRenderer(text.DetectFormat(os.Stdout))
			fmt.Println(renderer.RenderResult(res))
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil,
		"Item selections for one layer, e.g. pages=popup,options (repeatable)")
	cmd.Flags().StringVar(&selectionsFile, "selections-file", "",
		"JSON file mapping layer keys to selected item IDs")
	cmd.Flags().BoolVar(&useDefaults, "defaults", false,
		"Ignore selection flags and keep every default-enabled item")

	return cmd
}

func resolveProjectDir(args []string) (string, error) {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
	}
	return filepath.Abs(dir)
}
