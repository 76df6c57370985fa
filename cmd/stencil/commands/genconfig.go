package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stencilworks/stencil/pkg/settings"
)

func newGenConfigCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:     "gen-config [project-dir]",
		Short:   MsgGenConfigShort,
		Long:    MsgGenConfigLong,
		Example: MsgGenConfigExample,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "misc",
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := settings.DefaultTOML()
			if err != nil {
				return err
			}

			if !write {
				fmt.Print(string(content))
				return nil
			}

			projectDir, err := resolveProjectDir(args)
			if err != nil {
				return err
			}
			path := filepath.Join(projectDir, settings.FileName)
			if err := os.WriteFile(path, content, 0o644); err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&write, "write", "w", false, "Write config to the project directory instead of stdout")

	return cmd
}
