package main

import (
	"fmt"
	"os"

	"github.com/stencilworks/stencil/cmd/stencil/commands"
	"github.com/stencilworks/stencil/pkg/ui/text"
)

func main() {
	rootCmd := commands.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		renderer := text.NewRenderer(text.DetectFormat(os.Stderr))
		fmt.Fprintln(os.Stderr, renderer.RenderError(err))
		os.Exit(1)
	}
}
