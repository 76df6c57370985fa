package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stencilworks/stencil/pkg/filesystem"
	"github.com/stencilworks/stencil/pkg/templateconfig"
	"github.com/stencilworks/stencil/pkg/types"
	"github.com/stencilworks/stencil/pkg/ui/text"
)

func newInspectCmd() *cobra.Command {
	var (
		format         string
		selectionsFile string
	)

	cmd := &cobra.Command{
		Use:     "inspect [project-dir]",
		Short:   MsgInspectShort,
		Long:    MsgInspectLong,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "core",
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := resolveProjectDir(args)
			if err != nil {
				return err
			}

			cfg, err := templateconfig.Load(filesystem.NewOS(), projectDir)
			if err != nil {
				return err
			}

			if selectionsFile != "" {
				sel, err := parseSelections(nil, selectionsFile)
				if err != nil {
					return err
				}
				_, warnings := templateconfig.Normalize(cfg, sel)
				for _, w := range warnings {
					fmt.Fprintf(os.Stderr, "warning [%s] %s: %s\n", w.Stage, w.Path, w.Message)
				}
			}

			f, err := text.ParseFormat(format)
			if err != nil {
				return err
			}

			switch f {
			case text.FormatJSON:
				return writeJSON(configView(cfg))
			case text.FormatYAML:
				data, err := yaml.Marshal(configView(cfg))
				if err != nil {
					return err
				}
				fmt.Print(string(data))
			default:
				if f == text.FormatAuto {
					f = text.DetectFormat(os.Stdout)
				}
				fmt.Println(text.NewRenderer(f).RenderConfig(cfg))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "auto", "Output format: text, term, json or yaml")
	cmd.Flags().StringVar(&selectionsFile, "selections-file", "",
		"JSON selections file to validate against the configuration")

	return cmd
}

func writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

type itemView struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	DefaultEnabled bool     `json:"defaultEnabled" yaml:"defaultEnabled"`
	Files          []string `json:"files,omitempty" yaml:"files,omitempty"`
	Directories    []string `json:"directories,omitempty" yaml:"directories,omitempty"`
	Dependencies   []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	ManifestKeys   []string `json:"manifestKeys,omitempty" yaml:"manifestKeys,omitempty"`
}

type layerView struct {
	Key   string     `json:"key" yaml:"key"`
	Items []itemView `json:"items" yaml:"items"`
}

type templateView struct {
	Name        string      `json:"name,omitempty" yaml:"name,omitempty"`
	Type        string      `json:"type,omitempty" yaml:"type,omitempty"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Author      string      `json:"author,omitempty" yaml:"author,omitempty"`
	Version     string      `json:"version,omitempty" yaml:"version,omitempty"`
	Layers      []layerView `json:"layers" yaml:"layers"`
}

func configView(cfg *types.TemplateConfig) templateView {
	view := templateView{
		Name:        cfg.Meta.Name,
		Type:        cfg.Meta.Type,
		Description: cfg.Meta.Description,
		Author:      cfg.Meta.Author,
		Version:     cfg.Meta.Version,
	}
	for _, layer := range cfg.Layers {
		lv := layerView{Key: layer.Key}
		for _, item := range layer.Items {
			deps := make([]string, 0, len(item.Dependencies))
			for _, dep := range item.Dependencies {
				deps = append(deps, dep.Name)
			}
			lv.Items = append(lv.Items, itemView{
				ID:             item.ID,
				Name:           item.Name,
				Description:    item.Description,
				DefaultEnabled: item.DefaultEnabled,
				Files:          item.Files,
				Directories:    item.Directories,
				Dependencies:   deps,
				ManifestKeys:   item.ManifestKeys,
			})
		}
		view.Layers = append(view.Layers, lv)
	}
	return view
}
