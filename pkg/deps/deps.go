// Package deps reconciles package.json dependencies with the user's
// selection. Removal is closed-world: only names some item somewhere in
// the template config could have wanted are ever touched, so a
// hand-added dependency survives any selection.
package deps

import (
	"github.com/stencilworks/stencil/pkg/errors"
	"github.com/stencilworks/stencil/pkg/jsonobj"
	"github.com/stencilworks/stencil/pkg/logging"
	"github.com/stencilworks/stencil/pkg/templateconfig"
	"github.com/stencilworks/stencil/pkg/types"
)

// PackageJSON is the dependency manifest file name.
const PackageJSON = "package.json"

// Rewrite computes the new package.json content for the given selection.
//
// The required sets are seeded with the core names (always retained),
// extended with every selected item's dependencies. The possible sets
// collect every dependency any item declares, selected or not; a name
// present in possible but absent from required is deleted. Version pins
// on selected items overwrite (or introduce) the manifest entry. Both
// dependency maps are rewritten wholesale with sorted keys.
func Rewrite(data []byte, cfg *types.TemplateConfig, sel types.Selections, core, coreDev []string) ([]byte, error) {
	logger := logging.GetLogger("deps")

	obj, err := jsonobj.Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDepUpdate, "parsing package.json")
	}

	dependencies, err := readDepMap(obj, "dependencies")
	if err != nil {
		return nil, err
	}
	devDependencies, err := readDepMap(obj, "devDependencies")
	if err != nil {
		return nil, err
	}

	required := toSet(core)
	requiredDev := toSet(coreDev)
	pins := map[string]string{}
	pinsDev := map[string]string{}

	for _, li := range templateconfig.SelectedItems(cfg, sel) {
		for _, dep := range li.Item.Dependencies {
			if dep.Dev {
				requiredDev[dep.Name] = true
				if dep.Version != "" {
					pinsDev[dep.Name] = dep.Version
				}
			} else {
				required[dep.Name] = true
				if dep.Version != "" {
					pins[dep.Name] = dep.Version
				}
			}
		}
	}

	possible := map[string]bool{}
	possibleDev := map[string]bool{}
	for _, layer := range cfg.Layers {
		for _, item := range layer.Items {
			for _, dep := range item.Dependencies {
				if dep.Dev {
					possibleDev[dep.Name] = true
				} else {
					possible[dep.Name] = true
				}
			}
		}
	}

	for name := range dependencies {
		if possible[name] && !required[name] {
			logger.Debug().Str("name", name).Msg("Removing unselected dependency")
			delete(dependencies, name)
		}
	}
	for name := range devDependencies {
		if possibleDev[name] && !requiredDev[name] {
			logger.Debug().Str("name", name).Msg("Removing unselected dev dependency")
			delete(devDependencies, name)
		}
	}

	for name, version := range pins {
		dependencies[name] = version
	}
	for name, version := range pinsDev {
		devDependencies[name] = version
	}

	if err := obj.SetValue("dependencies", dependencies); err != nil {
		return nil, errors.Wrap(err, errors.ErrDepUpdate, "encoding dependencies")
	}
	if err := obj.SetValue("devDependencies", devDependencies); err != nil {
		return nil, errors.Wrap(err, errors.ErrDepUpdate, "encoding devDependencies")
	}

	out, err := obj.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrDepUpdate, "serializing package.json")
	}
	return out, nil
}

func readDepMap(obj *jsonobj.Object, key string) (map[string]string, error) {
	m := map[string]string{}
	if !obj.Has(key) {
		return m, nil
	}
	if err := obj.Unmarshal(key, &m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrDepUpdate, "reading %s", key)
	}
	return m, nil
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, name := range names {
		set[name] = true
	}
	return set
}
