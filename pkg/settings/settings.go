// Package settings loads stencil's own configuration: built-in defaults
// embedded in the binary, overridden by an optional .stencil.toml in the
// working directory, overridden by STENCIL_* environment variables.
//
// This is distinct from the template configuration (pkg/templateconfig),
// which describes the template being customized.
package settings

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/stencilworks/stencil/pkg/errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// FileName is the per-directory override file.
const FileName = ".stencil.toml"

// EnvPrefix is the prefix for environment overrides, e.g.
// STENCIL_PRUNE_IGNORE_FILE.
const EnvPrefix = "STENCIL_"

// Dependencies configures the dependency resolver.
type Dependencies struct {
	Core    []string `koanf:"core" toml:"core"`
	CoreDev []string `koanf:"core_dev" toml:"core_dev"`
}

// Manifest configures manifest discovery.
type Manifest struct {
	TemplateTypes []string `koanf:"template_types" toml:"template_types"`
	SearchOrder   []string `koanf:"search_order" toml:"search_order"`
}

// Prune configures code pattern glob resolution.
type Prune struct {
	IgnoreFile string   `koanf:"ignore_file" toml:"ignore_file"`
	Exclude    []string `koanf:"exclude" toml:"exclude"`
}

// Journal configures pre-write backups.
type Journal struct {
	Enabled   bool `koanf:"enabled" toml:"enabled"`
	Retention int  `koanf:"retention" toml:"retention"`
}

// Settings is the resolved stencil configuration.
type Settings struct {
	Dependencies Dependencies `koanf:"dependencies" toml:"dependencies"`
	Manifest     Manifest     `koanf:"manifest" toml:"manifest"`
	Prune        Prune        `koanf:"prune" toml:"prune"`
	Journal      Journal      `koanf:"journal" toml:"journal"`
}

// ManifestBearing reports whether templates of the given type carry a
// patchable extension manifest.
func (s *Settings) ManifestBearing(templateType string) bool {
	for _, t := range s.Manifest.TemplateTypes {
		if t == templateType {
			return true
		}
	}
	return false
}

// rawBytesProvider implements a koanf provider for embedded bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Load resolves settings for an invocation rooted at dir.
func Load(dir string) (*Settings, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "loading embedded defaults")
	}

	// 2. Optional .stencil.toml
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrSettingsLoad, "loading %s", path)
		}
	}

	// 3. Environment overrides: STENCIL_PRUNE_IGNORE_FILE → prune.ignore_file
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "loading environment overrides")
	}

	return unmarshal(k)
}

// Default returns the embedded defaults with no overrides applied.
func Default() (*Settings, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "loading embedded defaults")
	}
	return unmarshal(k)
}

// FromMap builds settings from a plain map layered over the embedded
// defaults. Intended for tests.
func FromMap(values map[string]interface{}) (*Settings, error) {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "loading embedded defaults")
	}
	if err := k.Load(confmap.Provider(values, "."), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "loading overrides")
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Settings, error) {
	var s Settings
	conf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &s,
			WeaklyTypedInput: true,
			DecodeHook:       mapstructure.StringToSliceHookFunc(","),
		},
	}
	if err := k.UnmarshalWithConf("", &s, conf); err != nil {
		return nil, errors.Wrap(err, errors.ErrSettingsLoad, "unmarshaling settings")
	}
	return &s, nil
}
