package settings

import (
	"bytes"

	gotoml "github.com/pelletier/go-toml/v2"

	"github.com/stencilworks/stencil/pkg/errors"
)

const generatedHeader = `# stencil configuration
# Generated by "stencil genconfig". Every value below matches the
# built-in default; delete what you do not change.

`

// DefaultTOML renders the effective default settings as a commented
// .stencil.toml document.
func DefaultTOML() ([]byte, error) {
	s, err := Default()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(generatedHeader)

	enc := gotoml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(s); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "encoding default settings")
	}

	return buf.Bytes(), nil
}
