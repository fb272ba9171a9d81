package assets

import (
	"fmt"
	"strings"
)

// Names of the built-in assets.
const (
	DefaultStyleName    = "sheet"
	SectionTemplateName = "section"
)

// kind is one family of assets: where it lives inside a source tree and
// which error reports a missing entry.
type kind struct {
	dir      string
	ext      string
	notFound error
}

var (
	styleKind  = kind{dir: "styles", ext: ".css", notFound: ErrStyleNotFound}
	layoutKind = kind{dir: "templates", ext: ".html", notFound: ErrTemplateNotFound}
)

// path returns the slash-separated location of name inside a source tree.
func (k kind) path(name string) (string, error) {
	if err := ValidateAssetName(name); err != nil {
		return "", err
	}
	return k.dir + "/" + name + k.ext, nil
}

// ValidateAssetName rejects names that could select a file outside the
// asset's own directory or change its extension.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

var builtin = NewEmbeddedLoader()

// LoadStyle loads a built-in stylesheet by name.
func LoadStyle(name string) (string, error) {
	return builtin.LoadStyle(name)
}

// LoadTemplate loads a built-in layout template by name.
func LoadTemplate(name string) (string, error) {
	return builtin.LoadTemplate(name)
}
