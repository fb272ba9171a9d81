package assets

import (
	"errors"
	"fmt"
	"io/fs"
)

// AssetLoader loads stylesheets and layout templates by name. Names carry
// no extension.
type AssetLoader interface {
	LoadStyle(name string) (string, error)
	LoadTemplate(name string) (string, error)
}

// FSLoader reads assets from an fs.FS.
type FSLoader struct {
	fsys   fs.FS
	origin string
}

// NewFSLoader wraps fsys. origin names the tree in error messages.
func NewFSLoader(fsys fs.FS, origin string) *FSLoader {
	return &FSLoader{fsys: fsys, origin: origin}
}

// LoadStyle reads styles/{name}.css.
func (l *FSLoader) LoadStyle(name string) (string, error) {
	return l.load(styleKind, name)
}

// LoadTemplate reads templates/{name}.html.
func (l *FSLoader) LoadTemplate(name string) (string, error) {
	return l.load(layoutKind, name)
}

// Origin describes where the loader reads from.
func (l *FSLoader) Origin() string { return l.origin }

func (l *FSLoader) load(k kind, name string) (string, error) {
	p, err := k.path(name)
	if err != nil {
		return "", err
	}
	data, err := fs.ReadFile(l.fsys, p)
	switch {
	case err == nil:
		return string(data), nil
	case errors.Is(err, fs.ErrNotExist):
		return "", fmt.Errorf("%w: %q in %s", k.notFound, name, l.origin)
	default:
		return "", fmt.Errorf("%w: %s: %v", ErrAssetRead, p, err)
	}
}

var _ AssetLoader = (*FSLoader)(nil)
