package assets

import "errors"

// AssetResolver looks each asset up in an ordered list of loaders. The next
// loader is only tried when the current one reports the asset missing; a
// read or validation error stops the lookup.
type AssetResolver struct {
	loaders []AssetLoader
}

// NewAssetResolver returns a resolver over the built-in assets, preceded by
// basePath when it is not empty.
func NewAssetResolver(basePath string) (*AssetResolver, error) {
	r := &AssetResolver{}
	if basePath != "" {
		dir, err := NewFilesystemLoader(basePath)
		if err != nil {
			return nil, err
		}
		r.loaders = append(r.loaders, dir)
	}
	r.loaders = append(r.loaders, NewEmbeddedLoader())
	return r, nil
}

func (r *AssetResolver) LoadStyle(name string) (string, error) {
	return r.first(AssetLoader.LoadStyle, name)
}

func (r *AssetResolver) LoadTemplate(name string) (string, error) {
	return r.first(AssetLoader.LoadTemplate, name)
}

// Overrides reports whether a directory is consulted before the built-in set.
func (r *AssetResolver) Overrides() bool {
	return len(r.loaders) > 1
}

func (r *AssetResolver) first(load func(AssetLoader, string) (string, error), name string) (string, error) {
	var err error
	for _, l := range r.loaders {
		var content string
		content, err = load(l, name)
		if err == nil {
			return content, nil
		}
		if !errors.Is(err, ErrStyleNotFound) && !errors.Is(err, ErrTemplateNotFound) {
			return "", err
		}
	}
	return "", err
}

var _ AssetLoader = (*AssetResolver)(nil)
