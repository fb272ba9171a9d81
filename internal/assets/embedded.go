package assets

import "embed"

//go:embed styles templates
var builtinFS embed.FS

// NewEmbeddedLoader returns a loader over the assets compiled into the binary.
func NewEmbeddedLoader() *FSLoader {
	return NewFSLoader(builtinFS, "built-in assets")
}
