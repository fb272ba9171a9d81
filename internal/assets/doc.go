// Package assets provides the stylesheet and HTML layout used to render
// the Features, Spells and Magic Items pages.
//
// Assets are read from a tree shaped like
//
//	styles/{name}.css
//	templates/{name}.html
//
// The built-in tree is embedded in the binary. An AssetResolver can put a
// directory on disk in front of it; a name missing from the directory is
// then served from the built-in tree. Directory reads go through os.Root,
// so neither ".." nor a symlink can reach a file outside the directory.
package assets
