// Package fonts loads the regular and bold TrueType faces used for form
// appearances and generated sections, and measures text with them.
package fonts

import "errors"

// Sentinel errors for font operations.
var (
	// ErrFontLoad wraps any failure to produce a usable Set.
	ErrFontLoad = errors.New("font load failed")

	// ErrFontMissing indicates a configured font file does not exist.
	ErrFontMissing = errors.New("font file not found")

	// ErrFontParse indicates the bytes are not a usable TrueType font.
	ErrFontParse = errors.New("font parse failed")
)
