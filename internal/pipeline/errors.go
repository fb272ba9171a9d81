package pipeline

import "errors"

// Sentinel errors for the parse and layout stages.
var (
	// ErrHTMLConversion indicates Markdown to HTML conversion failed.
	ErrHTMLConversion = errors.New("HTML conversion failed")

	// ErrLayout indicates the section layout template failed to parse or render.
	ErrLayout = errors.New("section layout failed")
)
