// Package pipeline turns section records into printable HTML documents.
//
// It covers the first two stages of section rendering:
//   - Parse: Markdown descriptions to sanitized HTML fragments via Goldmark
//   - Lay out: grouped blocks to one self-contained HTML document
//
// Rasterizing the document to PDF is left to the headless browser backend in
// the root charsheet package, so everything here can be tested without a
// browser.
package pipeline
