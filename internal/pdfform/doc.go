// Package pdfform edits PDF interactive forms (AcroForms) in memory.
//
// # Fields
//
// Open walks the AcroForm field tree and exposes every terminal field under
// its fully qualified name (parent names joined with "."). Text fields take
// values through SetText; check boxes through SetCheck, which picks the
// widget's own "on" appearance state. Fields can also be created at literal
// page coordinates with AddTextField.
//
// # Appearances
//
// Values written by this package carry no appearance until UpdateAppearances
// runs. It embeds one TrueType face as a Type0/CIDFontType2 font with
// Identity-H encoding, points every field's default appearance at it and
// regenerates all text-field appearance streams in a single pass. The W array
// and ToUnicode map cover only the glyphs actually drawn.
//
// # Merging
//
// AppendPages copies every page of another PDF, with all objects they reach,
// onto the end of the page tree.
package pdfform
