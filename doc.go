// Package charsheet composes printable character sheets as PDF.
//
// # Quick Start
//
// Build a Composer from a character store, a template and a renderer, then
// generate a sheet:
//
//	backend := charsheet.NewBackend(charsheet.BackendOptions{})
//	defer backend.Close()
//
//	comp, err := charsheet.NewComposer(st, st, charsheet.TemplateFile("sheet.pdf"), backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pdf, err := comp.Generate(ctx, "aric", "user-1", charsheet.PrintConfig{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("aric.pdf", pdf, 0644)
//
// # Composition
//
// Generate runs these stages for one request:
//
//  1. Authorize the caller against the character's owner
//  2. Load the character and the sheet template
//  3. Load the embedded fonts (cached across requests)
//  4. Fill page 0 when CHARACTER is requested
//  5. Render FEATURES, SPELLS and MAGIC_ITEMS as HTML documents, print them
//     with the Renderer and append their pages in that order
//  6. Serialize the document
//
// Page 0 is filled in one of two ways. A template with form fields is
// filled by name through FieldAliasTable (FillTemplate). A template without
// fields receives new fields at the coordinates of the overlay table
// (FillOverlay). Long names are fitted to two lines either way.
//
// A generated section that fails is logged and left out; the rest of the
// document is still returned. Set PrintConfig.StrictSections to fail the
// request instead.
//
// # Browser Requirements
//
// Backend requires Chrome/Chromium. The go-rod library downloads a managed
// Chromium on first run (~/.cache/rod/browser/). Set ROD_BROWSER_BIN to use
// a custom binary, and ROD_NO_SANDBOX=1 in containers and CI.
package charsheet
