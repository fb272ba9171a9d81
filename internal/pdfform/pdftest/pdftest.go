// Package pdftest builds small PDF files for tests: blank page runs standing
// in for rendered sections, and form templates with text and check box
// fields.
package pdftest

import (
	"bytes"
	"fmt"
	"testing"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
)

// LabelKey is the page dictionary key holding Template.Label.
const LabelKey pdf.Name = "PdftestLabel"

// TextField describes a text field to place on a template.
type TextField struct {
	Name string
	Page int
	Rect [4]float64 // llx lly urx ury
	DA   string     // empty means "/Helv 0 Tf 0 g"
}

// Template describes a test PDF.
type Template struct {
	Pages      int
	TextFields []TextField
	CheckBoxes []string // placed on page 0; on-state is "Yes"
	// Nested puts every field under a parent field named "form", so full
	// names become "form.<name>".
	Nested bool
	// Label is stored on every page under LabelKey, so a test can tell
	// where a merged page came from.
	Label string
}

// Build writes t as PDF bytes, failing the test on error.
func Build(tb testing.TB, spec Template) []byte {
	tb.Helper()
	b, err := spec.Bytes()
	if err != nil {
		tb.Fatalf("pdftest: %v", err)
	}
	return b
}

// Blank returns a PDF with n empty letter-size pages, each carrying a tiny
// content stream so copied pages have a stream to follow.
func Blank(tb testing.TB, n int) []byte {
	tb.Helper()
	return Build(tb, Template{Pages: n})
}

// Bytes writes the template as PDF bytes.
func (spec Template) Bytes() ([]byte, error) {
	if spec.Pages < 1 {
		spec.Pages = 1
	}

	data := pdf.NewData(pdf.V1_7)
	meta := data.GetMeta()

	pagesRef := data.Alloc()
	pageRefs := make([]pdf.Reference, spec.Pages)
	pages := make([]pdf.Dict, spec.Pages)
	kids := make(pdf.Array, spec.Pages)
	for i := range pageRefs {
		pageRefs[i] = data.Alloc()
		contentRef := data.Alloc()
		content := []byte(fmt.Sprintf("%% page %d\n0 0 m 1 1 l S\n", i+1))
		if err := data.Put(contentRef, &pdf.Stream{
			Dict: pdf.Dict{"Length": pdf.Integer(len(content))},
			R:    bytes.NewReader(content),
		}); err != nil {
			return nil, err
		}
		pages[i] = pdf.Dict{
			"Type":      pdf.Name("Page"),
			"Parent":    pagesRef,
			"Resources": pdf.Dict{},
			"Contents":  contentRef,
		}
		if spec.Label != "" {
			pages[i][LabelKey] = pdf.String(spec.Label)
		}
		kids[i] = pageRefs[i]
	}

	var fields pdf.Array
	var parentRef pdf.Reference
	var parentKids pdf.Array
	if spec.Nested {
		parentRef = data.Alloc()
		fields = append(fields, parentRef)
	}
	addField := func(ref pdf.Reference, dict pdf.Dict, page int) {
		if spec.Nested {
			dict["Parent"] = parentRef
			parentKids = append(parentKids, ref)
		} else {
			fields = append(fields, ref)
		}
		annots, _ := pages[page]["Annots"].(pdf.Array)
		pages[page]["Annots"] = append(annots, ref)
	}

	for _, tf := range spec.TextFields {
		if tf.Page < 0 || tf.Page >= spec.Pages {
			return nil, fmt.Errorf("field %q on missing page %d", tf.Name, tf.Page)
		}
		da := tf.DA
		if da == "" {
			da = "/Helv 0 Tf 0 g"
		}
		ref := data.Alloc()
		dict := pdf.Dict{
			"Type":    pdf.Name("Annot"),
			"Subtype": pdf.Name("Widget"),
			"FT":      pdf.Name("Tx"),
			"T":       pdf.TextString(tf.Name),
			"Rect":    rect(tf.Rect),
			"P":       pageRefs[tf.Page],
			"F":       pdf.Integer(4),
			"DA":      pdf.String(da),
		}
		addField(ref, dict, tf.Page)
		if err := data.Put(ref, dict); err != nil {
			return nil, err
		}
	}

	for i, name := range spec.CheckBoxes {
		onRef, offRef := data.Alloc(), data.Alloc()
		for _, r := range []pdf.Reference{onRef, offRef} {
			body := []byte("q Q\n")
			if err := data.Put(r, &pdf.Stream{
				Dict: pdf.Dict{
					"Type":    pdf.Name("XObject"),
					"Subtype": pdf.Name("Form"),
					"BBox":    pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Integer(10), pdf.Integer(10)},
					"Length":  pdf.Integer(len(body)),
				},
				R: bytes.NewReader(body),
			}); err != nil {
				return nil, err
			}
		}
		ref := data.Alloc()
		y := float64(700 - 12*i)
		dict := pdf.Dict{
			"Type":    pdf.Name("Annot"),
			"Subtype": pdf.Name("Widget"),
			"FT":      pdf.Name("Btn"),
			"T":       pdf.TextString(name),
			"Rect":    rect([4]float64{20, y, 30, y + 10}),
			"P":       pageRefs[0],
			"F":       pdf.Integer(4),
			"V":       pdf.Name("Off"),
			"AS":      pdf.Name("Off"),
			"AP": pdf.Dict{
				"N": pdf.Dict{"Yes": onRef, "Off": offRef},
			},
		}
		addField(ref, dict, 0)
		if err := data.Put(ref, dict); err != nil {
			return nil, err
		}
	}

	if spec.Nested {
		if err := data.Put(parentRef, pdf.Dict{
			"T":    pdf.TextString("form"),
			"Kids": parentKids,
		}); err != nil {
			return nil, err
		}
	}

	for i, ref := range pageRefs {
		if err := data.Put(ref, pages[i]); err != nil {
			return nil, err
		}
	}
	if err := data.Put(pagesRef, pdf.Dict{
		"Type":     pdf.Name("Pages"),
		"Kids":     kids,
		"Count":    pdf.Integer(spec.Pages),
		"MediaBox": rect([4]float64{0, 0, 612, 792}),
	}); err != nil {
		return nil, err
	}
	meta.Catalog.Pages = pagesRef

	if len(fields) > 0 {
		formRef := data.Alloc()
		if err := data.Put(formRef, pdf.Dict{
			"Fields": fields,
			"DA":     pdf.String("/Helv 0 Tf 0 g"),
		}); err != nil {
			return nil, err
		}
		meta.Catalog.AcroForm = formRef
	}

	var buf bytes.Buffer
	if err := data.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func rect(r [4]float64) pdf.Array {
	return pdf.Array{pdf.Real(r[0]), pdf.Real(r[1]), pdf.Real(r[2]), pdf.Real(r[3])}
}

// Labeled returns a PDF with n empty pages carrying label.
func Labeled(tb testing.TB, n int, label string) []byte {
	tb.Helper()
	return Build(tb, Template{Pages: n, Label: label})
}

// PageLabels reads b and returns the label of every page in order. Pages
// without a label yield "".
func PageLabels(tb testing.TB, b []byte) []string {
	tb.Helper()

	data, err := pdf.Read(bytes.NewReader(b), nil)
	if err != nil {
		tb.Fatalf("pdftest: reading PDF: %v", err)
	}
	g := getter{data}
	n, err := pagetree.NumPages(g)
	if err != nil {
		tb.Fatalf("pdftest: page count: %v", err)
	}
	labels := make([]string, n)
	for i := range labels {
		page, err := pagetree.GetPage(g, i)
		if err != nil {
			tb.Fatalf("pdftest: page %d: %v", i, err)
		}
		if s, ok := page[LabelKey].(pdf.String); ok {
			labels[i] = string(s)
		}
	}
	return labels
}

type getter struct {
	d *pdf.Data
}

func (g getter) GetMeta() *pdf.MetaInfo { return g.d.GetMeta() }

func (g getter) Get(ref pdf.Reference) (pdf.Object, error) { return g.d.Get(ref, false) }
