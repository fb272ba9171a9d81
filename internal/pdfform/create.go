package pdfform

import (
	"fmt"

	"seehuhn.de/go/pdf"
)

// Rect is a rectangle in default user space, origin bottom-left.
type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) array() pdf.Array {
	return pdf.Array{
		pdf.Real(r.X), pdf.Real(r.Y),
		pdf.Real(r.X + r.Width), pdf.Real(r.Y + r.Height),
	}
}

// TextFieldSpec describes a text field to create.
type TextFieldSpec struct {
	Name      string
	Page      int
	Rect      Rect
	FontSize  float64
	Align     Align
	Multiline bool
	Value     string
}

// AddTextField creates a text field whose dictionary doubles as its widget
// annotation, places it on the given page and registers it in the AcroForm.
func (d *Document) AddTextField(spec TextFieldSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("%w: empty field name", ErrFieldNotFound)
	}
	if d.Has(spec.Name) {
		return fmt.Errorf("%w: %q", ErrFieldExists, spec.Name)
	}

	pageRef, page, err := d.page(spec.Page)
	if err != nil {
		return err
	}
	form, err := d.ensureAcroForm()
	if err != nil {
		return err
	}

	size := spec.FontSize
	if size <= 0 {
		size = defaultFontSize
	}
	ff := 0
	if spec.Multiline {
		ff |= flagMultiline
	}

	ref := d.alloc()
	field := pdf.Dict{
		"Type":    pdf.Name("Annot"),
		"Subtype": pdf.Name("Widget"),
		"FT":      pdf.Name("Tx"),
		"T":       pdf.TextString(spec.Name),
		"Rect":    spec.Rect.array(),
		"P":       pageRef,
		"F":       pdf.Integer(annotFlagPrint),
		"DA":      pdf.String(formatDA("Helv", size)),
		"Q":       pdf.Integer(spec.Align),
		"Ff":      pdf.Integer(ff),
		"V":       pdf.TextString(spec.Value),
	}
	if err := d.put(ref, field); err != nil {
		return err
	}

	annots, _ := pdf.GetArray(d.getter(), page["Annots"])
	annotsRef, indirect := page["Annots"].(pdf.Reference)
	annots = append(annots, ref)
	if indirect {
		if err := d.put(annotsRef, annots); err != nil {
			return err
		}
	} else {
		page["Annots"] = annots
	}
	if err := d.put(pageRef, page); err != nil {
		return err
	}

	fields, _ := pdf.GetArray(d.getter(), form["Fields"])
	fieldsRef, indirect := form["Fields"].(pdf.Reference)
	fields = append(fields, ref)
	if indirect {
		if err := d.put(fieldsRef, fields); err != nil {
			return err
		}
	} else {
		form["Fields"] = fields
	}
	if err := d.saveAcroForm(form); err != nil {
		return err
	}

	d.fields = nil
	return nil
}
