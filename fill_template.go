package charsheet

import (
	"errors"

	"github.com/alnah/go-charsheet/internal/fonts"
	"github.com/alnah/go-charsheet/internal/pdfform"
	"github.com/alnah/go-charsheet/internal/textfit"
)

// fillTemplate writes each value into the first alias the template carries.
// Keys without a matching field, and fields of an unexpected type, are
// skipped.
func (f filler) fillTemplate(doc *pdfform.Document, values valueSet, face *fonts.Face) error {
	for _, key := range values.textKeys() {
		name, ok := f.aliases.Resolve(key, doc.Has)
		if !ok {
			continue
		}
		if err := writeText(doc, name, key, values.text[key], face); err != nil {
			if errors.Is(err, pdfform.ErrFieldType) {
				continue
			}
			return err
		}
	}

	for _, key := range values.checkKeys() {
		name, ok := f.aliases.Resolve(key, doc.Has)
		if !ok {
			continue
		}
		if err := doc.SetCheck(name, values.checks[key]); err != nil {
			if errors.Is(err, pdfform.ErrFieldType) {
				continue
			}
			return err
		}
	}
	return nil
}

func writeText(doc *pdfform.Document, name, key, value string, face *fonts.Face) error {
	if style, ok := fieldStyles[key]; ok {
		if err := doc.SetFontSize(name, style.size); err != nil {
			return err
		}
		if style.multiline {
			if err := doc.SetMultiline(name); err != nil {
				return err
			}
		}
	}

	if spec, ok := overflowFields[key]; ok {
		if err := doc.SetFontSize(name, spec.size); err != nil {
			return err
		}
		lines := textfit.Fit(value, face, spec.size, spec.width)
		if lines.Split {
			if err := doc.SetMultiline(name); err != nil {
				return err
			}
			value = lines.String()
		}
	}

	return doc.SetText(name, value)
}
