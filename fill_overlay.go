package charsheet

import (
	"github.com/alnah/go-charsheet/internal/fonts"
	"github.com/alnah/go-charsheet/internal/pdfform"
	"github.com/alnah/go-charsheet/internal/textfit"
)

// fillOverlay creates one text field per page-0 overlay entry, named after
// its logical key. A value wider than its rectangle is fitted to two lines
// in a field twice as tall that grows downward.
func (f filler) fillOverlay(doc *pdfform.Document, values valueSet, face *fonts.Face) error {
	for _, o := range f.overlay {
		if o.PageIndex != 0 {
			continue
		}
		value, ok := values.text[o.Key]
		if !ok {
			continue
		}

		rect := pdfform.Rect{X: o.X, Y: o.Y, Width: o.Width, Height: o.Height}
		multiline := false
		if textfit.Overflows(value, face, o.FontSize, o.Width) {
			if lines := textfit.Fit(value, face, o.FontSize, o.Width); lines.Split {
				value = lines.String()
				rect.Y -= o.Height
				rect.Height *= 2
				multiline = true
			}
		}

		if err := doc.AddTextField(pdfform.TextFieldSpec{
			Name:      o.Key,
			Page:      0,
			Rect:      rect,
			FontSize:  o.FontSize,
			Align:     o.Align,
			Multiline: multiline,
			Value:     value,
		}); err != nil {
			return err
		}
	}
	return nil
}
