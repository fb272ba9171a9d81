package charsheet

import (
	"fmt"

	"github.com/alnah/go-charsheet/internal/fonts"
	"github.com/alnah/go-charsheet/internal/pdfform"
)

// FillStrategy selects how page 0 receives its values. It is chosen once
// per request by probing the template's form.
type FillStrategy int

const (
	// FillTemplate writes into the template's own named fields.
	FillTemplate FillStrategy = iota + 1
	// FillOverlay creates fields at the coordinates of the overlay table.
	FillOverlay
)

func (s FillStrategy) String() string {
	switch s {
	case FillTemplate:
		return "template"
	case FillOverlay:
		return "overlay"
	default:
		return fmt.Sprintf("FillStrategy(%d)", int(s))
	}
}

// chooseStrategy picks FillTemplate when the form has at least one field.
func chooseStrategy(doc *pdfform.Document) (FillStrategy, error) {
	n, err := doc.FieldCount()
	if err != nil {
		return 0, fmt.Errorf("%w: probing form fields: %v", ErrInvalidTemplate, err)
	}
	if n > 0 {
		return FillTemplate, nil
	}
	return FillOverlay, nil
}

// filler holds the tables both strategies read.
type filler struct {
	aliases FieldAliasTable
	overlay []OverlayField
}

// fill writes values onto page 0 of doc with strategy s and regenerates
// appearances once with face.
func (f filler) fill(s FillStrategy, doc *pdfform.Document, values valueSet, face *fonts.Face) error {
	var err error
	switch s {
	case FillTemplate:
		err = f.fillTemplate(doc, values, face)
	case FillOverlay:
		err = f.fillOverlay(doc, values, face)
	default:
		err = fmt.Errorf("unknown fill strategy %v", s)
	}
	if err != nil {
		return fmt.Errorf("%w: %s strategy: %v", ErrFill, s, err)
	}
	if err := doc.UpdateAppearances(face); err != nil {
		return fmt.Errorf("%w: appearances: %v", ErrFill, err)
	}
	return nil
}
