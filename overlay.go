package charsheet

import "github.com/alnah/go-charsheet/internal/pdfform"

// Align is the horizontal alignment of an overlay field.
type Align = pdfform.Align

const (
	AlignLeft   = pdfform.AlignLeft
	AlignCenter = pdfform.AlignCenter
	AlignRight  = pdfform.AlignRight
)

// OverlayField places one logical key at literal coordinates, in points
// with the origin at the page's bottom-left corner.
type OverlayField struct {
	Key       string
	PageIndex int
	X, Y      float64
	Width     float64
	Height    float64
	FontSize  float64
	Align     Align
}

// DefaultOverlayTable matches the bundled blank sheet. Only entries on page
// 0 are synthesized; entries for other pages are ignored.
//
// The table is tied to one template revision and carries no version tag.
var DefaultOverlayTable = []OverlayField{
	{Key: KeyCharacterName, X: 66, Y: 734, Width: 250, Height: 16, FontSize: 12, Align: AlignLeft},
	{Key: KeyClassLevel, X: 66, Y: 710, Width: 250, Height: 12, FontSize: 10, Align: AlignLeft},
	{Key: KeyBackground, X: 66, Y: 692, Width: 250, Height: 12, FontSize: 10, Align: AlignLeft},
	{Key: KeyPlayerName, X: 330, Y: 710, Width: 210, Height: 12, FontSize: 10, Align: AlignLeft},
	{Key: KeyRace, X: 330, Y: 692, Width: 210, Height: 12, FontSize: 10, Align: AlignLeft},
	{Key: KeyAlignment, X: 330, Y: 674, Width: 120, Height: 12, FontSize: 10, Align: AlignLeft},
	{Key: KeyXP, X: 460, Y: 674, Width: 80, Height: 12, FontSize: 10, Align: AlignRight},

	{Key: KeyAC, X: 458, Y: 734, Width: 40, Height: 16, FontSize: 14, Align: AlignCenter},
	{Key: KeyInitiative, X: 505, Y: 734, Width: 40, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: KeySpeed, X: 552, Y: 734, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: KeyHPMax, X: 460, Y: 610, Width: 60, Height: 12, FontSize: 10, Align: AlignCenter},
	{Key: KeyHPCurrent, X: 460, Y: 580, Width: 140, Height: 18, FontSize: 12, Align: AlignCenter},
	{Key: KeyHPTemp, X: 460, Y: 548, Width: 140, Height: 18, FontSize: 12, Align: AlignCenter},
	{Key: KeyProficiencyBonus, X: 92, Y: 628, Width: 40, Height: 16, FontSize: 12, Align: AlignCenter},

	{Key: "stat:STR:score", X: 54, Y: 648, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: "stat:STR:mod", X: 54, Y: 622, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: "stat:DEX:score", X: 54, Y: 586, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: "stat:DEX:mod", X: 54, Y: 560, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: "stat:CON:score", X: 54, Y: 524, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: "stat:CON:mod", X: 54, Y: 498, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: "stat:INT:score", X: 54, Y: 462, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: "stat:INT:mod", X: 54, Y: 436, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: "stat:WIS:score", X: 54, Y: 400, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: "stat:WIS:mod", X: 54, Y: 374, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: "stat:CHA:score", X: 54, Y: 338, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
	{Key: "stat:CHA:mod", X: 54, Y: 312, Width: 50, Height: 16, FontSize: 12, Align: AlignCenter},
}
