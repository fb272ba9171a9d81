package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"
)

// glyphSpace is the PDF glyph coordinate system: 1000 units per em.
const glyphSpace = 1000

// Glyph is one shaped character: its glyph ID, the rune it came from and its
// advance in 1000-unit glyph space.
type Glyph struct {
	GID     uint16
	Rune    rune
	Advance float64
}

// Metrics describes a face in 1000-unit glyph space, the way a PDF font
// descriptor wants it.
type Metrics struct {
	Ascent    float64
	Descent   float64 // negative, below the baseline
	CapHeight float64
	BBox      [4]float64 // llx lly urx ury
}

// Face is a parsed TrueType font with cached per-rune glyph lookups.
// It is safe for concurrent use.
type Face struct {
	name    string
	data    []byte
	font    *sfnt.Font
	metrics Metrics

	mu     sync.Mutex
	buf    sfnt.Buffer
	glyphs map[rune]Glyph
}

// Parse reads TrueType bytes. The returned face keeps a reference to data.
func Parse(data []byte) (*Face, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFontParse, err)
	}

	face := &Face{
		data:   data,
		font:   f,
		glyphs: make(map[rune]Glyph),
	}

	name, err := f.Name(&face.buf, sfnt.NameIDPostScript)
	if err != nil || name == "" {
		name = "CharsheetSans"
	}
	face.name = name

	ppem := fixed.I(glyphSpace)
	m, err := f.Metrics(&face.buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("%w: metrics: %v", ErrFontParse, err)
	}
	bounds, err := f.Bounds(&face.buf, ppem, font.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("%w: bounds: %v", ErrFontParse, err)
	}

	// sfnt reports y growing downwards.
	face.metrics = Metrics{
		Ascent:    toFloat(m.Ascent),
		Descent:   -toFloat(m.Descent),
		CapHeight: toFloat(m.CapHeight),
		BBox: [4]float64{
			toFloat(bounds.Min.X),
			-toFloat(bounds.Max.Y),
			toFloat(bounds.Max.X),
			-toFloat(bounds.Min.Y),
		},
	}
	if face.metrics.CapHeight == 0 {
		face.metrics.CapHeight = face.metrics.Ascent
	}

	return face, nil
}

// PostScriptName returns the font's PostScript name.
func (f *Face) PostScriptName() string { return f.name }

// Bytes returns the raw TrueType data.
func (f *Face) Bytes() []byte { return f.data }

// Metrics returns the face-wide metrics in glyph space.
func (f *Face) Metrics() Metrics { return f.metrics }

// Glyphs maps s, after NFC normalization, to glyphs. Runes the font does not
// cover map to glyph 0 (.notdef).
func (f *Face) Glyphs(s string) []Glyph {
	s = norm.NFC.String(s)

	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Glyph, 0, len(s))
	for _, r := range s {
		out = append(out, f.glyphLocked(r))
	}
	return out
}

// Width returns the advance width of s in points at the given size.
func (f *Face) Width(s string, size float64) float64 {
	var total float64
	for _, g := range f.Glyphs(s) {
		total += g.Advance
	}
	return total * size / glyphSpace
}

// Covers reports whether every rune of s has a real glyph.
func (f *Face) Covers(s string) bool {
	for _, g := range f.Glyphs(s) {
		if g.GID == 0 {
			return false
		}
	}
	return true
}

func (f *Face) glyphLocked(r rune) Glyph {
	if g, ok := f.glyphs[r]; ok {
		return g
	}

	g := Glyph{Rune: r}
	gid, err := f.font.GlyphIndex(&f.buf, r)
	if err == nil {
		g.GID = uint16(gid)
	}
	adv, err := f.font.GlyphAdvance(&f.buf, sfnt.GlyphIndex(g.GID), fixed.I(glyphSpace), font.HintingNone)
	if err == nil {
		g.Advance = toFloat(adv)
	}

	f.glyphs[r] = g
	return g
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
