package pdfform

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"

	"seehuhn.de/go/pdf"

	"github.com/alnah/go-charsheet/internal/fonts"
)

// fontResource is the resource name the embedded face gets in /DR and in
// every appearance stream.
const fontResource pdf.Name = "CSF0"

// embeddedFont tracks one Type0 font and the glyphs drawn with it.
type embeddedFont struct {
	face *fonts.Face

	type0, cid, descriptor, file, toUnicode pdf.Reference

	used map[uint16]fonts.Glyph
}

func (d *Document) embed(face *fonts.Face) *embeddedFont {
	if d.font != nil && d.font.face == face {
		return d.font
	}
	d.font = &embeddedFont{
		face:       face,
		type0:      d.alloc(),
		cid:        d.alloc(),
		descriptor: d.alloc(),
		file:       d.alloc(),
		toUnicode:  d.alloc(),
		used:       map[uint16]fonts.Glyph{},
	}
	return d.font
}

// encode turns s into an Identity-H hex string and records the glyphs.
// The returned width is in 1000-unit glyph space.
func (e *embeddedFont) encode(s string) (string, float64) {
	var b strings.Builder
	var width float64
	b.WriteByte('<')
	for _, g := range e.face.Glyphs(s) {
		fmt.Fprintf(&b, "%04X", g.GID)
		width += g.Advance
		if _, seen := e.used[g.GID]; !seen {
			e.used[g.GID] = g
		}
	}
	b.WriteByte('>')
	return b.String(), width
}

// write stores the font dictionaries. It is called after all appearance
// streams are built so W and ToUnicode cover every drawn glyph.
func (d *Document) writeFont(e *embeddedFont) error {
	face := e.face
	m := face.Metrics()
	base := pdf.Name(face.PostScriptName())

	var packed bytes.Buffer
	zw := zlib.NewWriter(&packed)
	if _, err := zw.Write(face.Bytes()); err != nil {
		return fmt.Errorf("compressing font: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing font: %w", err)
	}
	file := &pdf.Stream{
		Dict: pdf.Dict{
			"Filter":  pdf.Name("FlateDecode"),
			"Length":  pdf.Integer(packed.Len()),
			"Length1": pdf.Integer(len(face.Bytes())),
		},
		R: bytes.NewReader(packed.Bytes()),
	}

	descriptor := pdf.Dict{
		"Type":     pdf.Name("FontDescriptor"),
		"FontName": base,
		"Flags":    pdf.Integer(32),
		"FontBBox": pdf.Array{
			pdf.Integer(int64(m.BBox[0])), pdf.Integer(int64(m.BBox[1])),
			pdf.Integer(int64(m.BBox[2])), pdf.Integer(int64(m.BBox[3])),
		},
		"ItalicAngle": pdf.Integer(0),
		"Ascent":      pdf.Integer(int64(m.Ascent)),
		"Descent":     pdf.Integer(int64(m.Descent)),
		"CapHeight":   pdf.Integer(int64(m.CapHeight)),
		"StemV":       pdf.Integer(80),
		"FontFile2":   e.file,
	}

	cid := pdf.Dict{
		"Type":     pdf.Name("Font"),
		"Subtype":  pdf.Name("CIDFontType2"),
		"BaseFont": base,
		"CIDSystemInfo": pdf.Dict{
			"Registry":   pdf.String("Adobe"),
			"Ordering":   pdf.String("Identity"),
			"Supplement": pdf.Integer(0),
		},
		"FontDescriptor": e.descriptor,
		"DW":             pdf.Integer(1000),
		"W":              e.widths(),
		"CIDToGIDMap":    pdf.Name("Identity"),
	}

	cmap := e.cmap()
	toUnicode := &pdf.Stream{
		Dict: pdf.Dict{"Length": pdf.Integer(len(cmap))},
		R:    bytes.NewReader(cmap),
	}

	type0 := pdf.Dict{
		"Type":            pdf.Name("Font"),
		"Subtype":         pdf.Name("Type0"),
		"BaseFont":        base,
		"Encoding":        pdf.Name("Identity-H"),
		"DescendantFonts": pdf.Array{e.cid},
		"ToUnicode":       e.toUnicode,
	}

	for _, obj := range []struct {
		ref pdf.Reference
		val pdf.Object
	}{
		{e.file, file},
		{e.descriptor, descriptor},
		{e.cid, cid},
		{e.toUnicode, toUnicode},
		{e.type0, type0},
	} {
		if err := d.put(obj.ref, obj.val); err != nil {
			return err
		}
	}
	return nil
}

func (e *embeddedFont) sortedGIDs() []uint16 {
	gids := make([]uint16, 0, len(e.used))
	for gid := range e.used {
		gids = append(gids, gid)
	}
	sort.Slice(gids, func(i, j int) bool { return gids[i] < gids[j] })
	return gids
}

// widths builds a W array, grouping consecutive glyph IDs.
func (e *embeddedFont) widths() pdf.Array {
	var w pdf.Array
	var run pdf.Array
	var start, prev uint16
	flush := func() {
		if len(run) > 0 {
			w = append(w, pdf.Integer(start), run)
		}
	}
	for i, gid := range e.sortedGIDs() {
		adv := pdf.Integer(int64(e.used[gid].Advance + 0.5))
		if i == 0 || gid != prev+1 {
			flush()
			start, run = gid, pdf.Array{}
		}
		run = append(run, adv)
		prev = gid
	}
	flush()
	return w
}

func (e *embeddedFont) cmap() []byte {
	var b bytes.Buffer
	b.WriteString("/CIDInit /ProcSet findresource begin\n12 dict begin\nbegincmap\n")
	b.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n")
	b.WriteString("/CMapName /Adobe-Identity-UCS def\n/CMapType 2 def\n")
	b.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")

	var entries []string
	for _, gid := range e.sortedGIDs() {
		g := e.used[gid]
		if gid == 0 {
			continue
		}
		var u strings.Builder
		for _, unit := range utf16.Encode([]rune{g.Rune}) {
			fmt.Fprintf(&u, "%04X", unit)
		}
		entries = append(entries, fmt.Sprintf("<%04X> <%s>", gid, u.String()))
	}
	for len(entries) > 0 {
		n := min(len(entries), 100)
		fmt.Fprintf(&b, "%d beginbfchar\n%s\nendbfchar\n", n, strings.Join(entries[:n], "\n"))
		entries = entries[n:]
	}

	b.WriteString("endcmap\nCMapName currentdict /CMap defineresource pop\nend\nend\n")
	return b.Bytes()
}
