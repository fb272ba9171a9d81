package pdfform

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"seehuhn.de/go/pdf"

	"github.com/alnah/go-charsheet/internal/fonts"
)

const (
	padding     = 2.0
	lineSpacing = 1.15
	maxAutoSize = 12.0
	minAutoSize = 4.0
)

// UpdateAppearances embeds face, makes it the default appearance font of
// every text field and regenerates all text-field appearance streams.
func (d *Document) UpdateAppearances(face *fonts.Face) error {
	if face == nil {
		return ErrNoFont
	}
	fields, err := d.Fields()
	if err != nil {
		return err
	}
	form, err := d.ensureAcroForm()
	if err != nil {
		return err
	}

	font := d.embed(face)
	if err := d.registerFont(form, font); err != nil {
		return err
	}

	for _, f := range fields {
		if f.Type != FieldText {
			continue
		}
		_, size, _ := parseDA(f.da())
		f.dict["DA"] = pdf.String(formatDA(string(fontResource), size))
		value := f.value(d)
		for _, w := range f.widgets {
			if err := d.drawWidget(font, f, w, value, size); err != nil {
				return fmt.Errorf("appearance for %q: %w", f.Name, err)
			}
		}
		if err := d.save(f); err != nil {
			return err
		}
	}

	if err := d.writeFont(font); err != nil {
		return err
	}
	form["NeedAppearances"] = pdf.Bool(false)
	return d.saveAcroForm(form)
}

func (d *Document) registerFont(form pdf.Dict, font *embeddedFont) error {
	g := d.getter()

	dr, _ := pdf.GetDict(g, form["DR"])
	if dr == nil {
		dr = pdf.Dict{}
	}
	fontDict, _ := pdf.GetDict(g, dr["Font"])
	if fontDict == nil {
		fontDict = pdf.Dict{}
	}
	fontDict[fontResource] = font.type0

	if ref, ok := dr["Font"].(pdf.Reference); ok {
		if err := d.put(ref, fontDict); err != nil {
			return err
		}
	} else {
		dr["Font"] = fontDict
	}
	if ref, ok := form["DR"].(pdf.Reference); ok {
		return d.put(ref, dr)
	}
	form["DR"] = dr
	return nil
}

func (d *Document) drawWidget(font *embeddedFont, f *Field, w widget, value string, size float64) error {
	rect, err := d.rect(w.dict["Rect"])
	if err != nil {
		return err
	}
	width, height := rect[2]-rect[0], rect[3]-rect[1]
	if width < 0 {
		width = -width
	}
	if height < 0 {
		height = -height
	}

	content := appearance(font, value, layout{
		width:     width,
		height:    height,
		size:      size,
		align:     f.align(),
		multiline: f.flags()&flagMultiline != 0,
	})

	ref := d.alloc()
	stream := &pdf.Stream{
		Dict: pdf.Dict{
			"Type":    pdf.Name("XObject"),
			"Subtype": pdf.Name("Form"),
			"BBox":    pdf.Array{pdf.Integer(0), pdf.Integer(0), pdf.Real(width), pdf.Real(height)},
			"Resources": pdf.Dict{
				"Font": pdf.Dict{fontResource: font.type0},
			},
			"Length": pdf.Integer(len(content)),
		},
		R: bytes.NewReader(content),
	}
	if err := d.put(ref, stream); err != nil {
		return err
	}
	w.dict["AP"] = pdf.Dict{"N": ref}
	return nil
}

func (d *Document) rect(obj pdf.Object) ([4]float64, error) {
	var r [4]float64
	arr, err := pdf.GetArray(d.getter(), obj)
	if err != nil || len(arr) != 4 {
		return r, fmt.Errorf("%w: widget Rect", ErrMalformed)
	}
	for i, v := range arr {
		v, _ = pdf.Resolve(d.getter(), v)
		switch v := v.(type) {
		case pdf.Integer:
			r[i] = float64(v)
		case pdf.Real:
			r[i] = float64(v)
		default:
			return r, fmt.Errorf("%w: widget Rect entry %d", ErrMalformed, i)
		}
	}
	return r, nil
}

type layout struct {
	width, height float64
	size          float64 // 0 = auto
	align         Align
	multiline     bool
}

// appearance builds the content stream of a text widget.
func appearance(font *embeddedFont, value string, l layout) []byte {
	var b bytes.Buffer
	b.WriteString("/Tx BMC\n")
	if value == "" {
		b.WriteString("EMC\n")
		return b.Bytes()
	}

	face := font.face
	avail := l.width - 2*padding
	lines := []string{strings.ReplaceAll(value, "\n", " ")}
	size := l.size

	if l.multiline {
		if size <= 0 {
			size = autoSizeMultiline(face, value, avail, l.height-2*padding)
		}
		lines = wrap(face, value, size, avail)
	} else if size <= 0 {
		size = autoSizeLine(face, lines[0], avail, l.height-2*padding)
	}

	m := face.Metrics()
	ascent := m.Ascent * size / 1000
	descent := m.Descent * size / 1000

	fmt.Fprintf(&b, "q\n1 1 %s %s re W n\nBT\n/%s %s Tf 0 g\n",
		num(l.width-2), num(l.height-2), fontResource, num(size))

	var y float64
	if l.multiline {
		y = l.height - padding - ascent
	} else {
		y = (l.height-(ascent-descent))/2 - descent
	}
	leading := size * lineSpacing

	for _, line := range lines {
		hex, w := font.encode(line)
		w = w * size / 1000
		x := padding
		switch l.align {
		case AlignCenter:
			x = (l.width - w) / 2
		case AlignRight:
			x = l.width - padding - w
		}
		fmt.Fprintf(&b, "1 0 0 1 %s %s Tm\n%s Tj\n", num(x), num(y), hex)
		y -= leading
	}

	b.WriteString("ET\nQ\nEMC\n")
	return b.Bytes()
}

func autoSizeLine(face *fonts.Face, line string, width, height float64) float64 {
	size := min(maxAutoSize, height/lineSpacing)
	if w := face.Width(line, 1); w > 0 {
		size = min(size, width/w)
	}
	return max(size, minAutoSize)
}

func autoSizeMultiline(face *fonts.Face, value string, width, height float64) float64 {
	for size := maxAutoSize; size > minAutoSize; size -= 0.5 {
		lines := wrap(face, value, size, width)
		if float64(len(lines))*size*lineSpacing <= height {
			return size
		}
	}
	return minAutoSize
}

// wrap breaks value into lines no wider than width where word boundaries
// allow. Explicit line breaks are kept.
func wrap(face *fonts.Face, value string, size, width float64) []string {
	var lines []string
	for _, para := range strings.Split(value, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, word := range words[1:] {
			next := cur + " " + word
			if face.Width(next, size) > width {
				lines = append(lines, cur)
				cur = word
				continue
			}
			cur = next
		}
		lines = append(lines, cur)
	}
	return lines
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
