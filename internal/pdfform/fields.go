package pdfform

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"seehuhn.de/go/pdf"
)

// FieldType classifies a terminal field.
type FieldType int

const (
	FieldUnknown FieldType = iota
	FieldText
	FieldCheckBox
	FieldRadio
	FieldPushButton
	FieldChoice
	FieldSignature
)

func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldCheckBox:
		return "checkbox"
	case FieldRadio:
		return "radio"
	case FieldPushButton:
		return "button"
	case FieldChoice:
		return "choice"
	case FieldSignature:
		return "signature"
	default:
		return "unknown"
	}
}

// Field flag bits (PDF 32000-1, tables 221, 226 and 228).
const (
	flagReadOnly    = 1 << 0
	flagMultiline   = 1 << 12
	flagRadio       = 1 << 15
	flagPushButton  = 1 << 16
	annotFlagPrint  = 1 << 2
	defaultFontSize = 10
)

// Align is the quadding of a text field.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Field is one terminal form field and its widgets.
type Field struct {
	Name string
	Type FieldType

	ref     pdf.Reference
	dict    pdf.Dict
	widgets []widget

	inheritedDA string
	inheritedQ  int
	inheritedFf int
}

type widget struct {
	ref  pdf.Reference // zero when the widget is the field dictionary itself
	dict pdf.Dict
}

// FieldInfo is a read-only summary used for listings.
type FieldInfo struct {
	Name      string
	Type      FieldType
	Value     string
	Multiline bool
	ReadOnly  bool
	FontSize  float64
}

var daFontRe = regexp.MustCompile(`/([^\s/]+)\s+(\d+(?:\.\d+)?)\s+Tf`)

// parseDA returns the font resource name and size of a DA string.
func parseDA(da string) (name string, size float64, ok bool) {
	m := daFontRe.FindStringSubmatch(da)
	if m == nil {
		return "", 0, false
	}
	size, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return "", 0, false
	}
	return m[1], size, true
}

func (d *Document) acroForm() (pdf.Dict, error) {
	obj := d.data.GetMeta().Catalog.AcroForm
	if obj == nil {
		return nil, nil
	}
	form, err := pdf.GetDict(d.getter(), obj)
	if err != nil {
		return nil, fmt.Errorf("%w: AcroForm: %v", ErrMalformed, err)
	}
	return form, nil
}

// ensureAcroForm returns the AcroForm dictionary, creating one if needed.
func (d *Document) ensureAcroForm() (pdf.Dict, error) {
	form, err := d.acroForm()
	if err != nil {
		return nil, err
	}
	if form != nil {
		return form, nil
	}

	form = pdf.Dict{"Fields": pdf.Array{}}
	ref := d.alloc()
	if err := d.put(ref, form); err != nil {
		return nil, err
	}
	d.data.GetMeta().Catalog.AcroForm = ref
	return form, nil
}

// saveAcroForm stores form back under its indirect reference, if it has one.
func (d *Document) saveAcroForm(form pdf.Dict) error {
	if ref, ok := d.data.GetMeta().Catalog.AcroForm.(pdf.Reference); ok {
		return d.put(ref, form)
	}
	d.data.GetMeta().Catalog.AcroForm = form
	return nil
}

// Fields returns all terminal fields in tree order.
func (d *Document) Fields() ([]*Field, error) {
	if d.fields != nil {
		return d.fields, nil
	}

	form, err := d.acroForm()
	if err != nil {
		return nil, err
	}
	fields := []*Field{}
	if form != nil {
		da, _ := pdf.GetString(d.getter(), form["DA"])
		q, _ := pdf.GetInt(d.getter(), form["Q"])
		kids, err := pdf.GetArray(d.getter(), form["Fields"])
		if err != nil {
			return nil, fmt.Errorf("%w: AcroForm Fields: %v", ErrMalformed, err)
		}
		w := walker{d: d, seen: map[pdf.Reference]bool{}}
		for _, kid := range kids {
			if err := w.walk(kid, "", inherited{da: string(da), q: int(q)}, &fields); err != nil {
				return nil, err
			}
		}
	}
	d.fields = fields
	return fields, nil
}

// FieldCount is the number of terminal fields.
func (d *Document) FieldCount() (int, error) {
	fields, err := d.Fields()
	if err != nil {
		return 0, err
	}
	return len(fields), nil
}

// Field looks up a field by its fully qualified name.
func (d *Document) Field(name string) (*Field, bool) {
	fields, err := d.Fields()
	if err != nil {
		return nil, false
	}
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Has reports whether a field named name exists.
func (d *Document) Has(name string) bool {
	_, ok := d.Field(name)
	return ok
}

type inherited struct {
	ft string
	da string
	q  int
	ff int
}

type walker struct {
	d    *Document
	seen map[pdf.Reference]bool
}

func (w *walker) walk(obj pdf.Object, parent string, inh inherited, out *[]*Field) error {
	ref, isRef := obj.(pdf.Reference)
	if isRef {
		if w.seen[ref] {
			return fmt.Errorf("%w: field tree loop at %s", ErrMalformed, ref)
		}
		w.seen[ref] = true
	}

	g := w.d.getter()
	dict, err := pdf.GetDict(g, obj)
	if err != nil {
		return fmt.Errorf("%w: field: %v", ErrMalformed, err)
	}
	if dict == nil {
		return nil
	}

	name := parent
	if t, _ := pdf.GetString(g, dict["T"]); t != nil {
		part := t.AsTextString()
		if name == "" {
			name = part
		} else {
			name = name + "." + part
		}
	}
	if ft, _ := pdf.GetName(g, dict["FT"]); ft != "" {
		inh.ft = string(ft)
	}
	if da, _ := pdf.GetString(g, dict["DA"]); da != nil {
		inh.da = string(da)
	}
	if q, err := pdf.GetInt(g, dict["Q"]); err == nil && dict["Q"] != nil {
		inh.q = int(q)
	}
	if ff, err := pdf.GetInt(g, dict["Ff"]); err == nil && dict["Ff"] != nil {
		inh.ff = int(ff)
	}

	kids, _ := pdf.GetArray(g, dict["Kids"])
	var childFields, childWidgets []pdf.Object
	for _, kid := range kids {
		kd, err := pdf.GetDict(g, kid)
		if err != nil || kd == nil {
			continue
		}
		if _, hasT := kd["T"]; hasT {
			childFields = append(childFields, kid)
		} else {
			childWidgets = append(childWidgets, kid)
		}
	}

	if len(childFields) > 0 {
		for _, kid := range childFields {
			if err := w.walk(kid, name, inh, out); err != nil {
				return err
			}
		}
		return nil
	}
	if name == "" {
		return nil
	}

	f := &Field{
		Name:        name,
		Type:        classify(inh.ft, inh.ff),
		dict:        dict,
		inheritedDA: inh.da,
		inheritedQ:  inh.q,
		inheritedFf: inh.ff,
	}
	if isRef {
		f.ref = ref
	}
	if len(childWidgets) == 0 {
		f.widgets = []widget{{dict: dict}}
	}
	for _, kid := range childWidgets {
		wd, _ := pdf.GetDict(g, kid)
		wr, _ := kid.(pdf.Reference)
		f.widgets = append(f.widgets, widget{ref: wr, dict: wd})
	}
	*out = append(*out, f)
	return nil
}

func classify(ft string, ff int) FieldType {
	switch ft {
	case "Tx":
		return FieldText
	case "Btn":
		switch {
		case ff&flagPushButton != 0:
			return FieldPushButton
		case ff&flagRadio != 0:
			return FieldRadio
		default:
			return FieldCheckBox
		}
	case "Ch":
		return FieldChoice
	case "Sig":
		return FieldSignature
	default:
		return FieldUnknown
	}
}

// save writes a field and its widgets back to the object store.
func (d *Document) save(f *Field) error {
	if f.ref != 0 {
		if err := d.put(f.ref, f.dict); err != nil {
			return err
		}
	}
	for _, w := range f.widgets {
		if w.ref != 0 && w.ref != f.ref {
			if err := d.put(w.ref, w.dict); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Document) lookup(name string, want FieldType) (*Field, error) {
	f, ok := d.Field(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, name)
	}
	if f.Type != want {
		return nil, fmt.Errorf("%w: %q is %s, not %s", ErrFieldType, name, f.Type, want)
	}
	return f, nil
}

// SetText writes a text field's value. Line breaks are kept as "\n".
func (d *Document) SetText(name, value string) error {
	f, err := d.lookup(name, FieldText)
	if err != nil {
		return err
	}
	f.dict["V"] = pdf.TextString(value)
	return d.save(f)
}

// SetMultiline turns on the multiline flag of a text field.
func (d *Document) SetMultiline(name string) error {
	f, err := d.lookup(name, FieldText)
	if err != nil {
		return err
	}
	f.dict["Ff"] = pdf.Integer(f.flags() | flagMultiline)
	return d.save(f)
}

// SetFontSize rewrites the size in a text field's default appearance.
// A size of 0 asks for auto-sizing.
func (d *Document) SetFontSize(name string, size float64) error {
	f, err := d.lookup(name, FieldText)
	if err != nil {
		return err
	}
	font, _, ok := parseDA(f.da())
	if !ok {
		font = "Helv"
	}
	f.dict["DA"] = pdf.String(formatDA(font, size))
	return d.save(f)
}

// SetCheck checks or clears a check box, using the on-state name the
// widget's appearance dictionary declares.
func (d *Document) SetCheck(name string, on bool) error {
	f, err := d.lookup(name, FieldCheckBox)
	if err != nil {
		return err
	}

	state := pdf.Name("Off")
	if on {
		state = d.onState(f)
	}
	f.dict["V"] = state
	for _, w := range f.widgets {
		w.dict["AS"] = state
	}
	return d.save(f)
}

func (d *Document) onState(f *Field) pdf.Name {
	g := d.getter()
	for _, w := range f.widgets {
		ap, _ := pdf.GetDict(g, w.dict["AP"])
		if ap == nil {
			continue
		}
		normal, _ := pdf.GetDict(g, ap["N"])
		keys := make([]string, 0, len(normal))
		for k := range normal {
			if k != "Off" {
				keys = append(keys, string(k))
			}
		}
		if len(keys) > 0 {
			sort.Strings(keys)
			return pdf.Name(keys[0])
		}
	}
	return "Yes"
}

// SetReadOnly marks every field read-only.
func (d *Document) SetReadOnly() error {
	fields, err := d.Fields()
	if err != nil {
		return err
	}
	for _, f := range fields {
		f.dict["Ff"] = pdf.Integer(f.flags() | flagReadOnly)
		if err := d.save(f); err != nil {
			return err
		}
	}
	return nil
}

// Value returns a field's current value as text. Check boxes report their
// state name.
func (d *Document) Value(name string) (string, bool) {
	f, ok := d.Field(name)
	if !ok {
		return "", false
	}
	return f.value(d), true
}

// Describe lists all fields with their values.
func (d *Document) Describe() ([]FieldInfo, error) {
	fields, err := d.Fields()
	if err != nil {
		return nil, err
	}
	out := make([]FieldInfo, 0, len(fields))
	for _, f := range fields {
		_, size, _ := parseDA(f.da())
		out = append(out, FieldInfo{
			Name:      f.Name,
			Type:      f.Type,
			Value:     f.value(d),
			Multiline: f.flags()&flagMultiline != 0,
			ReadOnly:  f.flags()&flagReadOnly != 0,
			FontSize:  size,
		})
	}
	return out, nil
}

func (f *Field) value(d *Document) string {
	g := d.getter()
	v, err := pdf.Resolve(g, f.dict["V"])
	if err != nil {
		return ""
	}
	switch v := v.(type) {
	case pdf.String:
		return v.AsTextString()
	case pdf.Name:
		return string(v)
	case pdf.Array:
		parts := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(pdf.String); ok {
				parts = append(parts, s.AsTextString())
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

func (f *Field) flags() int {
	if ff, ok := f.dict["Ff"].(pdf.Integer); ok {
		return int(ff)
	}
	return f.inheritedFf
}

func (f *Field) da() string {
	if da, ok := f.dict["DA"].(pdf.String); ok {
		return string(da)
	}
	return f.inheritedDA
}

func (f *Field) align() Align {
	q := f.inheritedQ
	if v, ok := f.dict["Q"].(pdf.Integer); ok {
		q = int(v)
	}
	switch q {
	case 1:
		return AlignCenter
	case 2:
		return AlignRight
	default:
		return AlignLeft
	}
}

func formatDA(font string, size float64) string {
	return fmt.Sprintf("/%s %s Tf 0 g", font, strconv.FormatFloat(size, 'f', -1, 64))
}
