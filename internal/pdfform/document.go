package pdfform

import (
	"bytes"
	"fmt"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
)

// Document is an in-memory PDF with an interactive form. It is not safe for
// concurrent use; each request owns its own Document.
type Document struct {
	data     *pdf.Data
	reserved map[pdf.Reference]bool

	fields []*Field // nil until first walk
	font   *embeddedFont
}

// store adapts *pdf.Data to pdf.Getter.
type store struct {
	d *pdf.Data
}

func (s store) GetMeta() *pdf.MetaInfo { return s.d.GetMeta() }

func (s store) Get(ref pdf.Reference) (pdf.Object, error) { return s.d.Get(ref, false) }

var _ pdf.Getter = store{}

// Open parses b into a Document.
func Open(b []byte) (*Document, error) {
	data, err := pdf.Read(bytes.NewReader(b), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return newDocument(data), nil
}

func newDocument(data *pdf.Data) *Document {
	d := &Document{
		data:     data,
		reserved: map[pdf.Reference]bool{},
	}
	// Root and Info live outside the object map; keep their numbers free.
	trailer := data.GetMeta().Trailer
	for _, key := range []pdf.Name{"Root", "Info"} {
		if ref, ok := trailer[key].(pdf.Reference); ok {
			d.reserved[ref] = true
		}
	}
	return d
}

func (d *Document) getter() store { return store{d.data} }

func (d *Document) alloc() pdf.Reference {
	for {
		ref := d.data.Alloc()
		if !d.reserved[ref] {
			return ref
		}
	}
}

func (d *Document) put(ref pdf.Reference, obj pdf.Object) error {
	if err := d.data.Put(ref, obj); err != nil {
		return fmt.Errorf("storing object %s: %w", ref, err)
	}
	return nil
}

// PageCount returns the number of pages in the page tree.
func (d *Document) PageCount() (int, error) {
	n, err := pagetree.NumPages(d.getter())
	if err != nil {
		return 0, fmt.Errorf("%w: page tree: %v", ErrMalformed, err)
	}
	return n, nil
}

// page returns the reference and live dictionary of page i.
func (d *Document) page(i int) (pdf.Reference, pdf.Dict, error) {
	refs, err := pagetree.FindPages(d.getter())
	if err != nil {
		return 0, nil, fmt.Errorf("%w: page tree: %v", ErrMalformed, err)
	}
	if i < 0 || i >= len(refs) {
		return 0, nil, fmt.Errorf("%w: %d (document has %d)", ErrPageIndex, i, len(refs))
	}
	dict, err := pdf.GetDict(d.getter(), refs[i])
	if err != nil || dict == nil {
		return 0, nil, fmt.Errorf("%w: page %d: %v", ErrMalformed, i, err)
	}
	return refs[i], dict, nil
}

// Bytes serializes the document. Writing drains stream readers, so the
// Document reloads itself from the output and stays usable afterwards.
func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.data.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing PDF: %w", err)
	}
	out := buf.Bytes()

	data, err := pdf.Read(bytes.NewReader(out), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: re-reading output: %v", ErrMalformed, err)
	}
	*d = *newDocument(data)
	return out, nil
}
