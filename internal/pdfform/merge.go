package pdfform

import (
	"bytes"
	"fmt"
	"io"
	"maps"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
)

// AppendPages copies every page of src, in order, onto the end of the
// document and returns how many pages were added. Inherited page attributes
// are materialized on the copies.
func (d *Document) AppendPages(src []byte) (int, error) {
	other, err := pdf.Read(bytes.NewReader(src), nil)
	if err != nil {
		return 0, fmt.Errorf("%w: source: %v", ErrMalformed, err)
	}
	sg := store{other}

	srcPages, err := pagetree.FindPages(sg)
	if err != nil {
		return 0, fmt.Errorf("%w: source page tree: %v", ErrMalformed, err)
	}
	if len(srcPages) == 0 {
		return 0, nil
	}

	rootRef := d.data.GetMeta().Catalog.Pages
	root, err := pdf.GetDict(d.getter(), rootRef)
	if err != nil || root == nil {
		return 0, fmt.Errorf("%w: page tree root: %v", ErrMalformed, err)
	}

	c := &copier{
		src:  sg,
		dst:  d,
		refs: make(map[pdf.Reference]pdf.Reference, len(srcPages)),
	}
	// Pages are mapped up front so annotations pointing back at their page
	// resolve to the copy instead of dragging in the source page tree.
	newRefs := make([]pdf.Reference, len(srcPages))
	for i, ref := range srcPages {
		newRefs[i] = d.alloc()
		c.refs[ref] = newRefs[i]
	}

	for i := range srcPages {
		merged, err := pagetree.GetPage(sg, i)
		if err != nil {
			return 0, fmt.Errorf("%w: source page %d: %v", ErrMalformed, i, err)
		}
		page := maps.Clone(merged)
		delete(page, "Parent")
		delete(page, "B")

		copied, err := c.copy(page)
		if err != nil {
			return 0, fmt.Errorf("copying page %d: %w", i, err)
		}
		dict := copied.(pdf.Dict)
		dict["Parent"] = rootRef
		c.stage(newRefs[i], dict)
	}
	if err := c.commit(); err != nil {
		return 0, err
	}

	kids, _ := pdf.GetArray(d.getter(), root["Kids"])
	for _, ref := range newRefs {
		kids = append(kids, ref)
	}
	count, _ := pdf.GetInt(d.getter(), root["Count"])
	root["Kids"] = kids
	root["Count"] = count + pdf.Integer(len(newRefs))
	if err := d.put(rootRef, root); err != nil {
		return 0, err
	}

	return len(newRefs), nil
}

// copier deep-copies objects from one file into a Document, following
// references and copying each indirect object once. Copies are held back
// until commit, so a failed copy leaves the Document untouched.
type copier struct {
	src     pdf.Getter
	dst     *Document
	refs    map[pdf.Reference]pdf.Reference
	pending []stagedObject
}

type stagedObject struct {
	ref pdf.Reference
	obj pdf.Object
}

func (c *copier) stage(ref pdf.Reference, obj pdf.Object) {
	c.pending = append(c.pending, stagedObject{ref: ref, obj: obj})
}

// commit stores every staged object in the Document.
func (c *copier) commit() error {
	for _, s := range c.pending {
		if err := c.dst.put(s.ref, s.obj); err != nil {
			return err
		}
	}
	c.pending = nil
	return nil
}

func (c *copier) copy(obj pdf.Object) (pdf.Object, error) {
	switch x := obj.(type) {
	case pdf.Dict:
		out := make(pdf.Dict, len(x))
		for k, v := range x {
			cv, err := c.copy(v)
			if err != nil {
				return nil, err
			}
			out[k] = cv
		}
		return out, nil

	case pdf.Array:
		out := make(pdf.Array, len(x))
		for i, v := range x {
			cv, err := c.copy(v)
			if err != nil {
				return nil, err
			}
			out[i] = cv
		}
		return out, nil

	case *pdf.Stream:
		data, err := io.ReadAll(x.R)
		if err != nil {
			return nil, fmt.Errorf("reading stream: %w", err)
		}
		dict, err := c.copy(x.Dict)
		if err != nil {
			return nil, err
		}
		sd := dict.(pdf.Dict)
		sd["Length"] = pdf.Integer(len(data))
		return &pdf.Stream{Dict: sd, R: bytes.NewReader(data)}, nil

	case pdf.Reference:
		if ref, ok := c.refs[x]; ok {
			return ref, nil
		}
		ref := c.dst.alloc()
		c.refs[x] = ref

		target, err := c.src.Get(x)
		if err != nil {
			return nil, fmt.Errorf("%w: object %s: %v", ErrMalformed, x, err)
		}
		if target == nil {
			return ref, nil
		}
		copied, err := c.copy(target)
		if err != nil {
			return nil, err
		}
		c.stage(ref, copied)
		return ref, nil

	default:
		return obj, nil
	}
}
