package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
)

// Fact is one labeled value in a block's detail grid.
type Fact struct {
	Label string
	Value string
}

// Block is one printable record: a feature, spell or magic item.
type Block struct {
	Name   string
	Usage  string   // e.g. "[2/3 short rest]"
	Source string   // e.g. "(Fighter)"
	Meta   string   // right-aligned header text
	Tags   []string // short descriptors under the name
	Note   string   // highlighted remark, e.g. attunement
	Facts  []Fact
	Body   template.HTML
}

// Group is a titled run of blocks. A group without a title renders its
// blocks directly under the page title.
type Group struct {
	Title  string
	Blocks []Block
}

// Document is the input of the layout stage.
type Document struct {
	Lang     string
	Title    string
	Subtitle string // e.g. character name and print date
	FontCSS  string
	Groups   []Group
}

// Blocks returns the number of blocks across all groups.
func (d Document) Blocks() int {
	n := 0
	for _, g := range d.Groups {
		n += len(g.Blocks)
	}
	return n
}

type layoutData struct {
	Lang     string
	Title    string
	Subtitle string
	FontCSS  template.CSS
	Style    template.CSS
	Groups   []Group
}

// Layout renders section documents from one HTML template and stylesheet.
type Layout struct {
	tmpl  *template.Template
	style string
}

// NewLayout parses the section template. The stylesheet is embedded in
// every rendered document.
func NewLayout(tmplContent, style string) (*Layout, error) {
	tmpl, err := template.New("section").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLayout, err)
	}
	return &Layout{tmpl: tmpl, style: style}, nil
}

// Render lays out doc as one self-contained HTML document. Empty groups are
// dropped, and a document with no blocks renders as the empty string.
func (l *Layout) Render(ctx context.Context, doc Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	groups := make([]Group, 0, len(doc.Groups))
	for _, g := range doc.Groups {
		if len(g.Blocks) > 0 {
			groups = append(groups, g)
		}
	}
	if len(groups) == 0 {
		return "", nil
	}

	lang := doc.Lang
	if lang == "" {
		lang = "en"
	}
	data := layoutData{
		Lang:     lang,
		Title:    doc.Title,
		Subtitle: doc.Subtitle,
		// #nosec G203 -- sanitized against </style> breakout
		FontCSS: template.CSS(sanitizeCSS(doc.FontCSS)),
		Style:   template.CSS(sanitizeCSS(l.style)), // #nosec G203
		Groups:  groups,
	}

	var buf bytes.Buffer
	if err := l.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrLayout, err)
	}
	return buf.String(), nil
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
