package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alnah/go-charsheet/internal/assets"
)

func mustLayout(tb testing.TB) *Layout {
	tb.Helper()
	tmpl, err := assets.LoadTemplate(assets.SectionTemplateName)
	if err != nil {
		tb.Fatalf("LoadTemplate() error = %v", err)
	}
	style, err := assets.LoadStyle(assets.DefaultStyleName)
	if err != nil {
		tb.Fatalf("LoadStyle() error = %v", err)
	}
	layout, err := NewLayout(tmpl, style)
	if err != nil {
		tb.Fatalf("NewLayout() error = %v", err)
	}
	return layout
}

func TestGoldmarkConverter_ToHTML(t *testing.T) {
	t.Parallel()

	converter := NewGoldmarkConverter()
	ctx := context.Background()

	tests := []struct {
		name       string
		input      string
		want       []string
		wantAbsent []string
	}{
		{
			name:  "emphasis",
			input: "You gain **advantage** on the roll.",
			want:  []string{"<strong>advantage</strong>"},
		},
		{
			name:  "GFM table",
			input: "| Level | Dice |\n|---|---|\n| 5 | 2d8 |",
			want:  []string{"<table>", "<td>2d8</td>"},
		},
		{
			name:       "raw HTML is not passed through",
			input:      "Hit <script>alert(1)</script> points",
			wantAbsent: []string{"<script>"},
		},
		{
			name:  "highlight markers",
			input: "Takes ==half== damage.",
			want:  []string{"<mark>half</mark>"},
		},
		{
			name:       "remote image replaced by alt text",
			input:      "![fire bolt](https://example.com/bolt.png)",
			want:       []string{"fire bolt"},
			wantAbsent: []string{"<img", "example.com"},
		},
		{
			name:       "links keep text only",
			input:      "See [the rules](https://example.com/rules).",
			want:       []string{"the rules"},
			wantAbsent: []string{"href"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := converter.ToHTML(ctx, tt.input)
			if err != nil {
				t.Fatalf("ToHTML() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(got), w) {
					t.Errorf("ToHTML() = %q, want substring %q", got, w)
				}
			}
			for _, w := range tt.wantAbsent {
				if strings.Contains(string(got), w) {
					t.Errorf("ToHTML() = %q, must not contain %q", got, w)
				}
			}
		})
	}
}

func TestGoldmarkConverter_EmptyAndCancelled(t *testing.T) {
	t.Parallel()

	converter := NewGoldmarkConverter()

	got, err := converter.ToHTML(context.Background(), " \r\n\r\n ")
	if err != nil || got != "" {
		t.Errorf("ToHTML(blank) = %q, %v, want empty", got, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := converter.ToHTML(ctx, "text"); !errors.Is(err, context.Canceled) {
		t.Errorf("ToHTML(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestDescriptionPreprocessor(t *testing.T) {
	t.Parallel()

	p := &DescriptionPreprocessor{}
	got := p.PreprocessMarkdown(context.Background(), "a\r\nb\r\r\r\n\n\nc ==d==")
	want := "a\nb\n\nc " + MarkStartPlaceholder + "d" + MarkEndPlaceholder
	if got != want {
		t.Errorf("PreprocessMarkdown() = %q, want %q", got, want)
	}
}

func TestLayout_Render(t *testing.T) {
	t.Parallel()

	layout := mustLayout(t)
	doc := Document{
		Title:    "Features",
		Subtitle: "Aric · 2026-10-18",
		FontCSS:  "@font-face { font-family: \"CharsheetSans\"; }",
		Groups: []Group{
			{Title: "Passive", Blocks: []Block{
				{Name: "Darkvision", Source: "(Elf)"},
				{Name: "<b>Bold</b> & Brave", Usage: "[2/3 long rest]"},
			}},
			{Title: "Actions"},
		},
	}

	got, err := layout.Render(context.Background(), doc)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	for _, want := range []string{
		"<!DOCTYPE html>",
		`<h2 class="section-title">Passive</h2>`,
		"Darkvision",
		"(Elf)",
		"[2/3 long rest]",
		"&lt;b&gt;Bold&lt;/b&gt; &amp; Brave",
		"CharsheetSans",
		"column-count: 2",
		`<div class="page-subtitle">Aric · 2026-10-18</div>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Render() missing %q", want)
		}
	}
	if strings.Contains(got, "Actions") {
		t.Error("Render() printed a header for an empty group")
	}
}

func TestLayout_Render_Empty(t *testing.T) {
	t.Parallel()

	layout := mustLayout(t)
	got, err := layout.Render(context.Background(), Document{
		Title:  "Spells",
		Groups: []Group{{Title: "Cantrips"}},
	})
	if err != nil || got != "" {
		t.Errorf("Render(no blocks) = %q, %v, want empty string", got, err)
	}
}

func TestLayout_Render_StyleBreakout(t *testing.T) {
	t.Parallel()

	layout, err := NewLayout("<style>{{.Style}}</style>{{range .Groups}}{{end}}", "p{}</style><script>x()</script>")
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	got, err := layout.Render(context.Background(), Document{Groups: []Group{{Blocks: []Block{{Name: "x"}}}}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if strings.Contains(got, "</style><script>") {
		t.Errorf("Render() let the stylesheet close its style element: %q", got)
	}
}

func TestNewLayout_BadTemplate(t *testing.T) {
	t.Parallel()

	if _, err := NewLayout("{{.Broken", ""); !errors.Is(err, ErrLayout) {
		t.Errorf("NewLayout() error = %v, want ErrLayout", err)
	}
}

func TestDocument_Blocks(t *testing.T) {
	t.Parallel()

	doc := Document{Groups: []Group{{Blocks: make([]Block, 2)}, {}, {Blocks: make([]Block, 3)}}}
	if got := doc.Blocks(); got != 5 {
		t.Errorf("Blocks() = %d, want 5", got)
	}
}
