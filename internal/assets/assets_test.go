package assets

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
)

func writeAsset(t *testing.T, dir, rel, content string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
}

func TestValidateAssetName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain", "sheet", false},
		{"hyphen and digits", "sheet-2024", false},
		{"empty", "", true},
		{"slash", "styles/sheet", true},
		{"backslash", `..\sheet`, true},
		{"dot", "sheet.css", true},
		{"parent", "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateAssetName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAssetName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidAssetName) {
				t.Errorf("error = %v, want ErrInvalidAssetName", err)
			}
		})
	}
}

func TestBuiltinAssets(t *testing.T) {
	t.Parallel()

	style, err := LoadStyle(DefaultStyleName)
	if err != nil {
		t.Fatalf("LoadStyle() error = %v", err)
	}
	if !strings.Contains(style, "@page") {
		t.Error("built-in style has no @page rule")
	}

	layout, err := LoadTemplate(SectionTemplateName)
	if err != nil {
		t.Fatalf("LoadTemplate() error = %v", err)
	}
	for _, want := range []string{"{{.Title}}", "{{.Style}}", "{{.FontCSS}}", "range .Groups"} {
		if !strings.Contains(layout, want) {
			t.Errorf("built-in layout missing %q", want)
		}
	}

	if _, err := LoadStyle("absent"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(absent) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := LoadTemplate("absent"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("LoadTemplate(absent) error = %v, want ErrTemplateNotFound", err)
	}
}

func TestFSLoader(t *testing.T) {
	t.Parallel()

	fsys := fstest.MapFS{
		"styles/dark.css":      {Data: []byte("body{background:#000}")},
		"templates/plain.html": {Data: []byte("<p>{{.Title}}</p>")},
		"styles/broken.css":    {Mode: os.ModeDir},
	}
	l := NewFSLoader(fsys, "test tree")

	if got, err := l.LoadStyle("dark"); err != nil || got != "body{background:#000}" {
		t.Errorf("LoadStyle(dark) = %q, %v", got, err)
	}
	if got, err := l.LoadTemplate("plain"); err != nil || got != "<p>{{.Title}}</p>" {
		t.Errorf("LoadTemplate(plain) = %q, %v", got, err)
	}

	_, err := l.LoadStyle("light")
	if !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(light) error = %v, want ErrStyleNotFound", err)
	}
	if err != nil && !strings.Contains(err.Error(), "test tree") {
		t.Errorf("error %q does not name the origin", err)
	}

	if _, err := l.LoadStyle("broken"); !errors.Is(err, ErrAssetRead) {
		t.Errorf("LoadStyle(broken) error = %v, want ErrAssetRead", err)
	}
	if _, err := l.LoadTemplate("../plain"); !errors.Is(err, ErrInvalidAssetName) {
		t.Errorf("LoadTemplate(../plain) error = %v, want ErrInvalidAssetName", err)
	}
}

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	writeAsset(t, dir, "file.txt", "x")

	tests := []struct {
		name string
		path string
	}{
		{"empty", ""},
		{"missing", filepath.Join(dir, "missing")},
		{"regular file", file},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := NewFilesystemLoader(tt.path); !errors.Is(err, ErrInvalidBasePath) {
				t.Errorf("NewFilesystemLoader(%q) error = %v, want ErrInvalidBasePath", tt.path, err)
			}
		})
	}

	l, err := NewFilesystemLoader(dir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	if l.Origin() == "" {
		t.Error("Origin() is empty")
	}
}

func TestFilesystemLoader_SymlinkEscape(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	writeAsset(t, outside, "secret.css", "leaked")

	base := t.TempDir()
	if err := os.MkdirAll(filepath.Join(base, "styles"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.Symlink(filepath.Join(outside, "secret.css"), filepath.Join(base, "styles", "evil.css")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	l, err := NewFilesystemLoader(base)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}
	got, err := l.LoadStyle("evil")
	if err == nil {
		t.Fatalf("LoadStyle(evil) = %q, want an error", got)
	}
}

func TestAssetResolver(t *testing.T) {
	t.Parallel()

	t.Run("built-in only", func(t *testing.T) {
		t.Parallel()
		r, err := NewAssetResolver("")
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		if r.Overrides() {
			t.Error("Overrides() = true without a directory")
		}
		if _, err := r.LoadStyle(DefaultStyleName); err != nil {
			t.Errorf("LoadStyle() error = %v", err)
		}
	})

	t.Run("directory wins and falls back", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		writeAsset(t, dir, "styles/sheet.css", "custom")
		writeAsset(t, dir, "styles/extra.css", "extra")

		r, err := NewAssetResolver(dir)
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		if !r.Overrides() {
			t.Error("Overrides() = false with a directory")
		}

		if got, _ := r.LoadStyle(DefaultStyleName); got != "custom" {
			t.Errorf("LoadStyle(sheet) = %q, want custom", got)
		}
		if got, _ := r.LoadStyle("extra"); got != "extra" {
			t.Errorf("LoadStyle(extra) = %q, want extra", got)
		}

		layout, err := r.LoadTemplate(SectionTemplateName)
		if err != nil {
			t.Fatalf("LoadTemplate() error = %v", err)
		}
		builtinLayout, _ := LoadTemplate(SectionTemplateName)
		if layout != builtinLayout {
			t.Error("missing override did not fall back to the built-in layout")
		}

		if _, err := r.LoadStyle("nowhere"); !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("LoadStyle(nowhere) error = %v, want ErrStyleNotFound", err)
		}
	})

	t.Run("invalid name stops the lookup", func(t *testing.T) {
		t.Parallel()
		r, err := NewAssetResolver(t.TempDir())
		if err != nil {
			t.Fatalf("NewAssetResolver() error = %v", err)
		}
		if _, err := r.LoadStyle("a/b"); !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle(a/b) error = %v, want ErrInvalidAssetName", err)
		}
	})

	t.Run("bad directory", func(t *testing.T) {
		t.Parallel()
		if _, err := NewAssetResolver(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewAssetResolver() error = %v, want ErrInvalidBasePath", err)
		}
	})
}
