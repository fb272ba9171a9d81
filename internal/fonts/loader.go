package fonts

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// Family is the CSS font-family name used by generated documents.
const Family = "CharsheetSans"

// Weight selects one of the two faces a Set carries.
type Weight int

const (
	Regular Weight = iota
	Bold
)

func (w Weight) String() string {
	if w == Bold {
		return "bold"
	}
	return "regular"
}

// Source supplies raw TrueType bytes for a weight.
type Source interface {
	ReadFont(w Weight) ([]byte, error)
}

// DirSource reads fonts from files inside Dir.
type DirSource struct {
	Dir     string
	Regular string // file name, e.g. NotoSans-Regular.ttf
	Bold    string
}

// ReadFont implements Source.
func (s DirSource) ReadFont(w Weight) ([]byte, error) {
	name := s.Regular
	if w == Bold {
		name = s.Bold
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no %s font configured", ErrFontMissing, w)
	}
	if strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("%w: font name %q must be a file name", ErrFontMissing, name)
	}

	path := filepath.Join(s.Dir, name)
	data, err := os.ReadFile(path) // #nosec G304 -- name validated above, dir from config
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFontMissing, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// EmbeddedSource serves the Go font family compiled into the binary.
type EmbeddedSource struct{}

// ReadFont implements Source.
func (EmbeddedSource) ReadFont(w Weight) ([]byte, error) {
	if w == Bold {
		return gobold.TTF, nil
	}
	return goregular.TTF, nil
}

// Compile-time interface checks.
var (
	_ Source = DirSource{}
	_ Source = EmbeddedSource{}
)

// Set is a loaded regular/bold pair plus its @font-face CSS.
type Set struct {
	Regular *Face
	Bold    *Face
	css     string
}

// CSS returns @font-face rules embedding both faces as data URLs.
func (s *Set) CSS() string { return s.css }

// Face returns the face for w.
func (s *Set) Face(w Weight) *Face {
	if w == Bold {
		return s.Bold
	}
	return s.Regular
}

// Loader reads a Set once and hands out the cached copy afterwards.
// A failed load is not cached, so the next call retries.
type Loader struct {
	src Source

	mu  sync.Mutex
	set *Set
}

// NewLoader creates a Loader over src. A nil src uses EmbeddedSource.
func NewLoader(src Source) *Loader {
	if src == nil {
		src = EmbeddedSource{}
	}
	return &Loader{src: src}
}

// Load returns the cached Set, reading and parsing it on first use.
func (l *Loader) Load() (*Set, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.set != nil {
		return l.set, nil
	}

	set := &Set{}
	for _, w := range []Weight{Regular, Bold} {
		data, err := l.src.ReadFont(w)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFontLoad, w, err)
		}
		face, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrFontLoad, w, err)
		}
		if w == Bold {
			set.Bold = face
		} else {
			set.Regular = face
		}
	}
	set.css = buildCSS(set)

	l.set = set
	return set, nil
}

func buildCSS(s *Set) string {
	var b strings.Builder
	for _, f := range []struct {
		face   *Face
		weight int
	}{
		{s.Regular, 400},
		{s.Bold, 700},
	} {
		fmt.Fprintf(&b,
			"@font-face{font-family:%q;src:url(data:font/ttf;base64,%s) format(\"truetype\");font-weight:%d;font-style:normal;}\n",
			Family, base64.StdEncoding.EncodeToString(f.face.Bytes()), f.weight)
	}
	return b.String()
}
