package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	charsheet "github.com/alnah/go-charsheet"
	"github.com/alnah/go-charsheet/internal/config"
	"github.com/alnah/go-charsheet/internal/pdfform/pdftest"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fixedNow is the clock every test environment uses.
var fixedNow = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// Test Infrastructure - Fake backend
// ---------------------------------------------------------------------------

// fakeBackend answers every render with one blank page.
type fakeBackend struct {
	mu     sync.Mutex
	opts   charsheet.BackendOptions
	calls  int
	closed bool
	err    error
}

func (b *fakeBackend) Render(ctx context.Context, _ string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.calls++
	err := b.err
	b.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return pdftest.Template{Pages: 1, Label: "section"}.Bytes()
}

func (b *fakeBackend) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls > 0 && !b.closed
}

func (b *fakeBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *fakeBackend) renders() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

func (b *fakeBackend) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment and files
// ---------------------------------------------------------------------------

// testEnv is an Environment writing to buffers, with a sheet template and
// an empty data directory under a temp dir.
type testEnv struct {
	*Environment
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	backend *fakeBackend
	dir     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	dataDir := filepath.Join(dir, "characters")
	if err := os.Mkdir(dataDir, 0o750); err != nil {
		t.Fatal(err)
	}

	cfg := config.DefaultConfig()
	cfg.Template.Path = writeTestFile(t, dir, "sheet.pdf", string(sheetTemplate(t)))
	cfg.Data.Dir = dataDir

	te := &testEnv{
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		backend: &fakeBackend{},
		dir:     dir,
	}
	te.Environment = &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: te.stdout,
		Stderr: te.stderr,
		Config: cfg,
		NewBackend: func(opts charsheet.BackendOptions) renderBackend {
			te.backend.opts = opts
			return te.backend
		},
	}
	return te
}

// sheetTemplate is a one-page form with a few character page fields.
func sheetTemplate(tb testing.TB) []byte {
	tb.Helper()
	return pdftest.Build(tb, pdftest.Template{
		Pages: 1,
		TextFields: []pdftest.TextField{
			{Name: "CharacterName", Rect: [4]float64{50, 700, 250, 720}},
			{Name: "AC", Rect: [4]float64{50, 660, 90, 690}},
			{Name: "Notes 1", Rect: [4]float64{50, 600, 250, 640}},
		},
		CheckBoxes: []string{"Check Box 11"},
	})
}

const aricYAML = `id: aric
owner: user-1
name: Aric
race: Human
classes:
  - name: Fighter
    level: 5
    hitDie: 10
sheet:
  ac: 18
  hp:
    current: 38
    max: 44
features:
  passive:
    - name: Second Wind
      source: Fighter
`

func writeTestFile(tb testing.TB, dir, name, content string) string {
	tb.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		tb.Fatalf("writing %s: %v", p, err)
	}
	return p
}
