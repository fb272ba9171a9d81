package charsheet

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alnah/go-charsheet/internal/pdfform"
	"github.com/alnah/go-charsheet/internal/pdfform/pdftest"
)

// fakeVerifier accepts only owner.
type fakeVerifier struct {
	owner string
	err   error
	calls atomic.Int32
}

func (f *fakeVerifier) VerifyOwner(_ context.Context, _, callerID string) (bool, error) {
	f.calls.Add(1)
	if f.err != nil {
		return false, f.err
	}
	return callerID == f.owner, nil
}

// fakeLoader serves characters from a map and counts calls.
type fakeLoader struct {
	chars map[string]*Character
	calls atomic.Int32
}

func (f *fakeLoader) LoadCharacter(_ context.Context, id string) (*Character, error) {
	f.calls.Add(1)
	c, ok := f.chars[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrCharacterNotFound, id)
	}
	return c, nil
}

// fakeTemplate serves fixed bytes; nil data means missing.
type fakeTemplate struct {
	data  []byte
	calls atomic.Int32
}

func (f *fakeTemplate) LoadTemplate(context.Context) ([]byte, error) {
	f.calls.Add(1)
	if f.data == nil {
		return nil, ErrTemplateNotFound
	}
	return f.data, nil
}

var titleRe = regexp.MustCompile(`<title>([^<]*)</title>`)

// fakeRenderer returns labeled blank pages per section title, so merged
// output can be traced page by page.
type fakeRenderer struct {
	pages map[string]int           // title -> page count; default 1
	fail  map[string]error         // title -> error
	delay map[string]time.Duration // title -> sleep before answering

	mu    sync.Mutex
	html  map[string]string
	calls int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		pages: map[string]int{},
		fail:  map[string]error{},
		delay: map[string]time.Duration{},
		html:  map[string]string{},
	}
}

func (f *fakeRenderer) Render(ctx context.Context, html string) ([]byte, error) {
	title := ""
	if m := titleRe.FindStringSubmatch(html); m != nil {
		title = m[1]
	}

	f.mu.Lock()
	f.calls++
	f.html[title] = html
	delay, failErr, n := f.delay[title], f.fail[title], f.pages[title]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failErr != nil {
		return nil, failErr
	}
	if n == 0 {
		n = 1
	}
	return pdftest.Template{Pages: n, Label: title}.Bytes()
}

func (f *fakeRenderer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRenderer) htmlFor(title string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.html[title]
}

// sheetLabel marks template pages in merged output.
const sheetLabel = "sheet"

// fieldTemplate is a one-page sheet with a representative subset of the
// fillable fifth-edition form's fields.
func fieldTemplate(tb testing.TB) []byte {
	tb.Helper()

	names := []string{
		"CharacterName", "ClassLevel", "PlayerName", "Race ", "Background",
		"AC", "Initiative", "Speed", "HPMax", "HPCurrent", "HPTemp",
		"STR", "STRmod", "DEXmod ", "ProfBonus", "ST Strength",
		"Perception ", "Passive", "HDTotal", "Backstory", "Wpn Name",
	}
	fields := make([]pdftest.TextField, len(names))
	for i, n := range names {
		y := float64(760 - 24*i)
		fields[i] = pdftest.TextField{Name: n, Rect: [4]float64{100, y, 300, y + 18}}
	}
	return pdftest.Build(tb, pdftest.Template{
		Pages:      1,
		Label:      sheetLabel,
		TextFields: fields,
		CheckBoxes: []string{"Check Box 11", "Check Box 12", "Check Box 13", "Check Box 14", "Check Box 34"},
	})
}

// blankTemplate is a sheet without form fields.
func blankTemplate(tb testing.TB, pages int) []byte {
	tb.Helper()
	return pdftest.Labeled(tb, pages, sheetLabel)
}

func intPtr(n int) *int { return &n }

// aric is a level 5 fighter with a little of everything.
func aric() *Character {
	return &Character{
		ID:         "aric",
		Owner:      "user-1",
		Name:       "Aric",
		PlayerName: "Sam",
		Race:       "Human",
		Background: "Soldier",
		Classes:    []ClassLevel{{Name: "Fighter", Level: 5, HitDie: 10, Current: 3}},
		Sheet: Sheet{
			Abilities: map[Ability]AbilityScore{
				STR: {Score: 16, Modifier: 3},
				DEX: {Score: 14, Modifier: 2},
			},
			ProficiencyBonus: 3,
			AC:               18,
			Initiative:       2,
			Speed:            30,
			HP:               HitPoints{Current: 38, Max: 44},
			Saves:            map[Ability]Save{STR: {Total: 6, Proficient: true}},
			Skills:           map[string]Skill{"Perception": {Total: 4, Proficiency: ProficiencyProficient}},
			DeathSaves:       DeathSaves{Successes: 2},
		},
		Traits:  Traits{Backstory: "Raised in a border fort."},
		Weapons: []Weapon{{Name: "Longsword", AttackBonus: "+6", Damage: "1d8+3 slashing"}},
	}
}

func withFeatures(c *Character) *Character {
	c.Features.Passive = []Feature{
		{Name: "Fighting Style", Source: "Fighter", Description: "You adopt **Defense**."},
		{Name: "Extra Attack", Source: "Fighter"},
		{Name: "Second Wind", Source: "Fighter", Usage: &Usage{Remaining: intPtr(1), Total: 1, Rest: "short rest"}},
	}
	return c
}

func withSpells(c *Character) *Character {
	c.Spells = []Spell{
		{Name: "Shield", Level: 1, School: "Abjuration"},
		{Name: "Fire Bolt", Level: 0, School: "Evocation"},
	}
	return c
}

func withItems(c *Character) *Character {
	c.MagicItems = []MagicItem{{Name: "Cloak of Protection", Rarity: "Uncommon", Attunement: true}}
	return c
}

type harness struct {
	verifier *fakeVerifier
	loader   *fakeLoader
	template *fakeTemplate
	renderer *fakeRenderer
	composer *Composer
}

func newHarness(tb testing.TB, tmpl []byte, c *Character, opts ...Option) *harness {
	tb.Helper()

	h := &harness{
		verifier: &fakeVerifier{owner: c.Owner},
		loader:   &fakeLoader{chars: map[string]*Character{c.ID: c}},
		template: &fakeTemplate{data: tmpl},
		renderer: newFakeRenderer(),
	}
	comp, err := NewComposer(h.verifier, h.loader, h.template, h.renderer, opts...)
	if err != nil {
		tb.Fatalf("NewComposer: %v", err)
	}
	h.composer = comp
	return h
}

func openPDF(tb testing.TB, b []byte) *pdfform.Document {
	tb.Helper()
	doc, err := pdfform.Open(b)
	if err != nil {
		tb.Fatalf("opening output: %v", err)
	}
	return doc
}

func fieldValue(tb testing.TB, doc *pdfform.Document, name string) string {
	tb.Helper()
	v, ok := doc.Value(name)
	if !ok {
		tb.Fatalf("field %q missing from output", name)
	}
	return v
}
