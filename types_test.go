package charsheet

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParseSection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Section
		wantErr bool
	}{
		{in: "CHARACTER", want: SectionCharacter},
		{in: "features", want: SectionFeatures},
		{in: " Spells ", want: SectionSpells},
		{in: "MAGIC_ITEMS", want: SectionMagicItems},
		{in: "magic-items", want: SectionMagicItems},
		{in: "inventory", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, err := ParseSection(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSection) {
					t.Errorf("ParseSection(%q) error = %v, want ErrInvalidSection", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSection(%q) unexpected error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSection(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSections(t *testing.T) {
	t.Parallel()

	got, err := ParseSections([]string{"spells", "CHARACTER"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]Section{SectionSpells, SectionCharacter}, got); diff != "" {
		t.Errorf("ParseSections mismatch (-want +got):\n%s", diff)
	}

	if _, err := ParseSections([]string{"spells", "bogus"}); !errors.Is(err, ErrInvalidSection) {
		t.Errorf("ParseSections with bad tag error = %v, want ErrInvalidSection", err)
	}
}

func TestSection_String(t *testing.T) {
	t.Parallel()

	if got := SectionMagicItems.String(); got != "MAGIC_ITEMS" {
		t.Errorf("String() = %q, want MAGIC_ITEMS", got)
	}
	if got := Section(42).String(); got != "Section(42)" {
		t.Errorf("String() = %q, want Section(42)", got)
	}
}

func TestPrintConfig_Ordered(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []Section
		want []Section
	}{
		{
			name: "empty defaults",
			in:   nil,
			want: []Section{SectionCharacter, SectionFeatures, SectionSpells},
		},
		{
			name: "reversed input",
			in:   []Section{SectionMagicItems, SectionSpells, SectionFeatures, SectionCharacter},
			want: []Section{SectionCharacter, SectionFeatures, SectionSpells, SectionMagicItems},
		},
		{
			name: "duplicates dropped",
			in:   []Section{SectionSpells, SectionSpells, SectionCharacter},
			want: []Section{SectionCharacter, SectionSpells},
		},
		{
			name: "unknown values dropped",
			in:   []Section{Section(9), SectionFeatures},
			want: []Section{SectionFeatures},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := PrintConfig{Sections: tt.in}.ordered()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ordered() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithRenderTimeoutPanic(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{0, -time.Second} {
		func() {
			defer func() {
				if r := recover(); r == nil {
					t.Errorf("WithRenderTimeout(%v) did not panic", d)
				}
			}()
			WithRenderTimeout(d)
		}()
	}
}

func TestUsage_String(t *testing.T) {
	t.Parallel()

	two := 2
	tests := []struct {
		name string
		in   Usage
		want string
	}{
		{name: "full", in: Usage{Remaining: &two, Total: 3, Rest: "short rest"}, want: "[2/3 short rest]"},
		{name: "unknown remaining", in: Usage{Total: 1, Rest: "long rest"}, want: "[/1 long rest]"},
		{name: "no rest", in: Usage{Remaining: &two, Total: 2}, want: "[2/2]"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("%s: String() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCharacter_Formatting(t *testing.T) {
	t.Parallel()

	c := &Character{Classes: []ClassLevel{
		{Name: "Fighter", Level: 5, HitDie: 10, Current: 4},
		{Name: "Wizard", Level: 3, HitDie: 6, Current: 0},
	}}

	if got, want := c.classLevelText(), "Fighter 5 / Wizard 3"; got != want {
		t.Errorf("classLevelText() = %q, want %q", got, want)
	}
	total, current := c.hitDiceText()
	if total != "5d10 + 3d6" {
		t.Errorf("hit dice total = %q, want %q", total, "5d10 + 3d6")
	}
	if current != "4d10" {
		t.Errorf("hit dice current = %q, want %q", current, "4d10")
	}

	c.ClassLevel = "Eldritch Knight 8"
	c.Sheet.HitDice = HitDice{Total: "8d10", Current: "2d10"}
	if got := c.classLevelText(); got != "Eldritch Knight 8" {
		t.Errorf("preformatted classLevelText() = %q", got)
	}
	if total, current := c.hitDiceText(); total != "8d10" || current != "2d10" {
		t.Errorf("preformatted hit dice = %q, %q", total, current)
	}
}

func TestSectionError(t *testing.T) {
	t.Parallel()

	cause := ErrPageLoad
	err := error(&SectionError{Section: SectionSpells, Err: cause})

	if !errors.Is(err, ErrSectionRender) {
		t.Error("SectionError should match ErrSectionRender")
	}
	if !errors.Is(err, ErrRenderBackend) {
		t.Error("SectionError should match its cause's parent ErrRenderBackend")
	}
	var serr *SectionError
	if !errors.As(err, &serr) {
		t.Fatal("errors.As(*SectionError) = false")
	}
	if serr.Section != SectionSpells {
		t.Errorf("Section = %v, want SPELLS", serr.Section)
	}
	if got := err.Error(); got != "SPELLS section: "+cause.Error() {
		t.Errorf("Error() = %q", got)
	}
}

func TestNotFoundHierarchy(t *testing.T) {
	t.Parallel()

	for _, err := range []error{ErrCharacterNotFound, ErrTemplateNotFound} {
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("%v should match ErrNotFound", err)
		}
	}
}
