package charsheet

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-charsheet/internal/assets"
	"github.com/alnah/go-charsheet/internal/fonts"
)

// Section names one part of the output document.
type Section int

// Sections in output order.
const (
	SectionCharacter Section = iota
	SectionFeatures
	SectionSpells
	SectionMagicItems
)

var sectionNames = [...]string{"CHARACTER", "FEATURES", "SPELLS", "MAGIC_ITEMS"}

func (s Section) String() string {
	if s < 0 || int(s) >= len(sectionNames) {
		return fmt.Sprintf("Section(%d)", int(s))
	}
	return sectionNames[s]
}

// ParseSection maps a section tag to a Section. Matching ignores case, and
// "magic-items" is accepted for MAGIC_ITEMS.
func ParseSection(s string) (Section, error) {
	name := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for i, n := range sectionNames {
		if n == name {
			return Section(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q (want one of %s)", ErrInvalidSection, s, strings.Join(sectionNames[:], ", "))
}

// ParseSections parses a list of section tags.
func ParseSections(tags []string) ([]Section, error) {
	out := make([]Section, 0, len(tags))
	for _, t := range tags {
		s, err := ParseSection(t)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// DefaultSections is used when a request names no section.
var DefaultSections = []Section{SectionCharacter, SectionFeatures, SectionSpells}

// PrintConfig selects the sections of one generated document.
type PrintConfig struct {
	// Sections is unordered; output order is always CHARACTER, FEATURES,
	// SPELLS, MAGIC_ITEMS. Empty means DefaultSections.
	Sections []Section

	// ReadOnly marks every form field read-only after filling.
	ReadOnly bool

	// StrictSections turns a section failure into a request failure.
	StrictSections bool

	// Stamp is printed after the character name under each generated
	// section's title, typically the print date. Empty prints the name only.
	Stamp string
}

// ordered returns the requested sections deduplicated and in output order.
func (c PrintConfig) ordered() []Section {
	in := c.Sections
	if len(in) == 0 {
		in = DefaultSections
	}
	out := make([]Section, 0, len(in))
	for _, s := range in {
		if s < SectionCharacter || s > SectionMagicItems || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Option configures a Composer.
type Option func(*Composer)

// defaultTimeout bounds one section render when the context has no deadline.
const defaultTimeout = 30 * time.Second

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRenderTimeout bounds each section render when the request context
// carries no deadline.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithRenderTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("charsheet: WithRenderTimeout duration must be positive")
	}
	return func(c *Composer) {
		c.timeout = d
	}
}

// WithFontLoader replaces the font loader. The default uses the built-in
// Go fonts.
func WithFontLoader(l *fonts.Loader) Option {
	return func(c *Composer) {
		if l != nil {
			c.fonts = l
		}
	}
}

// WithAssetLoader replaces the loader for the section style and layout.
func WithAssetLoader(l assets.AssetLoader) Option {
	return func(c *Composer) {
		if l != nil {
			c.assets = l
		}
	}
}

// WithOverlayTable replaces the coordinate table used for templates without
// form fields.
func WithOverlayTable(table []OverlayField) Option {
	return func(c *Composer) {
		c.overlay = table
	}
}

// WithAliasTable replaces the logical key to field name table used for
// templates with form fields.
func WithAliasTable(t FieldAliasTable) Option {
	return func(c *Composer) {
		c.aliases = t
	}
}
