package charsheet

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/alnah/go-charsheet/internal/pipeline"
)

// FeatureSection is one titled category of features.
type FeatureSection struct {
	Title string
	Items []Feature
}

// SpellSection is the titled spell list.
type SpellSection struct {
	Title string
	Items []Spell
}

// ItemSection is the titled magic item list.
type ItemSection struct {
	Title string
	Items []MagicItem
}

// Feature category titles, in print order.
const (
	TitlePassive      = "Passive"
	TitleActions      = "Actions"
	TitleBonusActions = "Bonus Actions"
	TitleReactions    = "Reactions"
)

// FeatureSections groups c's features into the fixed categories, dropping
// empty ones.
func FeatureSections(c *Character) []FeatureSection {
	all := []FeatureSection{
		{Title: TitlePassive, Items: c.Features.Passive},
		{Title: TitleActions, Items: c.Features.Actions},
		{Title: TitleBonusActions, Items: c.Features.BonusActions},
		{Title: TitleReactions, Items: c.Features.Reactions},
	}
	return slices.DeleteFunc(all, func(s FeatureSection) bool { return len(s.Items) == 0 })
}

// SpellsOf returns c's spells sorted by level, then name.
func SpellsOf(c *Character) SpellSection {
	return SpellSection{Title: "Spells", Items: sortedSpells(c.Spells)}
}

// ItemsOf returns c's magic items sorted by name.
func ItemsOf(c *Character) ItemSection {
	items := slices.Clone(c.MagicItems)
	slices.SortStableFunc(items, func(a, b MagicItem) int {
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return ItemSection{Title: "Magic Items", Items: items}
}

func sortedSpells(spells []Spell) []Spell {
	out := slices.Clone(spells)
	slices.SortStableFunc(out, func(a, b Spell) int {
		if c := cmp.Compare(a.Level, b.Level); c != 0 {
			return c
		}
		return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return out
}

// hasContent reports whether s would print anything for c.
func hasContent(s Section, c *Character) bool {
	switch s {
	case SectionFeatures:
		return c.Features.Len() > 0
	case SectionSpells:
		return len(c.Spells) > 0
	case SectionMagicItems:
		return len(c.MagicItems) > 0
	}
	return false
}

// sectionBuilder runs the parse and lay-out stages for generated sections.
type sectionBuilder struct {
	md     pipeline.MarkdownConverter
	layout *pipeline.Layout
}

// HTML returns the self-contained HTML document for section s, or "" when
// the section has nothing to print. subtitle is printed under the title.
func (b *sectionBuilder) HTML(ctx context.Context, s Section, c *Character, fontCSS, subtitle string) (string, error) {
	if s >= SectionFeatures && s <= SectionMagicItems && !hasContent(s, c) {
		return "", nil
	}

	var (
		doc pipeline.Document
		err error
	)
	switch s {
	case SectionFeatures:
		doc, err = b.features(ctx, FeatureSections(c))
	case SectionSpells:
		doc, err = b.spells(ctx, SpellsOf(c))
	case SectionMagicItems:
		doc, err = b.items(ctx, ItemsOf(c))
	default:
		return "", fmt.Errorf("%w: %s is not a generated section", ErrInvalidSection, s)
	}
	if err != nil {
		return "", err
	}
	if doc.Blocks() == 0 {
		return "", nil
	}
	doc.FontCSS = fontCSS
	doc.Subtitle = subtitle
	return b.layout.Render(ctx, doc)
}

func (b *sectionBuilder) features(ctx context.Context, sections []FeatureSection) (pipeline.Document, error) {
	doc := pipeline.Document{Title: "Features"}
	for _, sec := range sections {
		g := pipeline.Group{Title: sec.Title}
		for _, f := range sec.Items {
			body, err := b.md.ToHTML(ctx, f.Description)
			if err != nil {
				return doc, fmt.Errorf("feature %q: %w", f.Name, err)
			}
			blk := pipeline.Block{Name: f.Name, Body: body}
			if f.Usage != nil {
				blk.Usage = f.Usage.String()
			}
			if f.Source != "" && !strings.EqualFold(f.Source, f.Name) {
				blk.Source = "(" + f.Source + ")"
			}
			g.Blocks = append(g.Blocks, blk)
		}
		doc.Groups = append(doc.Groups, g)
	}
	return doc, nil
}

func (b *sectionBuilder) spells(ctx context.Context, sec SpellSection) (pipeline.Document, error) {
	g := pipeline.Group{}
	for _, sp := range sec.Items {
		body, err := b.md.ToHTML(ctx, sp.Description)
		if err != nil {
			return pipeline.Document{}, fmt.Errorf("spell %q: %w", sp.Name, err)
		}
		var tags []string
		if sp.School != "" {
			tags = append(tags, sp.School)
		}
		if sp.Ritual {
			tags = append(tags, "Ritual")
		}
		if sp.Concentration {
			tags = append(tags, "Concentration")
		}
		g.Blocks = append(g.Blocks, pipeline.Block{
			Name: sp.Name,
			Meta: spellLevelLabel(sp.Level),
			Tags: tags,
			Facts: facts(
				"Casting Time", sp.CastingTime,
				"Range", sp.Range,
				"Components", sp.Components,
				"Duration", sp.Duration,
				"Source", sp.Source,
			),
			Body: body,
		})
	}
	return pipeline.Document{Title: sec.Title, Groups: []pipeline.Group{g}}, nil
}

func (b *sectionBuilder) items(ctx context.Context, sec ItemSection) (pipeline.Document, error) {
	g := pipeline.Group{}
	for _, it := range sec.Items {
		body, err := b.md.ToHTML(ctx, it.Description)
		if err != nil {
			return pipeline.Document{}, fmt.Errorf("magic item %q: %w", it.Name, err)
		}
		blk := pipeline.Block{
			Name:  it.Name,
			Meta:  it.Rarity,
			Facts: facts("Source", it.Source),
			Body:  body,
		}
		if it.Type != "" {
			blk.Tags = []string{it.Type}
		}
		switch {
		case it.Attunement && it.Attuned:
			blk.Note = "Requires attunement (attuned)"
		case it.Attunement:
			blk.Note = "Requires attunement"
		}
		g.Blocks = append(g.Blocks, blk)
	}
	return pipeline.Document{Title: sec.Title, Groups: []pipeline.Group{g}}, nil
}

func spellLevelLabel(level int) string {
	if level == 0 {
		return "Cantrip"
	}
	return fmt.Sprintf("Level %d", level)
}

// facts pairs labels with values, dropping empty values.
func facts(pairs ...string) []pipeline.Fact {
	var out []pipeline.Fact
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			continue
		}
		out = append(out, pipeline.Fact{Label: pairs[i], Value: pairs[i+1]})
	}
	return out
}
