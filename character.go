package charsheet

import (
	"context"
	"fmt"
	"strings"
)

// CharacterLoader returns a character's resolved display data.
// A missing character is reported with an error matching ErrCharacterNotFound.
type CharacterLoader interface {
	LoadCharacter(ctx context.Context, id string) (*Character, error)
}

// OwnerVerifier decides whether callerID owns characterID.
type OwnerVerifier interface {
	VerifyOwner(ctx context.Context, characterID, callerID string) (bool, error)
}

// Ability is a three-letter ability code.
type Ability string

const (
	STR Ability = "STR"
	DEX Ability = "DEX"
	CON Ability = "CON"
	INT Ability = "INT"
	WIS Ability = "WIS"
	CHA Ability = "CHA"
)

// Abilities lists the six abilities in sheet order.
var Abilities = []Ability{STR, DEX, CON, INT, WIS, CHA}

// Proficiency is a skill's training level.
type Proficiency string

const (
	ProficiencyNone       Proficiency = "NONE"
	ProficiencyHalf       Proficiency = "HALF"
	ProficiencyProficient Proficiency = "PROFICIENT"
	ProficiencyExpertise  Proficiency = "EXPERTISE"
)

// Trained reports whether the sheet's proficiency box should be checked.
func (p Proficiency) Trained() bool {
	return p == ProficiencyProficient || p == ProficiencyExpertise
}

// Character is everything printed for one character. All numbers are
// already resolved by the rules engine; nothing here is derived from game
// rules except display formatting.
type Character struct {
	ID         string       `yaml:"id"`
	Owner      string       `yaml:"owner"`
	Name       string       `yaml:"name"`
	PlayerName string       `yaml:"playerName"`
	Race       string       `yaml:"race"`
	Background string       `yaml:"background"`
	Alignment  string       `yaml:"alignment"`
	XP         int          `yaml:"xp"`
	ClassLevel string       `yaml:"classLevel"` // preformatted; built from Classes when empty
	Classes    []ClassLevel `yaml:"classes"`

	Sheet   Sheet    `yaml:"sheet"`
	Traits  Traits   `yaml:"traits"`
	Weapons []Weapon `yaml:"weapons"`

	Features   Features    `yaml:"features"`
	Spells     []Spell     `yaml:"spells"`
	MagicItems []MagicItem `yaml:"magicItems"`
}

// ClassLevel is one class entry of a (possibly multiclassed) character.
type ClassLevel struct {
	Name    string `yaml:"name"`
	Level   int    `yaml:"level"`
	HitDie  int    `yaml:"hitDie"` // die size, e.g. 10 for d10
	Current int    `yaml:"current"`
}

// Sheet is the resolved stat block.
type Sheet struct {
	Abilities        map[Ability]AbilityScore `yaml:"abilities"`
	ProficiencyBonus int                      `yaml:"proficiencyBonus"`
	AC               int                      `yaml:"ac"`
	Initiative       int                      `yaml:"initiative"`
	Speed            int                      `yaml:"speed"`
	HP               HitPoints                `yaml:"hp"`
	HitDice          HitDice                  `yaml:"hitDice"`
	Saves            map[Ability]Save         `yaml:"saves"`
	Skills           map[string]Skill         `yaml:"skills"`
	DeathSaves       DeathSaves               `yaml:"deathSaves"`
	Spellcasting     *Spellcasting            `yaml:"spellcasting"`
}

// AbilityScore is a score and its modifier.
type AbilityScore struct {
	Score    int `yaml:"score"`
	Modifier int `yaml:"modifier"`
}

// HitPoints holds current, maximum and temporary hit points.
type HitPoints struct {
	Current int `yaml:"current"`
	Max     int `yaml:"max"`
	Temp    int `yaml:"temp"`
}

// HitDice holds display strings such as "5d10 + 3d6". Empty strings are
// built from the character's classes.
type HitDice struct {
	Total   string `yaml:"total"`
	Current string `yaml:"current"`
}

// Save is a saving throw total.
type Save struct {
	Total      int  `yaml:"total"`
	Proficient bool `yaml:"proficient"`
}

// Skill is a skill total keyed by its display name, e.g. "Sleight of Hand".
type Skill struct {
	Total       int         `yaml:"total"`
	Proficiency Proficiency `yaml:"proficiency"`
}

// DeathSaves counts marked successes and failures, each 0 to 3.
type DeathSaves struct {
	Successes int `yaml:"successes"`
	Failures  int `yaml:"failures"`
}

// Spellcasting is the spell sheet header and slot table.
type Spellcasting struct {
	Class       string      `yaml:"class"`
	Ability     Ability     `yaml:"ability"`
	SaveDC      int         `yaml:"saveDC"`
	AttackBonus int         `yaml:"attackBonus"`
	Slots       []SpellSlot `yaml:"slots"`
}

// SpellSlot is the slot count for one spell level. Standard and pact
// slots are printed together.
type SpellSlot struct {
	Level    int `yaml:"level"`
	Standard int `yaml:"standard"`
	Pact     int `yaml:"pact"`
}

// Traits is the free text printed on the character page.
type Traits struct {
	Personality         string `yaml:"personality"`
	Ideals              string `yaml:"ideals"`
	Bonds               string `yaml:"bonds"`
	Flaws               string `yaml:"flaws"`
	Backstory           string `yaml:"backstory"`
	Notes               string `yaml:"notes"`
	Proficiencies       string `yaml:"proficiencies"`
	Languages           string `yaml:"languages"`
	Equipment           string `yaml:"equipment"`
	FeaturesAndTraits   string `yaml:"featuresAndTraits"`
	AttacksSpellcasting string `yaml:"attacksSpellcasting"`
}

// Weapon is one row of the attacks table.
type Weapon struct {
	Name        string `yaml:"name"`
	AttackBonus string `yaml:"attackBonus"`
	Damage      string `yaml:"damage"`
}

// Features groups features by the action they take.
type Features struct {
	Passive      []Feature `yaml:"passive"`
	Actions      []Feature `yaml:"actions"`
	BonusActions []Feature `yaml:"bonusActions"`
	Reactions    []Feature `yaml:"reactions"`
}

// Len returns the number of features across all groups.
func (f Features) Len() int {
	return len(f.Passive) + len(f.Actions) + len(f.BonusActions) + len(f.Reactions)
}

// Feature is a class, race or feat ability.
type Feature struct {
	Name        string `yaml:"name"`
	Source      string `yaml:"source"`
	Description string `yaml:"description"` // Markdown
	Usage       *Usage `yaml:"usage"`
}

// Usage is a per-rest use counter. A nil Remaining means the count is
// not tracked.
type Usage struct {
	Remaining *int   `yaml:"remaining"`
	Total     int    `yaml:"total"`
	Rest      string `yaml:"rest"` // e.g. "short rest"
}

// String formats u as "[remaining/total rest]".
func (u Usage) String() string {
	rem := ""
	if u.Remaining != nil {
		rem = fmt.Sprint(*u.Remaining)
	}
	s := fmt.Sprintf("%s/%d", rem, u.Total)
	if u.Rest != "" {
		s += " " + u.Rest
	}
	return "[" + s + "]"
}

// Spell is one known or prepared spell.
type Spell struct {
	Name          string `yaml:"name"`
	Level         int    `yaml:"level"` // 0 for cantrips
	School        string `yaml:"school"`
	CastingTime   string `yaml:"castingTime"`
	Range         string `yaml:"range"`
	Components    string `yaml:"components"`
	Duration      string `yaml:"duration"`
	Source        string `yaml:"source"`
	Ritual        bool   `yaml:"ritual"`
	Concentration bool   `yaml:"concentration"`
	Description   string `yaml:"description"`
}

// MagicItem is one carried magic item.
type MagicItem struct {
	Name        string `yaml:"name"`
	Rarity      string `yaml:"rarity"`
	Type        string `yaml:"type"`
	Attunement  bool   `yaml:"attunement"`
	Attuned     bool   `yaml:"attuned"`
	Source      string `yaml:"source"`
	Description string `yaml:"description"`
}

// classLevelText returns the preformatted class string, or builds
// "Fighter 5 / Wizard 3" from Classes.
func (c *Character) classLevelText() string {
	if c.ClassLevel != "" {
		return c.ClassLevel
	}
	parts := make([]string, 0, len(c.Classes))
	for _, cl := range c.Classes {
		if cl.Name == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d", cl.Name, cl.Level))
	}
	return strings.Join(parts, " / ")
}

// hitDiceText returns the total and current hit dice strings, building
// "5d10 + 3d6" from Classes when the sheet carries none.
func (c *Character) hitDiceText() (total, current string) {
	total, current = c.Sheet.HitDice.Total, c.Sheet.HitDice.Current
	if total == "" {
		total = joinDice(c.Classes, func(cl ClassLevel) int { return cl.Level })
	}
	if current == "" {
		current = joinDice(c.Classes, func(cl ClassLevel) int { return cl.Current })
	}
	return total, current
}

func joinDice(classes []ClassLevel, count func(ClassLevel) int) string {
	parts := make([]string, 0, len(classes))
	for _, cl := range classes {
		if cl.HitDie <= 0 || count(cl) <= 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%dd%d", count(cl), cl.HitDie))
	}
	return strings.Join(parts, " + ")
}
