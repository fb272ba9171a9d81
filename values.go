package charsheet

import (
	"slices"
	"strconv"
	"strings"
)

// maxWeapons is the number of rows in the sheet's attack table.
const maxWeapons = 3

// valueSet is every printable page-0 value keyed by logical key. Both fill
// strategies write from the same set, so a stat reads the same whichever
// one runs.
type valueSet struct {
	text   map[string]string
	checks map[string]bool
}

// textKeys returns the text keys in a stable order.
func (v valueSet) textKeys() []string {
	keys := make([]string, 0, len(v.text))
	for k := range v.text {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (v valueSet) checkKeys() []string {
	keys := make([]string, 0, len(v.checks))
	for k := range v.checks {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func signed(n int) string {
	if n >= 0 {
		return "+" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// optional formats n, leaving zero blank.
func optional(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// computeValues derives the page-0 value set from a character.
func computeValues(c *Character) valueSet {
	v := valueSet{text: map[string]string{}, checks: map[string]bool{}}
	s := &c.Sheet
	hdTotal, hdCurrent := c.hitDiceText()

	for k, val := range map[string]string{
		KeyCharacterName:    c.Name,
		KeyClassLevel:       c.classLevelText(),
		KeyBackground:       c.Background,
		KeyPlayerName:       c.PlayerName,
		KeyRace:             c.Race,
		KeyAlignment:        c.Alignment,
		KeyXP:               strconv.Itoa(c.XP),
		KeyAC:               strconv.Itoa(s.AC),
		KeyInitiative:       signed(s.Initiative),
		KeySpeed:            strconv.Itoa(s.Speed),
		KeyHPMax:            strconv.Itoa(s.HP.Max),
		KeyHPCurrent:        strconv.Itoa(s.HP.Current),
		KeyHPTemp:           optional(s.HP.Temp),
		KeyHitDiceTotal:     hdTotal,
		KeyHitDiceCurrent:   hdCurrent,
		KeyProficiencyBonus: signed(s.ProficiencyBonus),

		KeyPersonality:         c.Traits.Personality,
		KeyIdeals:              c.Traits.Ideals,
		KeyBonds:               c.Traits.Bonds,
		KeyFlaws:               c.Traits.Flaws,
		KeyBackstory:           c.Traits.Backstory,
		KeyNotes:               c.Traits.Notes,
		KeyProficiencies:       c.Traits.Proficiencies,
		KeyLanguages:           c.Traits.Languages,
		KeyProficienciesLang:   joinNonEmpty("\n\n", c.Traits.Proficiencies, c.Traits.Languages),
		KeyEquipment:           c.Traits.Equipment,
		KeyFeaturesTraits:      c.Traits.FeaturesAndTraits,
		KeyAttacksSpellcasting: c.Traits.AttacksSpellcasting,
	} {
		v.text[k] = val
	}

	for _, a := range Abilities {
		if sc, ok := s.Abilities[a]; ok {
			v.text[KeyScore(a)] = strconv.Itoa(sc.Score)
			v.text[KeyMod(a)] = signed(sc.Modifier)
		}
		if sv, ok := s.Saves[a]; ok {
			v.text[keySave(a)] = signed(sv.Total)
			v.checks[keySaveProf(a)] = sv.Proficient
		}
	}

	for _, name := range Skills {
		sk, ok := s.Skills[name]
		if !ok {
			continue
		}
		v.text[keySkill(name)] = signed(sk.Total)
		v.checks[keySkillProf(name)] = sk.Proficiency.Trained()
	}
	if p, ok := s.Skills["Perception"]; ok {
		v.text[KeyPassivePerception] = strconv.Itoa(10 + p.Total)
	}

	for i := 1; i <= 3; i++ {
		v.checks[keyDeathSuccess(i)] = i <= s.DeathSaves.Successes
		v.checks[keyDeathFailure(i)] = i <= s.DeathSaves.Failures
	}

	for i, w := range c.Weapons {
		if i >= maxWeapons {
			break
		}
		v.text[keyWeapon(i+1, "name")] = w.Name
		v.text[keyWeapon(i+1, "attack")] = w.AttackBonus
		v.text[keyWeapon(i+1, "damage")] = w.Damage
	}

	if sc := s.Spellcasting; sc != nil {
		v.text[KeySpellcastingClass] = sc.Class
		v.text[KeySpellcastingAbility] = string(sc.Ability)
		v.text[KeySpellSaveDC] = strconv.Itoa(sc.SaveDC)
		v.text[KeySpellAttackBonus] = signed(sc.AttackBonus)
		for _, slot := range sc.Slots {
			if slot.Level < 1 || slot.Level > 9 {
				continue
			}
			v.text[keySlots(slot.Level)] = formatSlots(slot)
		}
	}

	perLevel := map[int]int{}
	for _, sp := range sortedSpells(c.Spells) {
		if sp.Level < 0 || sp.Level >= len(spellFieldNames) {
			continue
		}
		perLevel[sp.Level]++
		if perLevel[sp.Level] > len(spellFieldNames[sp.Level]) {
			continue
		}
		v.text[keySpell(sp.Level, perLevel[sp.Level])] = sp.Name
	}

	return v
}

// formatSlots prints "std + pact", or the single non-zero count.
func formatSlots(s SpellSlot) string {
	switch {
	case s.Standard > 0 && s.Pact > 0:
		return strconv.Itoa(s.Standard) + " + " + strconv.Itoa(s.Pact)
	case s.Pact > 0:
		return strconv.Itoa(s.Pact)
	case s.Standard > 0:
		return strconv.Itoa(s.Standard)
	}
	return ""
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
