package charsheet

import (
	"fmt"
	"maps"
)

// FieldAliasTable maps a logical key to the physical field names it may
// carry on a sheet template, in preference order. Template revisions differ
// in spelling and even in trailing spaces, so new revisions are supported by
// adding candidates here.
type FieldAliasTable map[string][]string

// Resolve returns the first candidate for key that has reports present.
func (t FieldAliasTable) Resolve(key string, has func(name string) bool) (string, bool) {
	for _, name := range t[key] {
		if has(name) {
			return name, true
		}
	}
	return "", false
}

// Logical keys shared by the alias table, the overlay table and the value set.
const (
	KeyCharacterName       = "characterName"
	KeyClassLevel          = "classLevel"
	KeyBackground          = "background"
	KeyPlayerName          = "playerName"
	KeyRace                = "race"
	KeyAlignment           = "alignment"
	KeyXP                  = "xp"
	KeyAC                  = "ac"
	KeyInitiative          = "initiative"
	KeySpeed               = "speed"
	KeyHPMax               = "hpMax"
	KeyHPCurrent           = "hpCurrent"
	KeyHPTemp              = "hpTemp"
	KeyHitDiceTotal        = "hitDiceTotal"
	KeyHitDiceCurrent      = "hitDiceCurrent"
	KeyProficiencyBonus    = "proficiencyBonus"
	KeyPassivePerception   = "passivePerception"
	KeyPersonality         = "personalityTraits"
	KeyIdeals              = "ideals"
	KeyBonds               = "bonds"
	KeyFlaws               = "flaws"
	KeyBackstory           = "backstory"
	KeyNotes               = "notes"
	KeyProficiencies       = "proficiencies"
	KeyLanguages           = "languages"
	KeyProficienciesLang   = "proficienciesLanguages"
	KeyEquipment           = "equipment"
	KeyFeaturesTraits      = "featuresTraits"
	KeyAttacksSpellcasting = "attacksSpellcasting"
	KeySpellcastingClass   = "spellcastingClass"
	KeySpellcastingAbility = "spellcastingAbility"
	KeySpellSaveDC         = "spellSaveDC"
	KeySpellAttackBonus    = "spellAttackBonus"
)

// KeyScore is the logical key of an ability score.
func KeyScore(a Ability) string { return "stat:" + string(a) + ":score" }

// KeyMod is the logical key of an ability modifier.
func KeyMod(a Ability) string { return "stat:" + string(a) + ":mod" }

func keySave(a Ability) string     { return "save:" + string(a) }
func keySaveProf(a Ability) string { return "saveProf:" + string(a) }
func keySkill(s string) string     { return "skill:" + s }
func keySkillProf(s string) string { return "skillProf:" + s }

func keyDeathSuccess(i int) string { return fmt.Sprintf("deathSuccess:%d", i) }
func keyDeathFailure(i int) string { return fmt.Sprintf("deathFailure:%d", i) }

func keyWeapon(i int, part string) string { return fmt.Sprintf("weapon:%d:%s", i, part) }
func keySpell(level, i int) string        { return fmt.Sprintf("spell:%d:%d", level, i) }
func keySlots(level int) string           { return fmt.Sprintf("slots:%d", level) }

// Skills lists skill display names in sheet order.
var Skills = []string{
	"Acrobatics", "Animal Handling", "Arcana", "Athletics", "Deception",
	"History", "Insight", "Intimidation", "Investigation", "Medicine",
	"Nature", "Perception", "Performance", "Persuasion", "Religion",
	"Sleight of Hand", "Stealth", "Survival",
}

// DefaultAliasTable covers the common fillable fifth-edition sheet and its
// later revisions.
var DefaultAliasTable = mergeAliases(baseAliases, spellAliases())

var baseAliases = FieldAliasTable{
	KeyCharacterName:     {"CharacterName", "CharacterName 2"},
	KeyClassLevel:        {"ClassLevel", "Class Level"},
	KeyBackground:        {"Background"},
	KeyPlayerName:        {"PlayerName"},
	KeyRace:              {"Race", "Race "},
	KeyAlignment:         {"Alignment"},
	KeyXP:                {"XP"},
	KeyAC:                {"AC"},
	KeyInitiative:        {"Initiative"},
	KeySpeed:             {"Speed"},
	KeyHPMax:             {"HPMax"},
	KeyHPCurrent:         {"HPCurrent"},
	KeyHPTemp:            {"HPTemp"},
	KeyHitDiceTotal:      {"HitDiceTotal", "HDTotal"},
	KeyHitDiceCurrent:    {"HitDiceCurrent", "HD"},
	KeyProficiencyBonus:  {"ProficiencyBonus", "ProfBonus"},
	KeyPassivePerception: {"Passive"},

	"stat:STR:score": {"STR", "Strength"},
	"stat:DEX:score": {"DEX", "Dexterity"},
	"stat:CON:score": {"CON", "Constitution"},
	"stat:INT:score": {"INT", "Intelligence"},
	"stat:WIS:score": {"WIS", "Wisdom"},
	"stat:CHA:score": {"CHA", "Charisma"},
	"stat:STR:mod":   {"STRmod", "StrengthMod"},
	"stat:DEX:mod":   {"DEXmod", "DEXmod ", "DexterityMod"},
	"stat:CON:mod":   {"CONmod", "ConstitutionMod"},
	"stat:INT:mod":   {"INTmod", "IntelligenceMod"},
	"stat:WIS:mod":   {"WISmod", "WisdomMod"},
	"stat:CHA:mod":   {"CHamod", "CHAmod", "CharismaMod"},

	"save:STR":     {"ST Strength", "StrengthSave"},
	"save:DEX":     {"ST Dexterity", "DexteritySave"},
	"save:CON":     {"ST Constitution", "ConstitutionSave"},
	"save:INT":     {"ST Intelligence", "IntelligenceSave"},
	"save:WIS":     {"ST Wisdom", "WisdomSave"},
	"save:CHA":     {"ST Charisma", "CharismaSave"},
	"saveProf:STR": {"Check Box 11", "StrengthSaveProf"},
	"saveProf:DEX": {"Check Box 18", "DexteritySaveProf"},
	"saveProf:CON": {"Check Box 19", "ConstitutionSaveProf"},
	"saveProf:INT": {"Check Box 20", "IntelligenceSaveProf"},
	"saveProf:WIS": {"Check Box 21", "WisdomSaveProf"},
	"saveProf:CHA": {"Check Box 22", "CharismaSaveProf"},

	"skill:Acrobatics":          {"Acrobatics"},
	"skill:Animal Handling":     {"Animal"},
	"skill:Arcana":              {"Arcana"},
	"skill:Athletics":           {"Athletics"},
	"skill:Deception":           {"Deception", "Deception "},
	"skill:History":             {"History", "History "},
	"skill:Insight":             {"Insight"},
	"skill:Intimidation":        {"Intimidation"},
	"skill:Investigation":       {"Investigation", "Investigation "},
	"skill:Medicine":            {"Medicine"},
	"skill:Nature":              {"Nature"},
	"skill:Perception":          {"Perception", "Perception "},
	"skill:Performance":         {"Performance"},
	"skill:Persuasion":          {"Persuasion"},
	"skill:Religion":            {"Religion"},
	"skill:Sleight of Hand":     {"SleightofHand"},
	"skill:Stealth":             {"Stealth", "Stealth "},
	"skill:Survival":            {"Survival"},
	"skillProf:Acrobatics":      {"Check Box 23"},
	"skillProf:Animal Handling": {"Check Box 24"},
	"skillProf:Arcana":          {"Check Box 25"},
	"skillProf:Athletics":       {"Check Box 26"},
	"skillProf:Deception":       {"Check Box 27"},
	"skillProf:History":         {"Check Box 28"},
	"skillProf:Insight":         {"Check Box 29"},
	"skillProf:Intimidation":    {"Check Box 30"},
	"skillProf:Investigation":   {"Check Box 31"},
	"skillProf:Medicine":        {"Check Box 32"},
	"skillProf:Nature":          {"Check Box 33"},
	"skillProf:Perception":      {"Check Box 34"},
	"skillProf:Performance":     {"Check Box 35"},
	"skillProf:Persuasion":      {"Check Box 36"},
	"skillProf:Religion":        {"Check Box 37"},
	"skillProf:Sleight of Hand": {"Check Box 38"},
	"skillProf:Stealth":         {"Check Box 39"},
	"skillProf:Survival":        {"Check Box 40"},

	"deathSuccess:1": {"Check Box 12"},
	"deathSuccess:2": {"Check Box 13"},
	"deathSuccess:3": {"Check Box 14"},
	"deathFailure:1": {"Check Box 15"},
	"deathFailure:2": {"Check Box 16"},
	"deathFailure:3": {"Check Box 17"},

	"weapon:1:name":   {"Wpn Name"},
	"weapon:1:attack": {"Wpn1 AtkBonus"},
	"weapon:1:damage": {"Wpn1 Damage"},
	"weapon:2:name":   {"Wpn Name 2"},
	"weapon:2:attack": {"Wpn2 AtkBonus "},
	"weapon:2:damage": {"Wpn2 Damage "},
	"weapon:3:name":   {"Wpn Name 3"},
	"weapon:3:attack": {"Wpn3 AtkBonus  "},
	"weapon:3:damage": {"Wpn3 Damage "},

	KeyPersonality:         {"PersonalityTraits", "PersonalityTraits "},
	KeyIdeals:              {"Ideals"},
	KeyBonds:               {"Bonds"},
	KeyFlaws:               {"Flaws"},
	KeyBackstory:           {"Backstory"},
	KeyNotes:               {"Notes"},
	KeyProficiencies:       {"Proficiencies"},
	KeyLanguages:           {"Languages"},
	KeyProficienciesLang:   {"ProficienciesLang"},
	KeyEquipment:           {"Equipment"},
	KeyFeaturesTraits:      {"Features and Traits"},
	KeyAttacksSpellcasting: {"AttacksSpellcasting"},

	KeySpellcastingClass:   {"Spellcasting Class 2", "SpellcastingClass"},
	KeySpellcastingAbility: {"SpellcastingAbility 2", "Spellcasting Ability 2", "SpellcastingAbility"},
	KeySpellSaveDC:         {"SpellSaveDC  2", "Spell Save DC  2", "SpellSaveDC"},
	KeySpellAttackBonus:    {"SpellAtkBonus 2", "Spell Attack Bonus 2", "SpellAttackBonus"},
}

// spellFieldNames lists the spell-name fields of the spell sheet by level,
// top to bottom. The numbering is the form's own and is not sequential.
var spellFieldNames = [10][]string{
	0: append([]string{"Spells 1014"}, spellRange(1016, 1022)...),
	1: append([]string{"Spells 1015"}, spellRange(1023, 1033)...),
	2: append([]string{"Spells 1046"}, spellRange(1034, 1045)...),
	3: append([]string{"Spells 1048", "Spells 1047"}, spellRange(1049, 1059)...),
	4: append([]string{"Spells 1061", "Spells 1060"}, spellRange(1062, 1072)...),
	5: append([]string{"Spells 1074", "Spells 1073"}, spellRange(1075, 1081)...),
	6: append([]string{"Spells 1083", "Spells 1082"}, spellRange(1084, 1090)...),
	7: append([]string{"Spells 1092", "Spells 1091"}, spellRange(1093, 1099)...),
	8: append([]string{"Spells 10101", "Spells 10100"}, spellRange(10102, 10106)...),
	9: append([]string{"Spells 10108", "Spells 10107", "Spells 10109"}, spellRange(101010, 101013)...),
}

func spellRange(from, to int) []string {
	out := make([]string, 0, to-from+1)
	for n := from; n <= to; n++ {
		out = append(out, fmt.Sprintf("Spells %d", n))
	}
	return out
}

func spellAliases() FieldAliasTable {
	t := FieldAliasTable{}
	for level, names := range spellFieldNames {
		for i, name := range names {
			t[keySpell(level, i+1)] = []string{name}
		}
	}
	for level := 1; level <= 9; level++ {
		t[keySlots(level)] = []string{
			fmt.Sprintf("SlotsTotal %d", 18+level),
			fmt.Sprintf("SlotsTotal%d", level),
		}
	}
	return t
}

func mergeAliases(tables ...FieldAliasTable) FieldAliasTable {
	out := FieldAliasTable{}
	for _, t := range tables {
		maps.Copy(out, t)
	}
	return out
}

// fieldStyle overrides a template field's font size and line mode.
type fieldStyle struct {
	size      float64
	multiline bool
}

var fieldStyles = func() map[string]fieldStyle {
	s := map[string]fieldStyle{
		KeyProficiencyBonus:  {size: 12},
		KeyAC:                {size: 12},
		KeyInitiative:        {size: 12},
		KeyPassivePerception: {size: 12},
		KeyHitDiceTotal:      {size: 6},
		KeyHitDiceCurrent:    {size: 6},

		KeyPersonality: {size: 10, multiline: true},
		KeyIdeals:      {size: 10, multiline: true},
		KeyBonds:       {size: 10, multiline: true},
		KeyFlaws:       {size: 10, multiline: true},
		KeyBackstory:   {size: 10, multiline: true},
		KeyNotes:       {size: 10, multiline: true},

		KeyEquipment:           {size: 7, multiline: true},
		KeyFeaturesTraits:      {size: 7, multiline: true},
		KeyProficiencies:       {size: 7, multiline: true},
		KeyLanguages:           {size: 7, multiline: true},
		KeyProficienciesLang:   {size: 7, multiline: true},
		KeyAttacksSpellcasting: {size: 8, multiline: true},

		KeySpellcastingClass: {size: 11},
	}
	for _, a := range Abilities {
		s[KeyMod(a)] = fieldStyle{size: 12}
		s[keySave(a)] = fieldStyle{size: 7}
	}
	for _, sk := range Skills {
		s[keySkill(sk)] = fieldStyle{size: 7}
	}
	for i := 1; i <= maxWeapons; i++ {
		for _, part := range []string{"name", "attack", "damage"} {
			s[keyWeapon(i, part)] = fieldStyle{size: 11}
		}
	}
	for level, names := range spellFieldNames {
		for i := range names {
			s[keySpell(level, i+1)] = fieldStyle{size: 9}
		}
	}
	return s
}()

// overflowSpec is the width and size a long single-line value is fitted
// against before it is written.
type overflowSpec struct {
	width float64
	size  float64
}

var overflowFields = map[string]overflowSpec{
	KeyCharacterName: {width: 200, size: 12},
	KeyClassLevel:    {width: 200, size: 10},
	KeyRace:          {width: 180, size: 10},
	KeyPlayerName:    {width: 180, size: 10},
}
