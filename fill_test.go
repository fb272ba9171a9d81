package charsheet

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/alnah/go-charsheet/internal/pdfform/pdftest"
)

func TestComputeValues(t *testing.T) {
	t.Parallel()

	c := aric()
	c.Sheet.HP.Temp = 5
	c.Sheet.Abilities[CON] = AbilityScore{Score: 8, Modifier: -1}
	c.Traits.Proficiencies = "Light armor"
	c.Traits.Languages = "Common, Dwarvish"
	c.Sheet.Skills["Stealth"] = Skill{Total: 5, Proficiency: ProficiencyHalf}
	c.Sheet.Skills["Athletics"] = Skill{Total: 9, Proficiency: ProficiencyExpertise}

	v := computeValues(c)

	text := map[string]string{
		KeyAC:                  "18",
		KeyHPTemp:              "5",
		KeyInitiative:          "+2",
		KeyPassivePerception:   "14",
		KeyMod(CON):            "-1",
		KeyScore(CON):          "8",
		keySave(STR):           "+6",
		keySkill("Stealth"):    "+5",
		KeyProficienciesLang:   "Light armor\n\nCommon, Dwarvish",
		keyWeapon(1, "name"):   "Longsword",
		keyWeapon(1, "damage"): "1d8+3 slashing",
	}
	for k, want := range text {
		if got := v.text[k]; got != want {
			t.Errorf("text[%q] = %q, want %q", k, got, want)
		}
	}

	checks := map[string]bool{
		keySaveProf(STR):           true,
		keySkillProf("Perception"): true,
		keySkillProf("Athletics"):  true,
		keySkillProf("Stealth"):    false,
		keyDeathSuccess(2):         true,
		keyDeathSuccess(3):         false,
		keyDeathFailure(1):         false,
	}
	for k, want := range checks {
		if got, ok := v.checks[k]; !ok || got != want {
			t.Errorf("checks[%q] = %v (present %v), want %v", k, got, ok, want)
		}
	}

	if _, ok := v.text[KeyScore(WIS)]; ok {
		t.Error("missing ability should produce no value")
	}
	if _, ok := v.text[KeySpellSaveDC]; ok {
		t.Error("non-caster should have no spellcasting values")
	}
}

func TestComputeValues_ZeroTempHPIsBlank(t *testing.T) {
	t.Parallel()

	if got := computeValues(aric()).text[KeyHPTemp]; got != "" {
		t.Errorf("hpTemp = %q, want blank", got)
	}
}

func TestComputeValues_Spellcasting(t *testing.T) {
	t.Parallel()

	c := aric()
	c.Sheet.Spellcasting = &Spellcasting{
		Class:       "Wizard",
		Ability:     INT,
		SaveDC:      13,
		AttackBonus: 5,
		Slots: []SpellSlot{
			{Level: 1, Standard: 4},
			{Level: 2, Standard: 2, Pact: 1},
			{Level: 3, Pact: 2},
			{Level: 12, Standard: 1},
		},
	}
	c.Spells = []Spell{
		{Name: "Shield", Level: 1},
		{Name: "Burning Hands", Level: 1},
		{Name: "Mage Hand", Level: 0},
	}

	v := computeValues(c)
	want := map[string]string{
		KeySpellcastingClass:   "Wizard",
		KeySpellcastingAbility: "INT",
		KeySpellSaveDC:         "13",
		KeySpellAttackBonus:    "+5",
		keySlots(1):            "4",
		keySlots(2):            "2 + 1",
		keySlots(3):            "2",
		keySpell(0, 1):         "Mage Hand",
		keySpell(1, 1):         "Burning Hands",
		keySpell(1, 2):         "Shield",
	}
	for k, w := range want {
		if got := v.text[k]; got != w {
			t.Errorf("text[%q] = %q, want %q", k, got, w)
		}
	}
	if _, ok := v.text[keySlots(12)]; ok {
		t.Error("out-of-range slot level should be dropped")
	}
}

func TestComputeValues_WeaponRowsCapped(t *testing.T) {
	t.Parallel()

	c := aric()
	c.Weapons = []Weapon{{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"}}

	v := computeValues(c)
	if got := v.text[keyWeapon(3, "name")]; got != "C" {
		t.Errorf("third weapon = %q, want C", got)
	}
	if _, ok := v.text[keyWeapon(4, "name")]; ok {
		t.Error("fourth weapon should not get a row")
	}
}

func TestFormatSlots(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   SpellSlot
		want string
	}{
		{SpellSlot{Standard: 3}, "3"},
		{SpellSlot{Pact: 2}, "2"},
		{SpellSlot{Standard: 3, Pact: 2}, "3 + 2"},
		{SpellSlot{}, ""},
	}
	for _, tt := range tests {
		if got := formatSlots(tt.in); got != tt.want {
			t.Errorf("formatSlots(%+v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFieldAliasTable_Resolve(t *testing.T) {
	t.Parallel()

	table := FieldAliasTable{"race": {"Race", "Race ", "RaceName"}}
	present := func(names ...string) func(string) bool {
		return func(n string) bool {
			for _, p := range names {
				if p == n {
					return true
				}
			}
			return false
		}
	}

	tests := []struct {
		name   string
		has    func(string) bool
		want   string
		wantOK bool
	}{
		{"first candidate wins", present("RaceName", "Race"), "Race", true},
		{"trailing space variant", present("Race "), "Race ", true},
		{"last candidate", present("RaceName"), "RaceName", true},
		{"no candidate", present("Other"), "", false},
	}
	for _, tt := range tests {
		got, ok := table.Resolve("race", tt.has)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%s: Resolve = (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}

	if _, ok := table.Resolve("unknown", present("Race")); ok {
		t.Error("unknown key should not resolve")
	}
}

func TestDefaultAliasTable_CoversValues(t *testing.T) {
	t.Parallel()

	c := withSpells(aric())
	c.Sheet.Spellcasting = &Spellcasting{Class: "Wizard", Slots: []SpellSlot{{Level: 9, Standard: 1}}}
	for _, a := range Abilities {
		c.Sheet.Abilities[a] = AbilityScore{Score: 10}
		c.Sheet.Saves[a] = Save{}
	}
	for _, s := range Skills {
		c.Sheet.Skills[s] = Skill{}
	}
	c.Weapons = []Weapon{{Name: "A"}, {Name: "B"}, {Name: "C"}}

	v := computeValues(c)
	for _, k := range append(v.textKeys(), v.checkKeys()...) {
		if len(DefaultAliasTable[k]) == 0 {
			t.Errorf("key %q has no field candidates", k)
		}
	}
}

func TestDefaultOverlayTable_KeysAreComputed(t *testing.T) {
	t.Parallel()

	c := aric()
	for _, a := range Abilities {
		c.Sheet.Abilities[a] = AbilityScore{Score: 10}
	}
	v := computeValues(c)

	for _, o := range DefaultOverlayTable {
		if _, ok := v.text[o.Key]; !ok {
			t.Errorf("overlay key %q is never computed", o.Key)
		}
		if o.PageIndex != 0 {
			t.Errorf("overlay key %q on page %d", o.Key, o.PageIndex)
		}
	}
}

func TestSpellFieldNames_Unique(t *testing.T) {
	t.Parallel()

	seen := map[string]int{}
	for level, names := range spellFieldNames {
		for _, n := range names {
			if prev, dup := seen[n]; dup {
				t.Errorf("%q used for level %d and %d", n, prev, level)
			}
			seen[n] = level
		}
	}
}

func TestChooseStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		pdf  []byte
		want FillStrategy
	}{
		{"form fields", fieldTemplate(t), FillTemplate},
		{"no form", pdftest.Blank(t, 1), FillOverlay},
	}
	for _, tt := range tests {
		got, err := chooseStrategy(openPDF(t, tt.pdf))
		if err != nil {
			t.Fatalf("%s: chooseStrategy: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("%s: strategy = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestFillStrategy_String(t *testing.T) {
	t.Parallel()

	got := []string{FillTemplate.String(), FillOverlay.String(), FillStrategy(0).String()}
	want := []string{"template", "overlay", "FillStrategy(0)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("String() mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_UnknownStrategy(t *testing.T) {
	t.Parallel()

	doc := openPDF(t, pdftest.Blank(t, 1))
	err := filler{}.fill(FillStrategy(9), doc, computeValues(aric()), nil)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestFillTemplate_SkipsMismatchedFieldType(t *testing.T) {
	t.Parallel()

	// "AC" is a check box here, so the text value cannot land in it.
	tmpl := pdftest.Build(t, pdftest.Template{
		Pages:      1,
		TextFields: []pdftest.TextField{{Name: "Speed", Rect: [4]float64{100, 700, 200, 716}}},
		CheckBoxes: []string{"AC"},
	})
	doc := openPDF(t, tmpl)

	f := filler{aliases: DefaultAliasTable}
	if err := f.fillTemplate(doc, computeValues(aric()), nil); err != nil {
		t.Fatalf("fillTemplate: %v", err)
	}
	if got := fieldValue(t, doc, "Speed"); got != "30" {
		t.Errorf("Speed = %q, want 30", got)
	}
}
