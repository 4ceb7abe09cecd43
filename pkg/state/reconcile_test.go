package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCharacter() *Character {
	return &Character{
		Name:           "Tiêu Viêm",
		Race:           "Human",
		Class:          "Alchemist",
		Level:          3,
		LevelName:      "Đấu Giả",
		Exp:            40,
		ExpToNextLevel: 100,
		HP:             80,
		MaxHP:          100,
		Mana:           30,
		MaxMana:        50,
		Stats: []Stat{
			{Name: "Sức mạnh", Value: 10},
			{Name: "Thần thức", Value: 8},
			{Name: "Nhanh nhẹn", Value: 6},
		},
		Resistances: []Stat{{Name: "Fire", Value: 20}},
		Inventory: []InventoryItem{
			{ID: "i1", Name: "Healing Pill", Quantity: 2, Category: CategoryConsumable},
		},
		Skills: []Skill{{ID: "s1", Name: "Flame Palm", Type: SkillAttack, Description: "A palm of fire.", Mastery: "Novice"}},
		ActiveStatuses: []Trait{
			{ID: "t1", Name: "Focused", Type: TraitBuff, Duration: intPtr(2)},
		},
		Achievements: []Achievement{{ID: "a1", Name: "First Step", Type: AchievementMilestone}},
	}
}

func TestReconcileCharacter_LevelUp(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		name      string
		prev      func() *Character
		update    CharacterUpdate
		wantLevel int
		wantExp   int
		wantNext  int
	}{
		{
			name:      "two levels from 250 exp",
			prev:      func() *Character { c := testCharacter(); c.Level = 1; c.Exp = 0; return c },
			update:    CharacterUpdate{Exp: Int(250)},
			wantLevel: 3, wantExp: 0, wantNext: 225,
		},
		{
			name:      "below threshold",
			prev:      testCharacter,
			update:    CharacterUpdate{Exp: Int(99)},
			wantLevel: 3, wantExp: 99, wantNext: 100,
		},
		{
			name:      "negative exp clamps to zero",
			prev:      testCharacter,
			update:    CharacterUpdate{Exp: Int(-5)},
			wantLevel: 3, wantExp: 0, wantNext: 100,
		},
		{
			name:      "level raise without threshold rescales",
			prev:      testCharacter,
			update:    CharacterUpdate{Level: Int(5)},
			wantLevel: 5, wantExp: 40, wantNext: 225,
		},
		{
			name:      "level raise with larger threshold keeps it",
			prev:      testCharacter,
			update:    CharacterUpdate{Level: Int(4), ExpToNextLevel: Int(300)},
			wantLevel: 4, wantExp: 40, wantNext: 300,
		},
		{
			name:      "invalid level ignored",
			prev:      testCharacter,
			update:    CharacterUpdate{Level: Int(0)},
			wantLevel: 3, wantExp: 40, wantNext: 100,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := r.ReconcileCharacter(tt.prev(), &TurnResponse{StatUpdates: &tt.update}, false)
			assert.Equal(t, tt.wantLevel, c.Level)
			assert.Equal(t, tt.wantExp, c.Exp)
			assert.Equal(t, tt.wantNext, c.ExpToNextLevel)
		})
	}
}

func TestReconcileCharacter_LevelUpTerminates(t *testing.T) {
	r := DefaultRules()
	c := testCharacter()
	c.ExpToNextLevel = 0
	c.Exp = 0

	out := r.ReconcileCharacter(c, &TurnResponse{StatUpdates: &CharacterUpdate{Exp: Int(1 << 30)}}, false)

	assert.LessOrEqual(t, out.Level, c.Level+r.MaxLevelUps)
	assert.Greater(t, out.Level, c.Level)
	assert.GreaterOrEqual(t, out.Exp, 0)
	assert.GreaterOrEqual(t, out.ExpToNextLevel, r.MinExpThreshold)
}

func TestReconcileCharacter_MaxBonusAndClamp(t *testing.T) {
	r := DefaultRules()

	tests := []struct {
		name        string
		update      CharacterUpdate
		wantHP      int
		wantMaxHP   int
		wantMana    int
		wantMaxMana int
	}{
		{
			name:   "health stat increase raises max hp",
			update: CharacterUpdate{Stats: []StatUpdate{{Name: "Sức mạnh", Value: Int(12)}}},
			wantHP: 80, wantMaxHP: 120, wantMana: 30, wantMaxMana: 50,
		},
		{
			name:   "mind stat increase raises max mana",
			update: CharacterUpdate{Stats: []StatUpdate{{Name: "thần thức", Value: Int(9)}}},
			wantHP: 80, wantMaxHP: 100, wantMana: 30, wantMaxMana: 60,
		},
		{
			name:   "decrease grants nothing",
			update: CharacterUpdate{Stats: []StatUpdate{{Name: "Sức mạnh", Value: Int(5)}}},
			wantHP: 80, wantMaxHP: 100, wantMana: 30, wantMaxMana: 50,
		},
		{
			name:   "unrelated stat grants nothing",
			update: CharacterUpdate{Stats: []StatUpdate{{Name: "Nhanh nhẹn", Value: Int(20)}}},
			wantHP: 80, wantMaxHP: 100, wantMana: 30, wantMaxMana: 50,
		},
		{
			name: "explicit max wins over bonus",
			update: CharacterUpdate{
				MaxHP: Int(150),
				Stats: []StatUpdate{{Name: "Sức mạnh", Value: Int(20)}},
			},
			wantHP: 80, wantMaxHP: 150, wantMana: 30, wantMaxMana: 50,
		},
		{
			name:   "hp above max is clamped",
			update: CharacterUpdate{HP: Int(500), Mana: Int(70)},
			wantHP: 100, wantMaxHP: 100, wantMana: 50, wantMaxMana: 50,
		},
		{
			name:   "lowered max clamps current",
			update: CharacterUpdate{MaxHP: Int(60), MaxMana: Int(10)},
			wantHP: 60, wantMaxHP: 60, wantMana: 10, wantMaxMana: 10,
		},
		{
			name:   "zero max is ignored",
			update: CharacterUpdate{MaxHP: Int(0)},
			wantHP: 80, wantMaxHP: 100, wantMana: 30, wantMaxMana: 50,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := r.ReconcileCharacter(testCharacter(), &TurnResponse{StatUpdates: &tt.update}, false)
			assert.Equal(t, tt.wantHP, c.HP, "hp")
			assert.Equal(t, tt.wantMaxHP, c.MaxHP, "maxHp")
			assert.Equal(t, tt.wantMana, c.Mana, "mana")
			assert.Equal(t, tt.wantMaxMana, c.MaxMana, "maxMana")
		})
	}
}

func TestReconcileCharacter_CustomBonusTable(t *testing.T) {
	r := DefaultRules()
	r.StatBonuses = []StatBonus{{Keywords: []string{"Qi"}, HPPerPoint: 2, ManaPerPoint: 5}}

	prev := testCharacter()
	prev.Stats = append(prev.Stats, Stat{Name: "Qi Flow", Value: 1})
	c := r.ReconcileCharacter(prev, &TurnResponse{StatUpdates: &CharacterUpdate{
		Stats: []StatUpdate{{Name: "Qi Flow", Value: Int(4)}, {Name: "Sức mạnh", Value: Int(50)}},
	}}, false)

	assert.Equal(t, 106, c.MaxHP)
	assert.Equal(t, 65, c.MaxMana)
}

func TestReconcileCharacter_DoesNotMutatePrev(t *testing.T) {
	r := DefaultRules()
	prev := testCharacter()
	before, err := (&GameState{Character: prev}).DeepCopy()
	require.NoError(t, err)

	_ = r.ReconcileCharacter(prev, &TurnResponse{
		StatUpdates:            &CharacterUpdate{HP: Int(1), Stats: []StatUpdate{{Name: "Sức mạnh", Value: Int(99)}}},
		AddedInventoryItems:    []ItemUpdate{{Name: "Healing Pill", Quantity: Int(-1)}},
		TraitUpdates:           []TraitUpdate{{Name: "Focused", DurationChange: Int(4)}},
		UnlockedAchievementIDs: []string{"a1"},
	}, true)

	assert.Equal(t, before.Character, prev)
}

func TestReconcileCharacter_IdentityFieldsAndLists(t *testing.T) {
	r := DefaultRules()
	prev := testCharacter()
	prev.PermanentInjuries = []string{"Scarred cheek"}

	c := r.ReconcileCharacter(prev, &TurnResponse{StatUpdates: &CharacterUpdate{
		LevelName:         "Đấu Sư",
		Title:             "Flame Emperor",
		PermanentInjuries: []string{"Scarred cheek", " ", "Lost finger"},
	}}, false)

	assert.Equal(t, "Tiêu Viêm", c.Name)
	assert.Equal(t, "Human", c.Race)
	assert.Equal(t, "Đấu Sư", c.LevelName)
	assert.Equal(t, "Flame Emperor", c.Title)
	assert.Equal(t, []string{"Scarred cheek", "Lost finger"}, c.PermanentInjuries)

	c = r.ReconcileCharacter(c, &TurnResponse{StatUpdates: &CharacterUpdate{}}, false)
	assert.Equal(t, []string{"Scarred cheek", "Lost finger"}, c.PermanentInjuries)
}

func TestReconcileCharacter_StatusDecayBeforeUpdates(t *testing.T) {
	r := DefaultRules()
	prev := testCharacter()
	prev.ActiveStatuses = []Trait{
		{ID: "t1", Name: "Focused", Type: TraitBuff, Duration: intPtr(1)},
		{ID: "t2", Name: "Bleeding", Type: TraitDebuff, Duration: intPtr(2)},
	}
	prev.Bloodlines = []Trait{{ID: "b1", Name: "Dragon", Type: TraitBloodline, Duration: intPtr(1)}}

	c := r.ReconcileCharacter(prev, &TurnResponse{TraitUpdates: []TraitUpdate{
		{Name: "Bleeding", SetDuration: Int(5)},
	}}, true)

	require.Len(t, c.ActiveStatuses, 1)
	assert.Equal(t, "Bleeding", c.ActiveStatuses[0].Name)
	assert.Equal(t, 5, *c.ActiveStatuses[0].Duration)
	require.Len(t, c.Bloodlines, 1, "only active statuses decay")
	assert.Equal(t, 1, *c.Bloodlines[0].Duration)
}
