package state

import (
	"fmt"
	"strings"
)

// StatBonus maps stat names to a max HP or max mana gain per point gained.
// A stat matches when its normalized name contains any of the keywords.
type StatBonus struct {
	Keywords     []string `yaml:"keywords" json:"keywords"`
	HPPerPoint   int      `yaml:"hp_per_point" json:"hp_per_point"`
	ManaPerPoint int      `yaml:"mana_per_point" json:"mana_per_point"`
}

func (b StatBonus) matches(normalizedName string) bool {
	for _, k := range b.Keywords {
		if k = NormalizeName(k); k != "" && strings.Contains(normalizedName, k) {
			return true
		}
	}
	return false
}

// Rules are the tunable parameters of the merge engine.
type Rules struct {
	// LevelGrowthFactor multiplies the exp threshold on every level gained.
	LevelGrowthFactor float64 `yaml:"level_growth_factor" json:"level_growth_factor"`
	// MaxLevelUps bounds the level-up loop for a single turn.
	MaxLevelUps int `yaml:"max_level_ups" json:"max_level_ups"`
	// MinExpThreshold floors expToNextLevel.
	MinExpThreshold int `yaml:"min_exp_threshold" json:"min_exp_threshold"`

	StatBonuses []StatBonus `yaml:"stat_bonuses" json:"stat_bonuses"`

	// HistoryResultMaxLen is the width of a history result derived from
	// narrative text, excluding the ellipsis.
	HistoryResultMaxLen int `yaml:"history_result_max_len" json:"history_result_max_len"`

	// Starting values for a character sheet that leaves them out.
	DefaultMaxHP          int `yaml:"default_max_hp" json:"default_max_hp"`
	DefaultMaxMana        int `yaml:"default_max_mana" json:"default_max_mana"`
	DefaultExpToNextLevel int `yaml:"default_exp_to_next_level" json:"default_exp_to_next_level"`

	DefaultSkillMastery     string `yaml:"default_skill_mastery" json:"default_skill_mastery"`
	DefaultSkillDescription string `yaml:"default_skill_description" json:"default_skill_description"`
	DefaultQuestDescription string `yaml:"default_quest_description" json:"default_quest_description"`
	DefaultNPCNotes         string `yaml:"default_npc_notes" json:"default_npc_notes"`
	DefaultNPCName          string `yaml:"default_npc_name" json:"default_npc_name"`
	DefaultTroopDescription string `yaml:"default_troop_description" json:"default_troop_description"`
	DefaultGameOverReason   string `yaml:"default_game_over_reason" json:"default_game_over_reason"`
	DefaultHistoryResult    string `yaml:"default_history_result" json:"default_history_result"`
}

// DefaultRules returns the stock rule set. The keyword table covers the
// Vietnamese and English stat names common in cultivation settings.
func DefaultRules() Rules {
	return Rules{
		LevelGrowthFactor: 1.5,
		MaxLevelUps:       100,
		MinExpThreshold:   1,
		StatBonuses: []StatBonus{
			{Keywords: []string{"thể", "sinh", "vit", "cons", "sức", "str"}, HPPerPoint: 10},
			{Keywords: []string{"thần", "trí", "int", "wis", "mana", "hồn"}, ManaPerPoint: 10},
		},
		HistoryResultMaxLen:     50,
		DefaultMaxHP:            100,
		DefaultMaxMana:          50,
		DefaultExpToNextLevel:   100,
		DefaultSkillMastery:     "Sơ nhập",
		DefaultSkillDescription: "Kỹ năng mới lĩnh ngộ.",
		DefaultQuestDescription: "Nhiệm vụ mới.",
		DefaultNPCNotes:         "Mới gặp.",
		DefaultNPCName:          "Người lạ",
		DefaultTroopDescription: "Đơn vị mới chiêu mộ.",
		DefaultGameOverReason:   "Hành trình đã kết thúc.",
		DefaultHistoryResult:    "Tiếp tục hành trình.",
	}
}

// Validate reports rule values the engine cannot work with.
func (r Rules) Validate() error {
	if r.LevelGrowthFactor <= 1 {
		return fmt.Errorf("level growth factor must be greater than 1, got %v", r.LevelGrowthFactor)
	}
	if r.MaxLevelUps < 1 {
		return fmt.Errorf("max level ups must be positive, got %d", r.MaxLevelUps)
	}
	if r.MinExpThreshold < 1 {
		return fmt.Errorf("min exp threshold must be positive, got %d", r.MinExpThreshold)
	}
	if r.HistoryResultMaxLen < 1 {
		return fmt.Errorf("history result length must be positive, got %d", r.HistoryResultMaxLen)
	}
	return nil
}

// WithDefaults fills zero values from DefaultRules, so a partial rules file
// only has to name what it changes.
func (r Rules) WithDefaults() Rules {
	d := DefaultRules()
	if r.LevelGrowthFactor == 0 {
		r.LevelGrowthFactor = d.LevelGrowthFactor
	}
	if r.MaxLevelUps == 0 {
		r.MaxLevelUps = d.MaxLevelUps
	}
	if r.MinExpThreshold == 0 {
		r.MinExpThreshold = d.MinExpThreshold
	}
	if r.StatBonuses == nil {
		r.StatBonuses = d.StatBonuses
	}
	if r.HistoryResultMaxLen == 0 {
		r.HistoryResultMaxLen = d.HistoryResultMaxLen
	}
	if r.DefaultMaxHP == 0 {
		r.DefaultMaxHP = d.DefaultMaxHP
	}
	if r.DefaultMaxMana == 0 {
		r.DefaultMaxMana = d.DefaultMaxMana
	}
	if r.DefaultExpToNextLevel == 0 {
		r.DefaultExpToNextLevel = d.DefaultExpToNextLevel
	}
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&r.DefaultSkillMastery, d.DefaultSkillMastery)
	fill(&r.DefaultSkillDescription, d.DefaultSkillDescription)
	fill(&r.DefaultQuestDescription, d.DefaultQuestDescription)
	fill(&r.DefaultNPCNotes, d.DefaultNPCNotes)
	fill(&r.DefaultNPCName, d.DefaultNPCName)
	fill(&r.DefaultTroopDescription, d.DefaultTroopDescription)
	fill(&r.DefaultGameOverReason, d.DefaultGameOverReason)
	fill(&r.DefaultHistoryResult, d.DefaultHistoryResult)
	return r
}

// statBonus returns the max HP and max mana gained from delta points of the
// named stat. Only increases grant a bonus.
func (r Rules) statBonus(name string, delta int) (hp, mana int) {
	if delta <= 0 {
		return 0, 0
	}
	n := NormalizeName(name)
	for _, b := range r.StatBonuses {
		if b.matches(n) {
			hp += delta * b.HPPerPoint
			mana += delta * b.ManaPerPoint
		}
	}
	return hp, mana
}

// PrepareCharacter fills the progression fields a freshly created sheet
// may leave empty and gives every owned entity an id.
func (r Rules) PrepareCharacter(c *Character) {
	if c == nil {
		return
	}
	c.assignMissingIDs()
	if c.Level < 1 {
		c.Level = 1
	}
	if c.ExpToNextLevel <= 0 {
		c.ExpToNextLevel = r.DefaultExpToNextLevel
	}
	c.Exp = max(0, c.Exp)
	if c.MaxHP <= 0 {
		c.MaxHP = r.DefaultMaxHP
		if c.HP <= 0 {
			c.HP = c.MaxHP
		}
	}
	if c.MaxMana <= 0 {
		c.MaxMana = r.DefaultMaxMana
		if c.Mana <= 0 {
			c.Mana = c.MaxMana
		}
	}
	c.HP = min(c.HP, c.MaxHP)
	c.Mana = min(c.Mana, c.MaxMana)
}
