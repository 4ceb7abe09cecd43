package state

// Stat is a named numeric value such as a core attribute or a resistance.
type Stat struct {
	Name        string `json:"name"`
	Value       int    `json:"value"`
	Description string `json:"description,omitempty"`
}

type ItemCategory string

const (
	CategoryEquipment  ItemCategory = "equipment"
	CategoryConsumable ItemCategory = "consumable"
	CategoryMaterial   ItemCategory = "material"
	CategoryCurrency   ItemCategory = "currency"
)

// ParseItemCategory normalizes a category name. ok is false for unknown values.
func ParseItemCategory(s string) (ItemCategory, bool) {
	c := ItemCategory(NormalizeName(s))
	switch c {
	case CategoryEquipment, CategoryConsumable, CategoryMaterial, CategoryCurrency:
		return c, true
	}
	return "", false
}

// Stackable categories keep one row per item name.
func (c ItemCategory) Stackable() bool {
	switch c {
	case CategoryConsumable, CategoryMaterial, CategoryCurrency:
		return true
	}
	return false
}

type InventoryItem struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Quantity    int          `json:"quantity"`
	Category    ItemCategory `json:"category"`
	Type        string       `json:"type,omitempty"`
	Rank        string       `json:"rank,omitempty"`
	Effect      string       `json:"effect,omitempty"`
	Description string       `json:"description,omitempty"`
	IsEquipped  bool         `json:"isEquipped,omitempty"` // equipment only
}

type SkillType string

const (
	SkillAttack      SkillType = "Attack"
	SkillDefense     SkillType = "Defense"
	SkillSupport     SkillType = "Support"
	SkillPassive     SkillType = "Passive"
	SkillMovement    SkillType = "Movement"
	SkillSpecial     SkillType = "Special"
	SkillCultivation SkillType = "Cultivation"
)

var skillTypes = []SkillType{SkillAttack, SkillDefense, SkillSupport, SkillPassive, SkillMovement, SkillSpecial, SkillCultivation}

// ParseSkillType matches a skill type case-insensitively.
func ParseSkillType(s string) (SkillType, bool) {
	n := NormalizeName(s)
	for _, t := range skillTypes {
		if NormalizeName(string(t)) == n {
			return t, true
		}
	}
	return "", false
}

type Skill struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        SkillType `json:"type"`
	Description string    `json:"description"`
	Mastery     string    `json:"mastery"`
	Rank        string    `json:"rank,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"` // generated icon, never sent to the narrator
}

type TraitType string

const (
	TraitBloodline  TraitType = "bloodline"
	TraitDivineBody TraitType = "divine_body"
	TraitBuff       TraitType = "buff"
	TraitDebuff     TraitType = "debuff"
	TraitMental     TraitType = "mental"
	TraitSpecial    TraitType = "special"
)

// ParseTraitType normalizes a trait type. ok is false for unknown values.
func ParseTraitType(s string) (TraitType, bool) {
	t := TraitType(NormalizeName(s))
	switch t {
	case TraitBloodline, TraitDivineBody, TraitBuff, TraitDebuff, TraitMental, TraitSpecial:
		return t, true
	}
	return "", false
}

// Trait is a bloodline, divine body or status effect. A nil Duration means
// the trait is permanent.
type Trait struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Type        TraitType `json:"type"`
	Description string    `json:"description"`
	Quality     string    `json:"quality,omitempty"`
	Duration    *int      `json:"duration,omitempty"`
	Effect      string    `json:"effect,omitempty"`
}

type AchievementType string

const (
	AchievementCombat      AchievementType = "combat"
	AchievementCollection  AchievementType = "collection"
	AchievementExploration AchievementType = "exploration"
	AchievementMilestone   AchievementType = "milestone"
)

// Achievement is fixed at character creation; only IsUnlocked changes later.
type Achievement struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Condition   string          `json:"condition"` // read by the narrator, not by this package
	Type        AchievementType `json:"type"`
	IsUnlocked  bool            `json:"isUnlocked"`
	Reward      string          `json:"reward,omitempty"`
}

type QuestStatus string

const (
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestFailed    QuestStatus = "failed"
)

func ParseQuestStatus(s string) (QuestStatus, bool) {
	q := QuestStatus(NormalizeName(s))
	switch q {
	case QuestActive, QuestCompleted, QuestFailed:
		return q, true
	}
	return "", false
}

type Quest struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Status      QuestStatus `json:"status"`
	Progress    string      `json:"progress,omitempty"`
}

// Character is the player character sheet.
type Character struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Appearance  string `json:"appearance,omitempty"`
	Personality string `json:"personality,omitempty"`
	Race        string `json:"race"`
	Class       string `json:"class"`
	Background  string `json:"background,omitempty"`

	Level          int    `json:"level"`
	LevelName      string `json:"levelName,omitempty"`
	Exp            int    `json:"exp"`
	ExpToNextLevel int    `json:"expToNextLevel"`
	HP             int    `json:"hp"`
	MaxHP          int    `json:"maxHp"`
	Mana           int    `json:"mana"`
	MaxMana        int    `json:"maxMana"`

	Stats       []Stat          `json:"stats,omitempty"`
	Resistances []Stat          `json:"resistances,omitempty"`
	Inventory   []InventoryItem `json:"inventory,omitempty"`
	Skills      []Skill         `json:"skills,omitempty"`

	Bloodlines     []Trait `json:"bloodlines,omitempty"`
	DivineBodies   []Trait `json:"divineBodies,omitempty"`
	ActiveStatuses []Trait `json:"activeStatuses,omitempty"`

	Achievements      []Achievement `json:"achievements,omitempty"`
	Quests            []Quest       `json:"quests,omitempty"`
	PermanentInjuries []string      `json:"permanentInjuries,omitempty"`
	Talents           []string      `json:"talents,omitempty"`
}

// assignMissingIDs gives every owned entity an id.
func (c *Character) assignMissingIDs() {
	for i := range c.Inventory {
		if c.Inventory[i].ID == "" {
			c.Inventory[i].ID = NewID()
		}
	}
	for i := range c.Skills {
		if c.Skills[i].ID == "" {
			c.Skills[i].ID = NewID()
		}
	}
	for _, list := range [][]Trait{c.Bloodlines, c.DivineBodies, c.ActiveStatuses} {
		for i := range list {
			if list[i].ID == "" {
				list[i].ID = NewID()
			}
		}
	}
	for i := range c.Achievements {
		if c.Achievements[i].ID == "" {
			c.Achievements[i].ID = NewID()
		}
	}
	for i := range c.Quests {
		if c.Quests[i].ID == "" {
			c.Quests[i].ID = NewID()
		}
	}
}

// traitList returns a pointer to the role-list a trait type lives in.
// Every type other than bloodline and divine_body is an active status.
func (c *Character) traitList(t TraitType) *[]Trait {
	switch t {
	case TraitBloodline:
		return &c.Bloodlines
	case TraitDivineBody:
		return &c.DivineBodies
	default:
		return &c.ActiveStatuses
	}
}
