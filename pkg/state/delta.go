package state

import "encoding/json"

// TurnResponse is the structured reply the narrator produces for one turn.
// It describes changes to the game state rather than a full replacement.
// Every field is optional; an empty string is treated the same as a
// missing field.
type TurnResponse struct {
	Narrative        string       `json:"narrative"`
	SuggestedActions List[string] `json:"suggestedActions,omitempty"`

	StatUpdates            *CharacterUpdate  `json:"statUpdates,omitempty"`
	AddedInventoryItems    List[ItemUpdate]  `json:"addedInventoryItems,omitempty"`
	RemovedInventoryIDs    List[string]      `json:"removedInventoryIds,omitempty"`
	RemovedSkillIDs        List[string]      `json:"removedSkillIds,omitempty"`
	TraitUpdates           List[TraitUpdate] `json:"traitUpdates,omitempty"`
	UnlockedAchievementIDs List[string]      `json:"unlockedAchievementIds,omitempty"`
	QuestUpdates           List[QuestUpdate] `json:"questUpdates,omitempty"`

	Memory     json.RawMessage   `json:"memory,omitempty"`
	HistoryLog *HistoryLogUpdate `json:"historyLog,omitempty"`

	NewNPCs      List[NPCUpdate]   `json:"newNpcs,omitempty"`
	NPCUpdates   List[NPCUpdate]   `json:"npcUpdates,omitempty"`
	TroopUpdates List[TroopUpdate] `json:"troopUpdates,omitempty"`

	IsGameOver     FlexBool `json:"isGameOver"`
	GameOverReason string   `json:"gameOverReason,omitempty"`
}

// IsEmpty reports whether the response carries no changes at all.
func (r *TurnResponse) IsEmpty() bool {
	return r == nil || (trimSpace(r.Narrative) == "" &&
		r.SuggestedActions == nil &&
		r.StatUpdates == nil &&
		len(r.AddedInventoryItems) == 0 &&
		len(r.RemovedInventoryIDs) == 0 &&
		len(r.RemovedSkillIDs) == 0 &&
		len(r.TraitUpdates) == 0 &&
		len(r.UnlockedAchievementIDs) == 0 &&
		len(r.QuestUpdates) == 0 &&
		!hasPayload(r.Memory) &&
		r.HistoryLog == nil &&
		len(r.NewNPCs) == 0 &&
		len(r.NPCUpdates) == 0 &&
		len(r.TroopUpdates) == 0 &&
		!r.IsGameOver.True())
}

// CharacterUpdate holds new values for the character sheet. Identity fields
// (name, race, class, gender) are not part of it and cannot be changed by
// the narrator.
type CharacterUpdate struct {
	Level          FlexInt `json:"level"`
	LevelName      string  `json:"levelName,omitempty"`
	Title          string  `json:"title,omitempty"`
	Exp            FlexInt `json:"exp"`
	ExpToNextLevel FlexInt `json:"expToNextLevel"`
	HP             FlexInt `json:"hp"`
	MaxHP          FlexInt `json:"maxHp"`
	Mana           FlexInt `json:"mana"`
	MaxMana        FlexInt `json:"maxMana"`

	Stats       List[StatUpdate]  `json:"stats,omitempty"`
	Resistances List[StatUpdate]  `json:"resistances,omitempty"`
	Skills      List[SkillUpdate] `json:"skills,omitempty"`

	// A non-nil list replaces the current one.
	PermanentInjuries List[string] `json:"permanentInjuries,omitempty"`
	Talents           List[string] `json:"talents,omitempty"`
}

type StatUpdate struct {
	Name        string  `json:"name"`
	Value       FlexInt `json:"value"`
	Description string  `json:"description,omitempty"`
}

type SkillUpdate struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Type        string     `json:"type,omitempty"`
	Description string     `json:"description,omitempty"`
	Mastery     string     `json:"mastery,omitempty"`
	Rank        FlexString `json:"rank,omitempty"`
}

// ItemUpdate adds (positive quantity) or consumes (negative quantity) an item.
type ItemUpdate struct {
	ID          string     `json:"id,omitempty"`
	Name        string     `json:"name"`
	Quantity    FlexInt    `json:"quantity"`
	Category    string     `json:"category,omitempty"`
	Type        string     `json:"type,omitempty"`
	Rank        FlexString `json:"rank,omitempty"`
	Effect      string     `json:"effect,omitempty"`
	Description string     `json:"description,omitempty"`
	IsEquipped  FlexBool   `json:"isEquipped"`
}

// TraitUpdate creates, modifies or removes a bloodline, divine body or
// status effect. Traits are matched by exact name within their list.
type TraitUpdate struct {
	Name           string  `json:"name"`
	Type           string  `json:"type,omitempty"`
	Description    string  `json:"description,omitempty"`
	Quality        string  `json:"quality,omitempty"`
	Effect         string  `json:"effect,omitempty"`
	DurationChange FlexInt `json:"durationChange"`
	SetDuration    FlexInt `json:"setDuration"`
	// Duration is accepted as an alias for SetDuration.
	Duration  FlexInt  `json:"duration"`
	IsRemoved FlexBool `json:"isRemoved"`
}

// absoluteDuration returns the explicitly set duration, if any.
func (u TraitUpdate) absoluteDuration() FlexInt {
	if u.SetDuration.Valid {
		return u.SetDuration
	}
	return u.Duration
}

type QuestUpdate struct {
	ID          string   `json:"id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Status      string   `json:"status,omitempty"`
	Description string   `json:"description,omitempty"`
	Progress    string   `json:"progress,omitempty"`
	IsNew       FlexBool `json:"isNew"`
}

// NPCUpdate is used both for newly met NPCs and for changes to known ones.
type NPCUpdate struct {
	ID              string            `json:"id,omitempty"`
	Name            string            `json:"name,omitempty"`
	Gender          string            `json:"gender,omitempty"`
	Group           string            `json:"group,omitempty"`
	HairColor       string            `json:"hairColor,omitempty"`
	EyeColor        string            `json:"eyeColor,omitempty"`
	BodyType        string            `json:"bodyType,omitempty"`
	Relation        string            `json:"relation,omitempty"`
	Affiliation     string            `json:"affiliation,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	Level           FlexInt           `json:"level"`
	LevelName       string            `json:"levelName,omitempty"`
	Emotion         string            `json:"emotion,omitempty"`
	CurrentActivity string            `json:"currentActivity,omitempty"`
	IsDead          FlexBool          `json:"isDead"`
	StatusUpdates   List[TraitUpdate] `json:"statusUpdates,omitempty"`
}

type TroopUpdate struct {
	Name           string  `json:"name"`
	RenameTo       string  `json:"renameTo,omitempty"`
	Description    string  `json:"description,omitempty"`
	QuantityChange FlexInt `json:"quantityChange"`
}

// HistoryLogUpdate lets the narrator phrase the history entry for the turn.
type HistoryLogUpdate struct {
	Action string `json:"action,omitempty"`
	Result string `json:"result,omitempty"`
	Type   string `json:"type,omitempty"`
}
