package prompts

import (
	"encoding/json"

	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

// PromptCharacter is the character sheet as sent to the narrator. Skill
// image references are stripped.
type PromptCharacter struct {
	state.Character
	Skills []PromptSkill `json:"skills"`
}

type PromptSkill struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        state.SkillType `json:"type"`
	Description string          `json:"description"`
	Mastery     string          `json:"mastery,omitempty"`
	Rank        string          `json:"rank,omitempty"`
}

// ActiveTraits groups the character's traits by list.
type ActiveTraits struct {
	Bloodlines   []state.Trait `json:"bloodlines"`
	DivineBodies []state.Trait `json:"divineBodies"`
	Statuses     []state.Trait `json:"statuses"`
}

// LockedAchievement is an achievement the narrator may unlock. Only the id
// and the unlock condition are exposed.
type LockedAchievement struct {
	ID        string `json:"id"`
	Condition string `json:"condition"`
}

// PromptNPC is the minimal NPC roster entry.
type PromptNPC struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	LevelName       string            `json:"levelName,omitempty"`
	CurrentActivity string            `json:"currentActivity,omitempty"`
	IsDead          bool              `json:"isDead"`
	Relation        state.Relation    `json:"relation,omitempty"`
	Affiliation     state.Affiliation `json:"affiliation,omitempty"`
}

// PromptState is the reduced game state sent with a turn request.
type PromptState struct {
	World              *state.World        `json:"world"`
	Memory             json.RawMessage     `json:"memory"`
	StorySoFar         string              `json:"storySoFar"`
	ActiveQuests       []state.Quest       `json:"activeQuests"`
	ImportantNotes     []string            `json:"importantNotes"`
	Character          *PromptCharacter    `json:"character"`
	ActiveTraits       ActiveTraits        `json:"activeTraits"`
	LockedAchievements []LockedAchievement `json:"lockedAchievements"`
	CurrentTurn        int                 `json:"currentTurn"`
	RecentHistory      []state.LogEntry    `json:"recentHistory"`
	LastNarrative      string              `json:"lastNarrative,omitempty"`
	UserAction         string              `json:"userAction,omitempty"`
	KnownNPCs          []PromptNPC         `json:"knownNPCs"`
	CurrentTroops      []state.TroopUnit   `json:"currentTroops"`
	CustomRules        []string            `json:"customRules,omitempty"`
}

// SyncPromptState is the context for a sync request.
type SyncPromptState struct {
	Genre         string            `json:"genre"`
	Character     *PromptCharacter  `json:"character"`
	LastNarrative string            `json:"lastNarrative"`
	NPCs          []PromptNPC       `json:"npcs"`
	Troops        []state.TroopUnit `json:"troops"`
}

// SummaryPromptState is the context for a summary request.
type SummaryPromptState struct {
	PreviousSummary string   `json:"previousSummary"`
	RecentEvents    []string `json:"recentEvents"`
}

// ToPromptState reduces gs to the turn context. historyLimit bounds the
// recent history window; zero or less sends all of it.
func ToPromptState(gs *state.GameState, action string, historyLimit int) *PromptState {
	ps := &PromptState{
		World:              gs.World,
		Memory:             json.RawMessage("{}"),
		StorySoFar:         gs.Summary,
		ActiveQuests:       []state.Quest{},
		ImportantNotes:     []string{},
		LockedAchievements: []LockedAchievement{},
		CurrentTurn:        gs.TurnCount,
		RecentHistory:      gs.RecentHistory(historyLimit),
		LastNarrative:      gs.LastNarrative,
		UserAction:         action,
		KnownNPCs:          toPromptNPCs(gs.NPCs),
		CurrentTroops:      gs.Troops,
		CustomRules:        gs.CustomRules,
	}
	if gs.HasMemory() {
		ps.Memory = gs.Memory
	}
	if ps.StorySoFar == "" {
		ps.StorySoFar = DefaultSummary
	}
	for _, n := range gs.ImportantNotes() {
		ps.ImportantNotes = append(ps.ImportantNotes, n.Content)
	}
	if ps.RecentHistory == nil {
		ps.RecentHistory = []state.LogEntry{}
	}
	if ps.CurrentTroops == nil {
		ps.CurrentTroops = []state.TroopUnit{}
	}

	if c := gs.Character; c != nil {
		ps.Character = sanitizeCharacter(c)
		ps.ActiveTraits = ActiveTraits{
			Bloodlines:   nonNilTraits(c.Bloodlines),
			DivineBodies: nonNilTraits(c.DivineBodies),
			Statuses:     nonNilTraits(c.ActiveStatuses),
		}
		for _, q := range c.Quests {
			if q.Status == state.QuestActive {
				ps.ActiveQuests = append(ps.ActiveQuests, q)
			}
		}
		for _, a := range c.Achievements {
			if !a.IsUnlocked {
				ps.LockedAchievements = append(ps.LockedAchievements, LockedAchievement{ID: a.ID, Condition: a.Condition})
			}
		}
	}
	return ps
}

// ToSyncPromptState reduces gs to the sync context.
func ToSyncPromptState(gs *state.GameState) *SyncPromptState {
	sp := &SyncPromptState{
		LastNarrative: gs.LastNarrative,
		NPCs:          toPromptNPCs(gs.NPCs),
		Troops:        gs.Troops,
	}
	if gs.World != nil {
		sp.Genre = gs.World.Genre
	}
	if gs.Character != nil {
		sp.Character = sanitizeCharacter(gs.Character)
	}
	if sp.Troops == nil {
		sp.Troops = []state.TroopUnit{}
	}
	return sp
}

// ToSummaryPromptState collects the last limit history entries, preferring
// the full narrative over the one line result.
func ToSummaryPromptState(gs *state.GameState, limit int) *SummaryPromptState {
	sp := &SummaryPromptState{PreviousSummary: gs.Summary, RecentEvents: []string{}}
	if sp.PreviousSummary == "" {
		sp.PreviousSummary = DefaultSummary
	}
	for _, e := range gs.RecentHistory(limit) {
		text := e.Narrative
		if text == "" {
			text = e.Result
		}
		if text != "" {
			sp.RecentEvents = append(sp.RecentEvents, text)
		}
	}
	return sp
}

func sanitizeCharacter(c *state.Character) *PromptCharacter {
	pc := &PromptCharacter{Character: *c, Skills: make([]PromptSkill, 0, len(c.Skills))}
	for _, s := range c.Skills {
		pc.Skills = append(pc.Skills, PromptSkill{
			ID:          s.ID,
			Name:        s.Name,
			Type:        s.Type,
			Description: s.Description,
			Mastery:     s.Mastery,
			Rank:        s.Rank,
		})
	}
	return pc
}

func toPromptNPCs(npcs []state.NPC) []PromptNPC {
	out := make([]PromptNPC, 0, len(npcs))
	for _, n := range npcs {
		out = append(out, PromptNPC{
			ID:              n.ID,
			Name:            n.Name,
			LevelName:       n.LevelName,
			CurrentActivity: n.CurrentActivity,
			IsDead:          n.IsDead,
			Relation:        n.Relation,
			Affiliation:     n.Affiliation,
		})
	}
	return out
}

func nonNilTraits(t []state.Trait) []state.Trait {
	if t == nil {
		return []state.Trait{}
	}
	return t
}
