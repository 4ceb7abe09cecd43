package state

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

// GamePhase is the lifecycle stage of a session.
type GamePhase string

const (
	PhaseInit              GamePhase = "INIT"
	PhaseWorldCreation     GamePhase = "WORLD_CREATION"
	PhaseCharacterCreation GamePhase = "CHARACTER_CREATION"
	PhasePlaying           GamePhase = "PLAYING"
	PhaseGameOver          GamePhase = "GAME_OVER"
)

// phaseTransitions lists the forward moves allowed from each phase.
// Reset to PhaseInit is always allowed and handled separately.
var phaseTransitions = map[GamePhase][]GamePhase{
	PhaseInit:              {PhaseWorldCreation},
	PhaseWorldCreation:     {PhaseCharacterCreation},
	PhaseCharacterCreation: {PhasePlaying},
	PhasePlaying:           {PhaseGameOver},
}

// World describes the setting. It is fixed once the character is created.
type World struct {
	Name                  string   `json:"name"`
	Genre                 string   `json:"genre"`
	Description           string   `json:"description"`
	Rules                 string   `json:"rules,omitempty"`
	StatSystem            []string `json:"statSystem,omitempty"`
	ResistanceTypes       []string `json:"resistanceTypes,omitempty"`
	Structure             string   `json:"structure,omitempty"`
	DangerLevel           string   `json:"dangerLevel,omitempty"`
	DifficultyMode        string   `json:"difficultyMode,omitempty"`
	Style                 string   `json:"style,omitempty"`
	DeathRate             string   `json:"deathRate,omitempty"`
	GameplayFeatures      string   `json:"gameplayFeatures,omitempty"`
	RisksAndOpportunities string   `json:"risksAndOpportunities,omitempty"`
}

type LogType string

const (
	LogInfo      LogType = "info"
	LogCombat    LogType = "combat"
	LogEvent     LogType = "event"
	LogMilestone LogType = "milestone"
)

func (t LogType) Valid() bool {
	switch t {
	case LogInfo, LogCombat, LogEvent, LogMilestone:
		return true
	}
	return false
}

// LogEntry is one line of the append-only history log.
type LogEntry struct {
	ID        string  `json:"id"`
	Turn      int     `json:"turn"`
	Action    string  `json:"action"`
	Result    string  `json:"result"`
	Narrative string  `json:"narrative,omitempty"`
	Type      LogType `json:"type"`
}

// PlayerNote is a free-text note. Important notes are sent to the narrator.
type PlayerNote struct {
	ID          string `json:"id"`
	Content     string `json:"content"`
	IsImportant bool   `json:"isImportant"`
}

// GameState is the root document of a session. It is always safe to
// serialize as a whole.
type GameState struct {
	ID               uuid.UUID       `json:"id"`
	Phase            GamePhase       `json:"phase"`
	TurnCount        int             `json:"turnCount"`
	World            *World          `json:"world,omitempty"`
	Character        *Character      `json:"character,omitempty"`
	History          []LogEntry      `json:"history,omitempty"`
	Summary          string          `json:"summary,omitempty"`
	PlayerNotes      []PlayerNote    `json:"playerNotes,omitempty"`
	Memory           json.RawMessage `json:"memory,omitempty"` // owned by the narrator, copied forward untouched
	NPCs             []NPC           `json:"npcs,omitempty"`
	Troops           []TroopUnit     `json:"troops,omitempty"`
	LastNarrative    string          `json:"lastNarrative,omitempty"`
	CustomRules      []string        `json:"customRules,omitempty"`
	SuggestedActions []string        `json:"suggestedActions,omitempty"`
	GameOverReason   string          `json:"gameOverReason,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func NewGameState() *GameState {
	now := time.Now().UTC()
	return &GameState{
		ID:        uuid.New(),
		Phase:     PhaseInit,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DeepCopy returns an independent copy of the game state.
func (gs *GameState) DeepCopy() (*GameState, error) {
	if gs == nil {
		return nil, nil
	}
	data, err := json.Marshal(gs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal game state: %w", err)
	}
	var out GameState
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game state: %w", err)
	}
	return &out, nil
}

// Transition moves the session to the next phase. Moving back to PhaseInit
// is always allowed.
func (gs *GameState) Transition(to GamePhase) error {
	if to == PhaseInit {
		gs.Reset()
		return nil
	}
	if !slices.Contains(phaseTransitions[gs.Phase], to) {
		return fmt.Errorf("%w: cannot move from %s to %s", ErrInvariantViolation, gs.Phase, to)
	}
	if to == PhasePlaying && (gs.World == nil || gs.Character == nil) {
		return fmt.Errorf("%w: world and character are required to start playing", ErrInvariantViolation)
	}
	gs.Phase = to
	return nil
}

// StartPlaying installs the world and character and enters PhasePlaying.
// Entities created by hand get ids if they lack them. Callers with custom
// rules run Rules.PrepareCharacter first to fill starting values.
func (gs *GameState) StartPlaying(world *World, character *Character) error {
	if world == nil || character == nil {
		return fmt.Errorf("%w: world and character are required to start playing", ErrInvariantViolation)
	}
	switch gs.Phase {
	case PhaseInit, PhaseWorldCreation, PhaseCharacterCreation:
	default:
		return fmt.Errorf("%w: cannot start playing from %s", ErrInvariantViolation, gs.Phase)
	}

	character.assignMissingIDs()
	if character.Level < 1 {
		character.Level = 1
	}

	gs.World = world
	gs.Character = character
	gs.Phase = PhasePlaying
	gs.GameOverReason = ""
	return nil
}

// Reset returns the session to PhaseInit, discarding world and progress.
func (gs *GameState) Reset() {
	id, created := gs.ID, gs.CreatedAt
	*gs = GameState{ID: id, Phase: PhaseInit, CreatedAt: created, UpdatedAt: time.Now().UTC()}
}

// AddNote appends a player note and returns it.
func (gs *GameState) AddNote(content string, important bool) PlayerNote {
	note := PlayerNote{ID: NewID(), Content: content, IsImportant: important}
	gs.PlayerNotes = append(gs.PlayerNotes, note)
	return note
}

// SetNoteImportant flags a note. It reports whether the note exists.
func (gs *GameState) SetNoteImportant(id string, important bool) bool {
	for i := range gs.PlayerNotes {
		if gs.PlayerNotes[i].ID == id {
			gs.PlayerNotes[i].IsImportant = important
			return true
		}
	}
	return false
}

// RemoveNote deletes a note by id. It reports whether a note was removed.
func (gs *GameState) RemoveNote(id string) bool {
	before := len(gs.PlayerNotes)
	gs.PlayerNotes = slices.DeleteFunc(gs.PlayerNotes, func(n PlayerNote) bool { return n.ID == id })
	return len(gs.PlayerNotes) != before
}

// ImportantNotes returns the notes flagged for narrator context.
func (gs *GameState) ImportantNotes() []PlayerNote {
	var out []PlayerNote
	for _, n := range gs.PlayerNotes {
		if n.IsImportant {
			out = append(out, n)
		}
	}
	return out
}

// SetCustomRules replaces the free-text rule list, dropping blank entries.
func (gs *GameState) SetCustomRules(rules []string) {
	out := make([]string, 0, len(rules))
	for _, r := range rules {
		if r = trimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		out = nil
	}
	gs.CustomRules = out
}

// RecentHistory returns at most limit entries from the end of the log.
func (gs *GameState) RecentHistory(limit int) []LogEntry {
	if limit <= 0 || len(gs.History) <= limit {
		return gs.History
	}
	return gs.History[len(gs.History)-limit:]
}

// HasMemory reports whether the narrator memory payload holds a value.
func (gs *GameState) HasMemory() bool {
	return hasPayload(gs.Memory)
}

func hasPayload(raw json.RawMessage) bool {
	s := trimSpace(string(raw))
	return s != "" && s != "null"
}
