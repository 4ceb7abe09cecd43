package chat

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

// MaxMessageLength is the longest player action accepted, in characters.
const MaxMessageLength = 2000

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Narrator
	ChatRoleSystem = "system"    // Instructions and game context
)

// ChatMessage represents a single message sent to the narrator model.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// ChatResponse is the raw text returned by the narrator model.
type ChatResponse struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// TurnRequest is a player action submitted to the api.
type TurnRequest struct {
	GameStateID uuid.UUID `json:"gamestate_id,omitempty"`
	Action      string    `json:"action"`
}

func (tr *TurnRequest) Validate() error {
	action := strings.TrimSpace(tr.Action)
	if action == "" {
		return fmt.Errorf("action cannot be empty")
	}
	if n := utf8.RuneCountInString(action); n > MaxMessageLength {
		return fmt.Errorf("action exceeds maximum length of %d characters (got %d)", MaxMessageLength, n)
	}
	return nil
}

// TurnResult is returned after a turn or sync has been applied.
type TurnResult struct {
	GameState        *state.GameState `json:"game_state"`
	Narrative        string           `json:"narrative,omitempty"`
	SuggestedActions []string         `json:"suggested_actions,omitempty"`
	GameOver         bool             `json:"game_over"`
	GameOverReason   string           `json:"game_over_reason,omitempty"`
}

// NewTurnResult builds the api payload for a freshly applied state.
func NewTurnResult(gs *state.GameState, narrative string) *TurnResult {
	return &TurnResult{
		GameState:        gs,
		Narrative:        narrative,
		SuggestedActions: gs.SuggestedActions,
		GameOver:         gs.Phase == state.PhaseGameOver,
		GameOverReason:   gs.GameOverReason,
	}
}

// FormatWithPCName prefixes an action with the character name, unless it
// already starts with a short "Speaker:" prefix.
func FormatWithPCName(message, pcName string) string {
	if i := strings.Index(message, ":"); i > 0 && i <= 50 {
		return message
	}
	return pcName + ": " + message
}
