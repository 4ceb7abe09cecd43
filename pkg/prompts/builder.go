package prompts

import (
	"fmt"

	"github.com/jwebster45206/chronicle-engine/pkg/chat"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

// DefaultHistoryLimit is the number of recent log entries sent with a turn.
const DefaultHistoryLimit = 5

// SummaryHistoryLimit is the number of log entries a summary request covers.
const SummaryHistoryLimit = 15

// Builder constructs chat messages for a narrator turn using a fluent interface.
// It separates prompt building logic from game state management.
type Builder struct {
	gs           *state.GameState
	userMessage  string
	userRole     string
	historyLimit int
	messages     []chat.ChatMessage
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: DefaultHistoryLimit,
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithGameState sets the gamestate.
func (b *Builder) WithGameState(gs *state.GameState) *Builder {
	b.gs = gs
	return b
}

// WithUserMessage sets the player's action and role.
func (b *Builder) WithUserMessage(message string, role string) *Builder {
	b.userMessage = message
	b.userRole = role
	return b
}

// WithHistoryLimit sets the recent history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// Build constructs and returns the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.gs == nil {
		return nil, fmt.Errorf("gamestate is required")
	}
	if b.gs.Character == nil {
		return nil, fmt.Errorf("character is required")
	}

	b.messages = make([]chat.ChatMessage, 0, 4)

	// 1. System prompt
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: BuildSystemPrompt(b.gs.World),
	})

	// 2. State context, including the history window
	statePrompt, err := GetStatePrompt(ToPromptState(b.gs, b.userMessage, b.historyLimit))
	if err != nil {
		return nil, fmt.Errorf("error generating state prompt: %w", err)
	}
	b.messages = append(b.messages, statePrompt)

	// 3. User message
	b.addUserMessage()

	// 4. Final reminder
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: TurnPostPrompt,
	})

	return b.messages, nil
}

// addUserMessage adds the player's action, prefixed with the character name.
func (b *Builder) addUserMessage() {
	if b.userMessage == "" {
		return
	}
	content := b.userMessage
	if b.userRole == chat.ChatRoleUser {
		content = chat.FormatWithPCName(content, b.gs.Character.Name)
	}
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    b.userRole,
		Content: content,
	})
}

// BuildMessages is a convenience function for the common case.
// It creates a builder, sets all parameters, and builds the messages in one call.
func BuildMessages(gs *state.GameState, message string, role string, historyLimit int) ([]chat.ChatMessage, error) {
	return New().
		WithGameState(gs).
		WithUserMessage(message, role).
		WithHistoryLimit(historyLimit).
		Build()
}

// BuildSyncMessages builds the request that reconciles state with the last
// narrative.
func BuildSyncMessages(gs *state.GameState) ([]chat.ChatMessage, error) {
	if gs == nil {
		return nil, fmt.Errorf("gamestate is required")
	}
	if gs.Character == nil {
		return nil, fmt.Errorf("character is required")
	}
	genre := ""
	if gs.World != nil {
		genre = gs.World.Genre
	}
	statePrompt, err := GetStatePrompt(ToSyncPromptState(gs))
	if err != nil {
		return nil, fmt.Errorf("error generating sync prompt: %w", err)
	}
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: fmt.Sprintf(SyncSystemPrompt, genre)},
		statePrompt,
		{Role: chat.ChatRoleUser, Content: "Synchronize the data with the last narrative."},
	}, nil
}

// BuildSummaryMessages builds the request for an updated story summary.
func BuildSummaryMessages(gs *state.GameState) ([]chat.ChatMessage, error) {
	if gs == nil {
		return nil, fmt.Errorf("gamestate is required")
	}
	statePrompt, err := GetStatePrompt(ToSummaryPromptState(gs, SummaryHistoryLimit))
	if err != nil {
		return nil, fmt.Errorf("error generating summary prompt: %w", err)
	}
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: SummarySystemPrompt},
		statePrompt,
		{Role: chat.ChatRoleUser, Content: "Write the updated chronicle."},
	}, nil
}

// BuildFusionMessages builds the request for a skill fused from skills.
// The skills must share one type; the caller checks that.
func BuildFusionMessages(world *state.World, skills []state.Skill) ([]chat.ChatMessage, error) {
	if world == nil {
		return nil, fmt.Errorf("world is required")
	}
	if len(skills) < 2 {
		return nil, fmt.Errorf("at least two skills are required")
	}
	type ingredient struct {
		Name        string `json:"name"`
		Description string `json:"description,omitempty"`
		Mastery     string `json:"mastery,omitempty"`
	}
	ingredients := make([]ingredient, len(skills))
	for i, s := range skills {
		ingredients[i] = ingredient{Name: s.Name, Description: s.Description, Mastery: s.Mastery}
	}
	statePrompt, err := GetStatePrompt(map[string]any{"ingredients": ingredients})
	if err != nil {
		return nil, fmt.Errorf("error generating fusion prompt: %w", err)
	}
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: fmt.Sprintf(FusionSystemPrompt, world.Name, skills[0].Type)},
		statePrompt,
		{Role: chat.ChatRoleUser, Content: "Fuse these skills into one."},
	}, nil
}
