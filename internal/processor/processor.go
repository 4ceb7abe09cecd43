// Package processor runs player actions against the narrator oracle and
// persists the reconciled game state.
package processor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/chronicle-engine/internal/services"
	"github.com/jwebster45206/chronicle-engine/internal/turnlock"
	"github.com/jwebster45206/chronicle-engine/pkg/chat"
	"github.com/jwebster45206/chronicle-engine/pkg/prompts"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
	"github.com/jwebster45206/chronicle-engine/pkg/storage"
)

var (
	// ErrNotFound is returned when a game state or note does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput is returned for requests the processor refuses before
	// touching any state.
	ErrInvalidInput = errors.New("invalid input")

	// ErrOracle wraps transport failures of the narrator oracle.
	ErrOracle = errors.New("narrator oracle failed")
)

// SyncActionLabel is the history action recorded for a sync pass.
const SyncActionLabel = "Sync"

// Options tunes the processor.
type Options struct {
	SummaryInterval int           // summarize every N turns; 0 disables
	HistoryWindow   int           // history entries sent with a turn
	OracleTimeout   time.Duration // per oracle request
}

// DefaultOptions matches the configuration defaults.
func DefaultOptions() Options {
	return Options{
		SummaryInterval: 15,
		HistoryWindow:   prompts.DefaultHistoryLimit,
		OracleTimeout:   120 * time.Second,
	}
}

// TurnProcessor handles the core game loop. It is used by the HTTP handlers
// and holds no per-game state; concurrent actions for one game are rejected
// by the lock.
type TurnProcessor struct {
	storage storage.Storage
	llm     services.LLMService
	lock    turnlock.Lock
	worker  *state.TurnWorker
	opts    Options
	logger  *slog.Logger
}

// NewTurnProcessor creates a new turn processor. A nil lock falls back to
// an in-process lock, a nil worker to default rules.
func NewTurnProcessor(
	store storage.Storage,
	llm services.LLMService,
	lock turnlock.Lock,
	worker *state.TurnWorker,
	opts Options,
	logger *slog.Logger,
) *TurnProcessor {
	if lock == nil {
		lock = turnlock.NewLocalLock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if worker == nil {
		worker = state.NewTurnWorker(state.DefaultRules()).WithLogger(logger)
	}
	if opts.HistoryWindow < 1 {
		opts.HistoryWindow = prompts.DefaultHistoryLimit
	}
	if opts.OracleTimeout <= 0 {
		opts.OracleTimeout = DefaultOptions().OracleTimeout
	}
	return &TurnProcessor{
		storage: store,
		llm:     llm,
		lock:    lock,
		worker:  worker,
		opts:    opts,
		logger:  logger,
	}
}

// Create starts a new session. With both world and character it enters
// PhasePlaying right away; with neither it starts in PhaseInit.
func (p *TurnProcessor) Create(ctx context.Context, world *state.World, character *state.Character) (*state.GameState, error) {
	gs := state.NewGameState()
	switch {
	case world == nil && character == nil:
	case world == nil || character == nil:
		return nil, fmt.Errorf("%w: world and character must be given together", ErrInvalidInput)
	default:
		if strings.TrimSpace(character.Name) == "" {
			return nil, fmt.Errorf("%w: character name is required", ErrInvalidInput)
		}
		p.worker.Rules().PrepareCharacter(character)
		if err := gs.StartPlaying(world, character); err != nil {
			return nil, err
		}
	}

	if err := p.storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		return nil, fmt.Errorf("failed to save game state: %w", err)
	}
	p.logger.Info("Game state created", "game_state_id", gs.ID.String(), "phase", gs.Phase)
	return gs, nil
}

// Get loads a game state.
func (p *TurnProcessor) Get(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	gs, err := p.storage.LoadGameState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load game state: %w", err)
	}
	if gs == nil {
		return nil, fmt.Errorf("game state %s: %w", id, ErrNotFound)
	}
	return gs, nil
}

// List returns all save slots, newest first.
func (p *TurnProcessor) List(ctx context.Context) ([]storage.GameStateInfo, error) {
	infos, err := p.storage.ListGameStates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list game states: %w", err)
	}
	return infos, nil
}

// Delete removes a game state. A pending action blocks deletion.
func (p *TurnProcessor) Delete(ctx context.Context, id uuid.UUID) error {
	release, err := p.lock.Acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	if _, err := p.Get(ctx, id); err != nil {
		return err
	}
	if err := p.storage.DeleteGameState(ctx, id); err != nil {
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	p.logger.Info("Game state deleted", "game_state_id", id.String())
	return nil
}

// Turn sends a player action to the narrator and applies the reply.
// On any failure before the save the stored state is left untouched and the
// action may be retried.
func (p *TurnProcessor) Turn(ctx context.Context, id uuid.UUID, action string) (*chat.TurnResult, error) {
	req := chat.TurnRequest{GameStateID: id, Action: action}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	action = strings.TrimSpace(action)

	release, err := p.lock.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	gs, err := p.loadPlaying(ctx, id)
	if err != nil {
		return nil, err
	}

	messages, err := prompts.BuildMessages(gs, action, chat.ChatRoleUser, p.opts.HistoryWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to build chat messages: %w", err)
	}

	start := time.Now()
	reply, err := p.ask(ctx, p.llm.Chat, messages)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("Narrator replied",
		"game_state_id", id.String(),
		"model", reply.Model,
		"duration_ms", time.Since(start).Milliseconds())

	resp, err := state.ParseTurnResponse(reply.Message)
	if err != nil {
		p.logger.Warn("Unusable narrator reply", "game_state_id", id.String(), "error", err)
		return nil, err
	}
	if resp.IsEmpty() {
		p.logger.Warn("Narrator reply carries no changes", "game_state_id", id.String())
	}

	next, err := p.worker.ApplyTurn(gs, resp, action, true)
	if err != nil {
		return nil, err
	}
	p.maybeSummarize(ctx, next)

	if err := p.save(ctx, next); err != nil {
		return nil, err
	}
	p.logger.Info("Turn applied",
		"game_state_id", id.String(),
		"turn", next.TurnCount,
		"game_over", next.Phase == state.PhaseGameOver)
	return chat.NewTurnResult(next, resp.Narrative), nil
}

// Sync asks the backend model to reconcile the state with the last
// narrative. The turn clock does not advance.
func (p *TurnProcessor) Sync(ctx context.Context, id uuid.UUID) (*chat.TurnResult, error) {
	release, err := p.lock.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	gs, err := p.loadPlaying(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(gs.LastNarrative) == "" {
		return nil, fmt.Errorf("%w: nothing to sync before the first turn", ErrInvalidInput)
	}

	messages, err := prompts.BuildSyncMessages(gs)
	if err != nil {
		return nil, fmt.Errorf("failed to build sync messages: %w", err)
	}
	reply, err := p.ask(ctx, p.llm.BackendChat, messages)
	if err != nil {
		return nil, err
	}
	resp, err := state.ParseTurnResponse(reply.Message)
	if err != nil {
		p.logger.Warn("Unusable sync reply", "game_state_id", id.String(), "error", err)
		return nil, err
	}
	// A sync never narrates and is not recorded in the history.
	resp.Narrative = ""
	resp.HistoryLog = nil
	if resp.IsEmpty() {
		p.logger.Info("Game state already in sync", "game_state_id", id.String())
		return chat.NewTurnResult(gs, ""), nil
	}

	next, err := p.worker.ApplyTurn(gs, resp, SyncActionLabel, false)
	if err != nil {
		return nil, err
	}
	if err := p.save(ctx, next); err != nil {
		return nil, err
	}
	p.logger.Info("Game state synchronized", "game_state_id", id.String())
	return chat.NewTurnResult(next, ""), nil
}

// Summarize refreshes the story summary on demand.
func (p *TurnProcessor) Summarize(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	return p.mutate(ctx, id, func(gs *state.GameState) error {
		return p.summarize(ctx, gs)
	})
}

// AddNote stores a player note.
func (p *TurnProcessor) AddNote(ctx context.Context, id uuid.UUID, content string, important bool) (state.PlayerNote, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return state.PlayerNote{}, fmt.Errorf("%w: note content cannot be empty", ErrInvalidInput)
	}
	var note state.PlayerNote
	_, err := p.mutate(ctx, id, func(gs *state.GameState) error {
		note = gs.AddNote(content, important)
		return nil
	})
	return note, err
}

// SetNoteImportant flags or unflags a note for narrator context.
func (p *TurnProcessor) SetNoteImportant(ctx context.Context, id uuid.UUID, noteID string, important bool) error {
	_, err := p.mutate(ctx, id, func(gs *state.GameState) error {
		if !gs.SetNoteImportant(noteID, important) {
			return fmt.Errorf("note %s: %w", noteID, ErrNotFound)
		}
		return nil
	})
	return err
}

// DeleteNote removes a player note.
func (p *TurnProcessor) DeleteNote(ctx context.Context, id uuid.UUID, noteID string) error {
	_, err := p.mutate(ctx, id, func(gs *state.GameState) error {
		if !gs.RemoveNote(noteID) {
			return fmt.Errorf("note %s: %w", noteID, ErrNotFound)
		}
		return nil
	})
	return err
}

// SetRules replaces the custom rules the narrator must follow.
func (p *TurnProcessor) SetRules(ctx context.Context, id uuid.UUID, rules []string) (*state.GameState, error) {
	return p.mutate(ctx, id, func(gs *state.GameState) error {
		gs.SetCustomRules(rules)
		return nil
	})
}

// Reset discards the world and progress of a session, keeping its id.
func (p *TurnProcessor) Reset(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	return p.mutate(ctx, id, func(gs *state.GameState) error {
		gs.Reset()
		return nil
	})
}

// Start installs a world and character on a session that has none yet.
func (p *TurnProcessor) Start(ctx context.Context, id uuid.UUID, world *state.World, character *state.Character) (*state.GameState, error) {
	if world == nil || character == nil {
		return nil, fmt.Errorf("%w: world and character are required", ErrInvalidInput)
	}
	return p.mutate(ctx, id, func(gs *state.GameState) error {
		p.worker.Rules().PrepareCharacter(character)
		return gs.StartPlaying(world, character)
	})
}

// ToggleEquip equips or unequips an inventory item and applies its stat
// modifiers.
func (p *TurnProcessor) ToggleEquip(ctx context.Context, id uuid.UUID, itemID string) (*state.GameState, error) {
	return p.mutatePlaying(ctx, id, func(gs *state.GameState) error {
		item, err := gs.Character.ToggleEquip(itemID)
		if err != nil {
			return err
		}
		p.logger.Debug("Item toggled", "game_state_id", id.String(), "item", item.Name, "equipped", item.IsEquipped)
		return nil
	})
}

// FuseSkills asks the backend model for one skill fused from skillIDs and
// replaces them with it. The skills are checked before the model is asked.
func (p *TurnProcessor) FuseSkills(ctx context.Context, id uuid.UUID, skillIDs []string) (*state.GameState, error) {
	release, err := p.lock.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	gs, err := p.loadPlaying(ctx, id)
	if err != nil {
		return nil, err
	}
	ingredients, err := gs.Character.FusionIngredients(skillIDs)
	if err != nil {
		return nil, err
	}

	messages, err := prompts.BuildFusionMessages(gs.World, ingredients)
	if err != nil {
		return nil, fmt.Errorf("failed to build fusion messages: %w", err)
	}
	reply, err := p.ask(ctx, p.llm.BackendChat, messages)
	if err != nil {
		return nil, err
	}
	fused, err := state.ParseSkillResponse(reply.Message)
	if err != nil {
		p.logger.Warn("Unusable fusion reply", "game_state_id", id.String(), "error", err)
		return nil, err
	}

	skill, err := p.worker.Rules().FuseSkills(gs.Character, skillIDs, *fused)
	if err != nil {
		return nil, err
	}
	if err := p.save(ctx, gs); err != nil {
		return nil, err
	}
	p.logger.Info("Skills fused",
		"game_state_id", id.String(),
		"skill", skill.Name,
		"ingredients", len(ingredients))
	return gs, nil
}

// ApplyStatus adds, refreshes or removes a status by hand, on the character
// or on the NPC with npcID.
func (p *TurnProcessor) ApplyStatus(ctx context.Context, id uuid.UUID, npcID string, u state.TraitUpdate) (*state.GameState, error) {
	return p.mutatePlaying(ctx, id, func(gs *state.GameState) error {
		return gs.ApplyStatus(npcID, u)
	})
}

// ToggleNPCLock flips the lock that protects an NPC from deletion.
func (p *TurnProcessor) ToggleNPCLock(ctx context.Context, id uuid.UUID, npcID string) (*state.GameState, error) {
	return p.mutatePlaying(ctx, id, func(gs *state.GameState) error {
		_, err := gs.ToggleNPCLock(npcID)
		return err
	})
}

// SetNPCAffiliation moves an NPC to another social group.
func (p *TurnProcessor) SetNPCAffiliation(ctx context.Context, id uuid.UUID, npcID, affiliation string) (*state.GameState, error) {
	return p.mutatePlaying(ctx, id, func(gs *state.GameState) error {
		return gs.SetNPCAffiliation(npcID, affiliation)
	})
}

// DeleteNPC removes an unlocked NPC.
func (p *TurnProcessor) DeleteNPC(ctx context.Context, id uuid.UUID, npcID string) (*state.GameState, error) {
	return p.mutatePlaying(ctx, id, func(gs *state.GameState) error {
		return gs.DeleteNPC(npcID)
	})
}

// AssignCommander sets the commander of a troop, or adds a vice commander.
func (p *TurnProcessor) AssignCommander(ctx context.Context, id uuid.UUID, troopID, npcID string, vice bool) (*state.GameState, error) {
	return p.mutatePlaying(ctx, id, func(gs *state.GameState) error {
		return gs.AssignCommander(troopID, npcID, vice)
	})
}

// RemoveCommander clears the commander of a troop, or removes a vice
// commander.
func (p *TurnProcessor) RemoveCommander(ctx context.Context, id uuid.UUID, troopID, npcID string, vice bool) (*state.GameState, error) {
	return p.mutatePlaying(ctx, id, func(gs *state.GameState) error {
		return gs.RemoveCommander(troopID, npcID, vice)
	})
}

// mutatePlaying is mutate for edits that need a running game.
func (p *TurnProcessor) mutatePlaying(ctx context.Context, id uuid.UUID, fn func(gs *state.GameState) error) (*state.GameState, error) {
	return p.mutate(ctx, id, func(gs *state.GameState) error {
		if gs.Phase != state.PhasePlaying || gs.Character == nil {
			return fmt.Errorf("%w: game is in phase %s", state.ErrInvariantViolation, gs.Phase)
		}
		return fn(gs)
	})
}

// mutate runs fn on the stored state under the game lock and saves the
// result. Nothing is saved when fn fails.
func (p *TurnProcessor) mutate(ctx context.Context, id uuid.UUID, fn func(gs *state.GameState) error) (*state.GameState, error) {
	release, err := p.lock.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	gs, err := p.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(gs); err != nil {
		return nil, err
	}
	if err := p.save(ctx, gs); err != nil {
		return nil, err
	}
	return gs, nil
}

func (p *TurnProcessor) loadPlaying(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	gs, err := p.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if gs.Phase != state.PhasePlaying {
		return nil, fmt.Errorf("%w: game is in phase %s", state.ErrInvariantViolation, gs.Phase)
	}
	return gs, nil
}

func (p *TurnProcessor) save(ctx context.Context, gs *state.GameState) error {
	gs.UpdatedAt = time.Now().UTC()
	if err := p.storage.SaveGameState(ctx, gs.ID, gs); err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}

type chatFunc func(ctx context.Context, messages []chat.ChatMessage) (*chat.ChatResponse, error)

// ask calls the oracle with the configured timeout.
func (p *TurnProcessor) ask(ctx context.Context, fn chatFunc, messages []chat.ChatMessage) (*chat.ChatResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, p.opts.OracleTimeout)
	defer cancel()

	reply, err := fn(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOracle, err)
	}
	if reply == nil {
		return nil, fmt.Errorf("%w: empty reply", ErrOracle)
	}
	return reply, nil
}

// maybeSummarize refreshes the summary after every SummaryInterval turns.
// A failed summary never fails the turn.
func (p *TurnProcessor) maybeSummarize(ctx context.Context, gs *state.GameState) {
	n := p.opts.SummaryInterval
	if n <= 0 || gs.TurnCount == 0 || gs.TurnCount%n != 0 {
		return
	}
	if err := p.summarize(ctx, gs); err != nil {
		p.logger.Warn("Story summary skipped",
			"game_state_id", gs.ID.String(),
			"turn", gs.TurnCount,
			"error", err)
	}
}

func (p *TurnProcessor) summarize(ctx context.Context, gs *state.GameState) error {
	messages, err := prompts.BuildSummaryMessages(gs)
	if err != nil {
		return fmt.Errorf("failed to build summary messages: %w", err)
	}
	reply, err := p.ask(ctx, p.llm.BackendChat, messages)
	if err != nil {
		return err
	}
	resp, err := state.ParseSummaryResponse(reply.Message)
	if err != nil {
		return err
	}
	gs.Summary = resp.Summary
	if len(resp.Memory) > 0 && string(resp.Memory) != "null" {
		gs.Memory = resp.Memory
	}
	p.logger.Debug("Story summary updated", "game_state_id", gs.ID.String(), "turn", gs.TurnCount)
	return nil
}
