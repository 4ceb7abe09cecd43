package state

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

// TurnWorker applies narrator responses to game state. It holds no state of
// its own between calls and is safe for concurrent use on distinct states.
type TurnWorker struct {
	rules  Rules
	logger *slog.Logger
}

// NewTurnWorker creates a worker using the given rules. Zero-valued rule
// fields fall back to DefaultRules.
func NewTurnWorker(rules Rules) *TurnWorker {
	return &TurnWorker{
		rules:  rules.WithDefaults(),
		logger: slog.New(slog.DiscardHandler),
	}
}

// WithLogger sets the logger used for debug output.
// Returns the TurnWorker for method chaining
func (tw *TurnWorker) WithLogger(logger *slog.Logger) *TurnWorker {
	if logger != nil {
		tw.logger = logger
	}
	return tw
}

// Rules returns the rules the worker applies.
func (tw *TurnWorker) Rules() Rules { return tw.rules }

// ApplyTurn merges a narrator response into a copy of gs and returns it.
// gs itself is never modified.
//
// turnElapsed is false for a sync pass: statuses do not decay, the turn
// counter stays put and a history entry is only written if the response
// carries narrative text.
//
// A nil response yields gs unchanged and ErrNilResponse. Calling outside
// PhasePlaying, or on a state without world or character, yields
// ErrInvariantViolation.
func (tw *TurnWorker) ApplyTurn(gs *GameState, resp *TurnResponse, actionLabel string, turnElapsed bool) (*GameState, error) {
	if gs == nil {
		return nil, fmt.Errorf("%w: nil game state", ErrInvariantViolation)
	}
	if resp == nil {
		return gs, ErrNilResponse
	}
	if gs.Phase != PhasePlaying {
		return gs, fmt.Errorf("%w: cannot apply a turn in phase %s", ErrInvariantViolation, gs.Phase)
	}
	if gs.Character == nil || gs.World == nil {
		return gs, fmt.Errorf("%w: playing without world or character", ErrInvariantViolation)
	}

	next, err := gs.DeepCopy()
	if err != nil {
		return gs, err
	}

	next.Character = tw.rules.ReconcileCharacter(gs.Character, resp, turnElapsed)
	next.NPCs = tw.rules.mergeNPCs(next.NPCs, resp.NewNPCs, resp.NPCUpdates, turnElapsed)
	next.Troops = tw.rules.mergeTroops(next.Troops, resp.TroopUpdates)

	narrative := trimSpace(resp.Narrative)
	if turnElapsed || narrative != "" {
		entry := tw.historyEntry(next, resp, actionLabel, turnElapsed)
		next.History = append(next.History, entry)
	}
	if turnElapsed {
		next.TurnCount++
	}

	if narrative != "" {
		next.LastNarrative = resp.Narrative
	}
	if resp.SuggestedActions != nil {
		next.SuggestedActions = nonBlank(resp.SuggestedActions)
	}
	if hasPayload(resp.Memory) {
		next.Memory = slices.Clone(resp.Memory)
	}

	if resp.IsGameOver.True() {
		next.Phase = PhaseGameOver
		next.GameOverReason = trimSpace(resp.GameOverReason)
		if next.GameOverReason == "" {
			next.GameOverReason = tw.rules.DefaultGameOverReason
		}
		tw.logger.Info("Game over", "game_id", next.ID.String(), "reason", next.GameOverReason)
	}

	tw.logger.Debug("Turn applied",
		"game_id", next.ID.String(),
		"turn", next.TurnCount,
		"elapsed", turnElapsed,
		"npcs", len(next.NPCs),
		"troops", len(next.Troops))
	return next, nil
}

func (tw *TurnWorker) historyEntry(gs *GameState, resp *TurnResponse, actionLabel string, turnElapsed bool) LogEntry {
	entry := LogEntry{
		ID:        NewID(),
		Turn:      gs.TurnCount,
		Action:    trimSpace(actionLabel),
		Narrative: resp.Narrative,
		Type:      LogInfo,
	}
	if turnElapsed {
		entry.Turn = gs.TurnCount + 1
	}
	if h := resp.HistoryLog; h != nil {
		if v := trimSpace(h.Action); v != "" {
			entry.Action = v
		}
		entry.Result = trimSpace(h.Result)
		if t := LogType(NormalizeName(h.Type)); t.Valid() {
			entry.Type = t
		}
	}
	if entry.Result == "" {
		entry.Result = summarizeNarrative(resp.Narrative, tw.rules.HistoryResultMaxLen)
	}
	if entry.Result == "" {
		entry.Result = tw.rules.DefaultHistoryResult
	}
	return entry
}

var markupStripper = strings.NewReplacer(`"`, "", "*", "", "[", "", "]", "")

// summarizeNarrative returns the first sentence of the narrative without
// markup characters, cut to width with an ellipsis.
func summarizeNarrative(narrative string, width int) string {
	s := narrative
	if i := strings.IndexAny(s, ".!?\n"); i >= 0 {
		s = s[:i]
	}
	s = trimSpace(markupStripper.Replace(s))
	if width > 0 && ansi.PrintableRuneWidth(s) > width {
		s = truncate.String(s, uint(width)) + "..."
	}
	return s
}

var defaultWorker = NewTurnWorker(DefaultRules())

// ApplyTurn applies a response with the default rules.
func ApplyTurn(gs *GameState, resp *TurnResponse, actionLabel string, turnElapsed bool) (*GameState, error) {
	return defaultWorker.ApplyTurn(gs, resp, actionLabel, turnElapsed)
}
