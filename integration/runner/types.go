package runner

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

// SyncAction is the step action that triggers a sync pass instead of a turn.
const SyncAction = "SYNC"

// TestSuite defines a complete integration test scenario
type TestSuite struct {
	Name      string           `json:"name"`
	World     *state.World     `json:"world"`
	Character *state.Character `json:"character"`
	Steps     []TestStep       `json:"steps"`
}

// TestStep defines a single test interaction and its expected outcomes
// Use action: "SYNC" to reconcile state with the last narrative
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Action       string       `json:"action"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes.
// Structural invariants are always checked; these are extra.
type Expectations struct {
	TurnCount        *int     `json:"turn_count,omitempty"`
	Phase            *string  `json:"phase,omitempty"`
	MinHistory       *int     `json:"min_history,omitempty"`
	MinSuggestions   *int     `json:"min_suggestions,omitempty"`
	Inventory        []string `json:"inventory,omitempty"` // names that must be present, case-insensitive
	NPCs             []string `json:"npcs,omitempty"`      // names that must be known
	ResponseContains []string `json:"response_contains,omitempty"`
	ResponseMinLen   *int     `json:"response_min_length,omitempty"`
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	ResponseText string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Suite     TestSuite
	Results   []TestResult
	Error     error
	Duration  time.Duration
	GameState uuid.UUID
}
