package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/chronicle-engine/pkg/chat"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

// Runner executes integration tests against a running chronicle-engine API
type Runner struct {
	BaseURL string
	Client  *http.Client
	Logger  func(format string, args ...any)
}

// NewRunner creates a new test runner
func NewRunner(baseURL string, timeout time.Duration) *Runner {
	return &Runner{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
		Logger:  func(string, ...any) {},
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}
	if suite.World == nil || suite.Character == nil {
		return TestSuite{}, fmt.Errorf("%s: world and character are required", filename)
	}
	return suite, nil
}

// RunSuite creates a game and plays every step. The game is deleted
// afterwards.
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{Suite: suite, Results: make([]TestResult, 0, len(suite.Steps))}

	var gs state.GameState
	body := map[string]any{"world": suite.World, "character": suite.Character}
	if err := r.do(ctx, http.MethodPost, "/v1/gamestate", body, http.StatusCreated, &gs); err != nil {
		result.Error = fmt.Errorf("failed to create game state: %w", err)
		return result, result.Error
	}
	result.GameState = gs.ID
	defer func() {
		_ = r.do(context.Background(), http.MethodDelete, "/v1/gamestate/"+gs.ID.String(), nil, http.StatusNoContent, nil)
	}()

	for i, step := range suite.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		stepResult := r.runStep(ctx, gs.ID, step)
		stepResult.StepName = name
		result.Results = append(result.Results, stepResult)
		r.Logger("  %s: success=%v (%v)", name, stepResult.Success, stepResult.Duration)
		if !stepResult.Success && result.Error == nil {
			result.Error = fmt.Errorf("%s: %w", name, stepResult.Error)
		}
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

func (r *Runner) runStep(ctx context.Context, id uuid.UUID, step TestStep) TestResult {
	start := time.Now()
	var res chat.TurnResult
	var err error
	if step.Action == SyncAction {
		err = r.do(ctx, http.MethodPost, "/v1/gamestate/"+id.String()+"/sync", nil, http.StatusOK, &res)
	} else {
		body := map[string]string{"action": step.Action}
		err = r.do(ctx, http.MethodPost, "/v1/gamestate/"+id.String()+"/turn", body, http.StatusOK, &res)
	}
	out := TestResult{Duration: time.Since(start), ResponseText: res.Narrative}
	if err == nil {
		err = Check(&res, step.Expectations)
	}
	out.Error = err
	out.Success = err == nil
	return out
}

// Check validates a turn result against the structural invariants of the
// game state and the step expectations.
func Check(res *chat.TurnResult, exp Expectations) error {
	gs := res.GameState
	if gs == nil || gs.Character == nil {
		return errors.New("response holds no game state with a character")
	}
	var errs []error
	c := gs.Character
	if c.HP > c.MaxHP {
		errs = append(errs, fmt.Errorf("hp %d exceeds max %d", c.HP, c.MaxHP))
	}
	if c.Mana > c.MaxMana {
		errs = append(errs, fmt.Errorf("mana %d exceeds max %d", c.Mana, c.MaxMana))
	}
	if c.Level < 1 {
		errs = append(errs, fmt.Errorf("level %d below 1", c.Level))
	}
	errs = append(errs, uniqueIDs("inventory", c.Inventory, func(i state.InventoryItem) string { return i.ID }))
	errs = append(errs, uniqueIDs("skills", c.Skills, func(s state.Skill) string { return s.ID }))
	errs = append(errs, uniqueIDs("npcs", gs.NPCs, func(n state.NPC) string { return n.ID }))

	if exp.TurnCount != nil && gs.TurnCount != *exp.TurnCount {
		errs = append(errs, fmt.Errorf("turn count %d, want %d", gs.TurnCount, *exp.TurnCount))
	}
	if exp.Phase != nil && string(gs.Phase) != *exp.Phase {
		errs = append(errs, fmt.Errorf("phase %s, want %s", gs.Phase, *exp.Phase))
	}
	if exp.MinHistory != nil && len(gs.History) < *exp.MinHistory {
		errs = append(errs, fmt.Errorf("history has %d entries, want at least %d", len(gs.History), *exp.MinHistory))
	}
	if exp.MinSuggestions != nil && len(res.SuggestedActions) < *exp.MinSuggestions {
		errs = append(errs, fmt.Errorf("%d suggested actions, want at least %d", len(res.SuggestedActions), *exp.MinSuggestions))
	}
	if exp.ResponseMinLen != nil && len([]rune(res.Narrative)) < *exp.ResponseMinLen {
		errs = append(errs, fmt.Errorf("narrative has %d characters, want at least %d", len([]rune(res.Narrative)), *exp.ResponseMinLen))
	}
	for _, want := range exp.ResponseContains {
		if !strings.Contains(strings.ToLower(res.Narrative), strings.ToLower(want)) {
			errs = append(errs, fmt.Errorf("narrative does not contain %q", want))
		}
	}
	for _, want := range exp.Inventory {
		if !containsName(c.Inventory, want, func(i state.InventoryItem) string { return i.Name }) {
			errs = append(errs, fmt.Errorf("inventory lacks %q", want))
		}
	}
	for _, want := range exp.NPCs {
		if !containsName(gs.NPCs, want, func(n state.NPC) string { return n.Name }) {
			errs = append(errs, fmt.Errorf("no known NPC named %q", want))
		}
	}
	return errors.Join(errs...)
}

func uniqueIDs[T any](what string, items []T, id func(T) string) error {
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		v := id(it)
		if v == "" {
			return fmt.Errorf("%s: entry without id", what)
		}
		if seen[v] {
			return fmt.Errorf("%s: duplicate id %s", what, v)
		}
		seen[v] = true
	}
	return nil
}

func containsName[T any](items []T, want string, name func(T) string) bool {
	want = state.NormalizeName(want)
	for _, it := range items {
		if state.NormalizeName(name(it)) == want {
			return true
		}
	}
	return false
}

func (r *Runner) do(ctx context.Context, method, path string, in any, want int, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(body, out)
}
