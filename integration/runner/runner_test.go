package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jwebster45206/chronicle-engine/pkg/chat"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func checkedState() *state.GameState {
	return &state.GameState{
		TurnCount: 2,
		Phase:     state.PhasePlaying,
		Character: &state.Character{
			Name: "Tiêu Viêm", Level: 1, HP: 50, MaxHP: 100, Mana: 10, MaxMana: 50,
			Inventory: []state.InventoryItem{{ID: "a", Name: "Huyết Đan"}},
		},
		NPCs:    []state.NPC{{ID: "n1", Name: "Dược Lão"}},
		History: []state.LogEntry{{ID: "h1"}, {ID: "h2"}},
	}
}

func TestCheck(t *testing.T) {
	res := &chat.TurnResult{GameState: checkedState(), Narrative: "The ring glows.", SuggestedActions: []string{"a", "b"}}
	err := Check(res, Expectations{
		TurnCount:        intp(2),
		MinHistory:       intp(2),
		MinSuggestions:   intp(2),
		Inventory:        []string{"huyết đan"},
		NPCs:             []string{"DƯỢC LÃO"},
		ResponseContains: []string{"ring"},
	})
	assert.NoError(t, err)

	res.GameState.Character.HP = 120
	res.GameState.Character.Inventory = append(res.GameState.Character.Inventory, state.InventoryItem{ID: "a", Name: "Copy"})
	err = Check(res, Expectations{TurnCount: intp(3), Inventory: []string{"Sword"}})
	require.Error(t, err)
	for _, want := range []string{"hp 120 exceeds", "duplicate id a", "turn count 2", `lacks "Sword"`} {
		assert.True(t, strings.Contains(err.Error(), want), "missing %q in %v", want, err)
	}

	assert.Error(t, Check(&chat.TurnResult{}, Expectations{}))
}

func TestLoadTestSuite(t *testing.T) {
	suite, err := LoadTestSuite(filepath.Join("..", "cases", "first_steps.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, suite.Name)
	assert.NotEmpty(t, suite.Steps)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name": "no world"}`), 0o644))
	_, err = LoadTestSuite(path)
	assert.Error(t, err)
}
