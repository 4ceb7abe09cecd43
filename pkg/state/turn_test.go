package state

import (
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func playingState(t *testing.T) *GameState {
	t.Helper()
	gs := NewGameState()
	world := &World{Name: "Đấu Khí Đại Lục", Genre: "Tu tiên", Description: "A continent of battle qi."}
	require.NoError(t, gs.StartPlaying(world, testCharacter()))
	gs.Memory = json.RawMessage(`{"secrets":["ring"]}`)
	gs.SuggestedActions = []string{"Meditate"}
	gs.LastNarrative = "The sect gates loom."
	gs.NPCs = []NPC{{ID: "n1", Name: "Dược Lão", Relation: RelationDevoted, Affiliation: AffiliationNone, Notes: "Master",
		ActiveStatuses: []Trait{{ID: "ns", Name: "Weakened", Type: TraitDebuff, Duration: intPtr(2)}}}}
	gs.Troops = []TroopUnit{{ID: "tr1", Name: "Tiêu Family Guard", Quantity: 10, Description: "Clan guards"}}
	return gs
}

func TestApplyTurn_EndToEnd(t *testing.T) {
	gs := playingState(t)
	gs.Character.Inventory = nil
	gs.Character.ActiveStatuses = nil

	resp, err := ParseTurnResponse(`{
		"narrative": "*The snake strikes!* You stagger back. Venom burns in your veins.",
		"statUpdates": {"hp": 65},
		"addedInventoryItems": [{"category": "consumable", "name": "Potion", "quantity": 2}],
		"traitUpdates": [{"name": "Poisoned", "type": "debuff", "setDuration": 3}]
	}`)
	require.NoError(t, err)

	next, err := ApplyTurn(gs, resp, "Fight the snake", true)
	require.NoError(t, err)

	c := next.Character
	assert.Equal(t, 65, c.HP)
	require.Len(t, c.Inventory, 1)
	assert.Equal(t, "Potion", c.Inventory[0].Name)
	assert.Equal(t, 2, c.Inventory[0].Quantity)
	assert.NotEmpty(t, c.Inventory[0].ID)
	require.Len(t, c.ActiveStatuses, 1)
	assert.Equal(t, "Poisoned", c.ActiveStatuses[0].Name)
	assert.Equal(t, 3, *c.ActiveStatuses[0].Duration)
	assert.Equal(t, gs.TurnCount+1, next.TurnCount)

	require.Len(t, next.History, len(gs.History)+1)
	entry := next.History[len(next.History)-1]
	assert.Equal(t, 1, entry.Turn)
	assert.Equal(t, "Fight the snake", entry.Action)
	assert.Equal(t, "The snake strikes", entry.Result)
	assert.Equal(t, LogInfo, entry.Type)

	assert.Equal(t, 80, gs.Character.HP, "input state must not change")
	assert.Empty(t, gs.History)
}

func TestApplyTurn_SyncVersusElapsed(t *testing.T) {
	gs := playingState(t)
	gs.Character.ActiveStatuses = []Trait{{ID: "t1", Name: "Focused", Type: TraitBuff, Duration: intPtr(2)}}

	synced, err := ApplyTurn(gs, &TurnResponse{}, "sync", false)
	require.NoError(t, err)
	assert.Equal(t, 2, *synced.Character.ActiveStatuses[0].Duration)
	assert.Equal(t, 2, *synced.NPCs[0].ActiveStatuses[0].Duration)
	assert.Equal(t, gs.TurnCount, synced.TurnCount)
	assert.Empty(t, synced.History, "sync without narrative writes no history")

	synced, err = ApplyTurn(gs, &TurnResponse{Narrative: "You recall the fight."}, "sync", false)
	require.NoError(t, err)
	require.Len(t, synced.History, 1)
	assert.Equal(t, gs.TurnCount, synced.History[0].Turn)
	assert.Equal(t, gs.TurnCount, synced.TurnCount)

	elapsed, err := ApplyTurn(gs, &TurnResponse{}, "Wait", true)
	require.NoError(t, err)
	assert.Equal(t, 1, *elapsed.Character.ActiveStatuses[0].Duration)
	assert.Equal(t, 1, *elapsed.NPCs[0].ActiveStatuses[0].Duration)
	assert.Equal(t, gs.TurnCount+1, elapsed.TurnCount)
	require.Len(t, elapsed.History, 1)
	assert.Equal(t, NewTurnWorker(Rules{}).Rules().DefaultHistoryResult, elapsed.History[0].Result)
}

func TestApplyTurn_MergeWithNothingIsIdentity(t *testing.T) {
	gs := playingState(t)
	first, err := ApplyTurn(gs, &TurnResponse{
		Narrative:           "A quiet day.",
		AddedInventoryItems: []ItemUpdate{{Name: "Iron Ore", Quantity: Int(3), Category: "material"}},
		NewNPCs:             []NPCUpdate{{Name: "Nạp Lan Yên Nhiên"}},
		TroopUpdates:        []TroopUpdate{{Name: "Archers", QuantityChange: Int(5)}},
	}, "Rest", true)
	require.NoError(t, err)

	data, err := json.Marshal(first)
	require.NoError(t, err)
	var restored GameState
	require.NoError(t, json.Unmarshal(data, &restored))

	again, err := ApplyTurn(&restored, &TurnResponse{}, "", false)
	require.NoError(t, err)
	againData, err := json.Marshal(again)
	require.NoError(t, err)
	assert.JSONEq(t, string(data), string(againData))
}

func TestApplyTurn_DeltasAreNotIdempotent(t *testing.T) {
	gs := playingState(t)
	resp := &TurnResponse{
		AddedInventoryItems: []ItemUpdate{{Name: "Healing Pill", Quantity: Int(1), Category: "consumable"}},
		TroopUpdates:        []TroopUpdate{{Name: "Tiêu Family Guard", QuantityChange: Int(5)}},
		TraitUpdates:        []TraitUpdate{{Name: "Focused", DurationChange: Int(2)}},
	}

	once, err := ApplyTurn(gs, resp, "Train", false)
	require.NoError(t, err)
	twice, err := ApplyTurn(once, resp, "Train", false)
	require.NoError(t, err)

	assert.Equal(t, 3, once.Character.Inventory[0].Quantity)
	assert.Equal(t, 4, twice.Character.Inventory[0].Quantity)
	assert.Equal(t, 15, once.Troops[0].Quantity)
	assert.Equal(t, 20, twice.Troops[0].Quantity)
	assert.Equal(t, 4, *once.Character.ActiveStatuses[0].Duration)
	assert.Equal(t, 6, *twice.Character.ActiveStatuses[0].Duration)
}

func TestApplyTurn_CarryForward(t *testing.T) {
	gs := playingState(t)

	next, err := ApplyTurn(gs, &TurnResponse{Memory: json.RawMessage("null")}, "Look", true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"secrets":["ring"]}`, string(next.Memory))
	assert.Equal(t, []string{"Meditate"}, next.SuggestedActions)
	assert.Equal(t, "The sect gates loom.", next.LastNarrative)

	next, err = ApplyTurn(gs, &TurnResponse{
		Narrative:        "Night falls.",
		SuggestedActions: []string{"Sleep", " ", "Keep watch"},
		Memory:           json.RawMessage(`{"secrets":[]}`),
	}, "Look", true)
	require.NoError(t, err)
	assert.JSONEq(t, `{"secrets":[]}`, string(next.Memory))
	assert.Equal(t, []string{"Sleep", "Keep watch"}, next.SuggestedActions)
	assert.Equal(t, "Night falls.", next.LastNarrative)
}

func TestApplyTurn_History(t *testing.T) {
	long := strings.Repeat("Gió ", 30)

	tests := []struct {
		name       string
		resp       *TurnResponse
		wantAction string
		wantResult string
		wantType   LogType
	}{
		{
			name: "explicit history log",
			resp: &TurnResponse{Narrative: "x", HistoryLog: &HistoryLogUpdate{Action: "Duel", Result: "Won the duel", Type: "Combat"}},
			wantAction: "Duel", wantResult: "Won the duel", wantType: LogCombat,
		},
		{
			name:       "markup stripped from first sentence",
			resp:       &TurnResponse{Narrative: `"[Ding]" *You found a cave*! Inside is dark.`},
			wantAction: "Explore", wantResult: "Ding You found a cave", wantType: LogInfo,
		},
		{
			name:       "long sentence truncated",
			resp:       &TurnResponse{Narrative: long},
			wantAction: "Explore", wantResult: strings.Repeat("Gió ", 12) + "Gi...", wantType: LogInfo,
		},
		{
			name:       "unknown type falls back",
			resp:       &TurnResponse{Narrative: "Done.", HistoryLog: &HistoryLogUpdate{Type: "weird"}},
			wantAction: "Explore", wantResult: "Done", wantType: LogInfo,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := ApplyTurn(playingState(t), tt.resp, "Explore", true)
			require.NoError(t, err)
			require.Len(t, next.History, 1)
			e := next.History[0]
			assert.NotEmpty(t, e.ID)
			assert.Equal(t, tt.wantAction, e.Action)
			assert.Equal(t, tt.wantResult, e.Result)
			assert.Equal(t, tt.wantType, e.Type)
		})
	}
}

func TestApplyTurn_GameOver(t *testing.T) {
	gs := playingState(t)

	next, err := ApplyTurn(gs, &TurnResponse{
		Narrative:   "The blade finds your heart.",
		StatUpdates: &CharacterUpdate{HP: Int(0)},
		IsGameOver:  Bool(true),
	}, "Charge", true)
	require.NoError(t, err)
	assert.Equal(t, PhaseGameOver, next.Phase)
	assert.Equal(t, DefaultRules().DefaultGameOverReason, next.GameOverReason)
	assert.Equal(t, 0, next.Character.HP)
	assert.Equal(t, gs.TurnCount+1, next.TurnCount)

	_, err = ApplyTurn(next, &TurnResponse{Narrative: "?"}, "Again", true)
	assert.ErrorIs(t, err, ErrInvariantViolation)

	next, err = ApplyTurn(gs, &TurnResponse{IsGameOver: Bool(true), GameOverReason: "Ascended"}, "Ascend", true)
	require.NoError(t, err)
	assert.Equal(t, "Ascended", next.GameOverReason)
}

func TestApplyTurn_Errors(t *testing.T) {
	gs := playingState(t)

	out, err := ApplyTurn(gs, nil, "x", true)
	assert.ErrorIs(t, err, ErrNilResponse)
	assert.Same(t, gs, out)

	_, err = ApplyTurn(nil, &TurnResponse{}, "x", true)
	assert.ErrorIs(t, err, ErrInvariantViolation)

	fresh := NewGameState()
	out, err = ApplyTurn(fresh, &TurnResponse{}, "x", true)
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Same(t, fresh, out)

	broken := playingState(t)
	broken.Character = nil
	_, err = ApplyTurn(broken, &TurnResponse{}, "x", true)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestTurnWorker_CustomRules(t *testing.T) {
	gs := playingState(t)
	gs.Character.Exp = 0
	gs.Character.ExpToNextLevel = 100

	tw := NewTurnWorker(Rules{LevelGrowthFactor: 2, HistoryResultMaxLen: 5}).WithLogger(slog.New(slog.DiscardHandler))
	next, err := tw.ApplyTurn(gs, &TurnResponse{
		Narrative:   "A sudden breakthrough",
		StatUpdates: &CharacterUpdate{Exp: Int(300)},
	}, "Cultivate", true)
	require.NoError(t, err)

	assert.Equal(t, gs.Character.Level+2, next.Character.Level)
	assert.Equal(t, 0, next.Character.Exp)
	assert.Equal(t, 400, next.Character.ExpToNextLevel)
	assert.Equal(t, "A sud...", next.History[0].Result)
}
