package prompts

import (
	"encoding/json"
	"testing"

	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

func TestToPromptState(t *testing.T) {
	gs := testGameState(t)
	gs.AddNote("The elder lies", false)
	gs.AddNote("Ring holds a soul", true)
	gs.NPCs = []state.NPC{{ID: "n1", Name: "Dược Lão", Notes: "private", Relation: state.RelationDevoted, CurrentActivity: "Sleeping"}}
	for i := range 8 {
		gs.History = append(gs.History, state.LogEntry{Turn: i})
	}

	ps := ToPromptState(gs, "Meditate", 5)

	if string(ps.Memory) != "{}" {
		t.Errorf("expected empty memory object, got %s", ps.Memory)
	}
	if ps.StorySoFar != DefaultSummary {
		t.Errorf("expected default summary, got %q", ps.StorySoFar)
	}
	if len(ps.ActiveQuests) != 1 || ps.ActiveQuests[0].ID != "q1" {
		t.Errorf("expected only the active quest, got %+v", ps.ActiveQuests)
	}
	if len(ps.ImportantNotes) != 1 || ps.ImportantNotes[0] != "Ring holds a soul" {
		t.Errorf("expected only important notes, got %v", ps.ImportantNotes)
	}
	if len(ps.LockedAchievements) != 1 || ps.LockedAchievements[0] != (LockedAchievement{ID: "a1", Condition: "Defeat an enemy"}) {
		t.Errorf("unexpected locked achievements %+v", ps.LockedAchievements)
	}
	if len(ps.RecentHistory) != 5 || ps.RecentHistory[0].Turn != 3 {
		t.Errorf("expected the last 5 history entries, got %+v", ps.RecentHistory)
	}
	if len(ps.KnownNPCs) != 1 || ps.KnownNPCs[0].CurrentActivity != "Sleeping" {
		t.Errorf("unexpected npc roster %+v", ps.KnownNPCs)
	}
	if ps.UserAction != "Meditate" {
		t.Errorf("expected user action, got %q", ps.UserAction)
	}

	data, err := json.Marshal(ps)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	npc := raw["knownNPCs"].([]any)[0].(map[string]any)
	if _, ok := npc["notes"]; ok {
		t.Error("npc notes should not be sent")
	}
	skill := raw["character"].(map[string]any)["skills"].([]any)[0].(map[string]any)
	if _, ok := skill["imageUrl"]; ok {
		t.Error("skill image should be stripped")
	}
	if skill["name"] != "Flame Palm" {
		t.Errorf("unexpected skill %v", skill)
	}
	traits := raw["activeTraits"].(map[string]any)
	if traits["bloodlines"] == nil {
		t.Error("trait lists should serialize as arrays, not null")
	}
}

func TestToPromptState_KeepsMemoryAndSummary(t *testing.T) {
	gs := testGameState(t)
	gs.Memory = json.RawMessage(`{"debts":["Mễ Đặc Nhĩ"]}`)
	gs.Summary = "Tiêu Viêm left the clan."

	ps := ToPromptState(gs, "", 0)
	if string(ps.Memory) != `{"debts":["Mễ Đặc Nhĩ"]}` {
		t.Errorf("expected memory to pass through, got %s", ps.Memory)
	}
	if ps.StorySoFar != "Tiêu Viêm left the clan." {
		t.Errorf("unexpected summary %q", ps.StorySoFar)
	}
}

func TestToSyncPromptState(t *testing.T) {
	gs := testGameState(t)
	gs.LastNarrative = "The wolf bites you."

	sp := ToSyncPromptState(gs)
	if sp.Genre != "Tu tiên" || sp.LastNarrative != "The wolf bites you." {
		t.Errorf("unexpected sync state %+v", sp)
	}
	if sp.Character == nil || sp.Character.Name != "Tiêu Viêm" {
		t.Error("expected sanitized character")
	}
	if sp.Troops == nil || sp.NPCs == nil {
		t.Error("lists should be non-nil")
	}
}

func TestToSummaryPromptState(t *testing.T) {
	gs := state.NewGameState()
	gs.Summary = "Old chronicle."
	gs.History = []state.LogEntry{
		{Result: "short", Narrative: "The full scene."},
		{Result: "only result"},
		{},
	}

	sp := ToSummaryPromptState(gs, 15)
	if sp.PreviousSummary != "Old chronicle." {
		t.Errorf("unexpected previous summary %q", sp.PreviousSummary)
	}
	want := []string{"The full scene.", "only result"}
	if len(sp.RecentEvents) != len(want) {
		t.Fatalf("expected %v, got %v", want, sp.RecentEvents)
	}
	for i := range want {
		if sp.RecentEvents[i] != want[i] {
			t.Errorf("event %d = %q; want %q", i, sp.RecentEvents[i], want[i])
		}
	}
}
