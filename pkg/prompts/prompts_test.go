package prompts

import (
	"strings"
	"testing"

	"github.com/jwebster45206/chronicle-engine/pkg/chat"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

func TestLevelSystemHint(t *testing.T) {
	tests := []struct {
		genre    string
		contains string
	}{
		{"Tu Tiên", "Golden Core"},
		{"Tiên hiệp cổ điển", "Nascent Soul"},
		{"Kiếm hiệp", "Martial Saint"},
		{"High Fantasy", "Apprentice"},
		{"VRMMO", "Level 100+"},
		{"Mạt thế zombie", "Tier 9"},
		{"Noir detective", "numbered levels"},
		{"", "numbered levels"},
	}
	for _, tt := range tests {
		t.Run(tt.genre, func(t *testing.T) {
			got := LevelSystemHint(tt.genre)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("LevelSystemHint(%q) = %q; want it to contain %q", tt.genre, got, tt.contains)
			}
		})
	}
}

func TestBuildSystemPrompt(t *testing.T) {
	prompt := BuildSystemPrompt(nil)
	if !strings.Contains(prompt, "an unnamed land") {
		t.Error("expected placeholder world name")
	}
	if !strings.Contains(prompt, "OUTPUT SCHEMA") {
		t.Error("expected the response schema in the system prompt")
	}
	if strings.Contains(prompt, "%!") {
		t.Errorf("system prompt has a formatting error: %q", prompt)
	}

	prompt = BuildSystemPrompt(&state.World{Name: "Thiên Huyền", Genre: "Võ hiệp"})
	if !strings.Contains(prompt, "Thiên Huyền") || !strings.Contains(prompt, "Grandmaster") {
		t.Errorf("unexpected system prompt %q", prompt)
	}
}

func TestGetStatePrompt(t *testing.T) {
	msg, err := GetStatePrompt(map[string]int{"turn": 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Role != chat.ChatRoleSystem {
		t.Errorf("expected system role, got %s", msg.Role)
	}
	if !strings.Contains(msg.Content, "```json\n{\"turn\":3}\n```") {
		t.Errorf("unexpected state prompt %q", msg.Content)
	}

	if _, err := GetStatePrompt(func() {}); err == nil {
		t.Error("expected marshal error")
	}
}
