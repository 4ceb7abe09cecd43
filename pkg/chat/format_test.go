package chat

import (
	"strings"
	"testing"

	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

func TestFormatWithPCName(t *testing.T) {
	tests := []struct {
		name     string
		message  string
		pcName   string
		expected string
	}{
		{
			name:     "adds PC name prefix to plain message",
			message:  "I draw my sword.",
			pcName:   "Tiêu Viêm",
			expected: "Tiêu Viêm: I draw my sword.",
		},
		{
			name:     "preserves existing speaker prefix",
			message:  "Dược Lão: Careful, boy.",
			pcName:   "Tiêu Viêm",
			expected: "Dược Lão: Careful, boy.",
		},
		{
			name:     "preserves colon in sentence (acceptable false positive)",
			message:  "I read the scroll: it names a valley.",
			pcName:   "Lâm Động",
			expected: "I read the scroll: it names a valley.",
		},
		{
			name:     "handles empty message",
			message:  "",
			pcName:   "Lâm Động",
			expected: "Lâm Động: ",
		},
		{
			name:     "colon beyond 50 chars is not a speaker",
			message:  "This is a really really really really really long name: message",
			pcName:   "Gimli",
			expected: "Gimli: This is a really really really really really long name: message",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWithPCName(tt.message, tt.pcName)
			if result != tt.expected {
				t.Errorf("FormatWithPCName(%q, %q) = %q; want %q",
					tt.message, tt.pcName, result, tt.expected)
			}
		})
	}
}

func TestTurnRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     TurnRequest
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid short action",
			req:  TurnRequest{Action: "I attack the wolf."},
		},
		{
			name: "valid action at max length",
			req:  TurnRequest{Action: strings.Repeat("ệ", MaxMessageLength)},
		},
		{
			name:    "action too long",
			req:     TurnRequest{Action: strings.Repeat("a", MaxMessageLength+1)},
			wantErr: true,
			errMsg:  "exceeds maximum length",
		},
		{
			name:    "blank action",
			req:     TurnRequest{Action: "   "},
			wantErr: true,
			errMsg:  "cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.errMsg)
			}
		})
	}
}

func TestNewTurnResult(t *testing.T) {
	gs := state.NewGameState()
	gs.Phase = state.PhaseGameOver
	gs.GameOverReason = "Fell in battle"
	gs.SuggestedActions = []string{"Start over"}

	res := NewTurnResult(gs, "The end.")
	if !res.GameOver || res.GameOverReason != "Fell in battle" {
		t.Errorf("expected game over result, got %+v", res)
	}
	if res.Narrative != "The end." || len(res.SuggestedActions) != 1 {
		t.Errorf("unexpected result payload %+v", res)
	}
}
