package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validGame = `{
  "world": {"name": "Đấu Khí Đại Lục", "genre": "Tu tiên", "description": "Dou Qi everywhere."},
  "character": {
    "name": "Tiêu Viêm", "race": "Human", "class": "Alchemist",
    "level": 1, "hp": 80, "maxHp": 100, "mana": 10, "maxMana": 50,
    "inventory": [{"id": "ring", "name": "Cổ giới", "category": "equipment", "quantity": 1, "isEquipped": true}],
    "skills": [{"name": "Phần Quyết", "type": "Cultivation", "description": "A flame art."}],
    "activeStatuses": [{"name": "Poisoned", "type": "debuff", "description": "Weak.", "duration": 2}],
    "quests": [{"name": "Regain power", "description": "Find out why.", "status": "active"}]
  }
}`

func TestNewGameValidator(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{name: "valid game", data: validGame},
		{name: "invalid json", data: `{"world":`, wantErr: "invalid JSON"},
		{name: "unknown field", data: `{"world": {"name": "W", "genre": "G"}, "character": {"name": "C"}, "scenario": "x"}`, wantErr: "unknown field"},
		{name: "missing character", data: `{"world": {"name": "W", "genre": "G"}}`, wantErr: "character is required"},
		{name: "blank names", data: `{"world": {"name": " ", "genre": "G"}, "character": {"name": ""}}`, wantErr: "character name is required"},
		{
			name:    "bad enums",
			data:    `{"world": {"name": "W", "genre": "G"}, "character": {"name": "C", "inventory": [{"name": "Rock", "category": "junk", "quantity": 1}], "quests": [{"name": "Q", "status": "paused"}]}}`,
			wantErr: "unknown category 'junk'",
		},
		{
			name:    "shared id",
			data:    `{"world": {"name": "W", "genre": "G"}, "character": {"name": "C", "inventory": [{"id": "x", "name": "A", "category": "material", "quantity": 1}], "skills": [{"id": "x", "name": "B", "type": "Attack"}]}}`,
			wantErr: "reuses id 'x'",
		},
		{name: "hp over max", data: `{"world": {"name": "W", "genre": "G"}, "character": {"name": "C", "hp": 120, "maxHp": 100}}`, wantErr: "hp 120 exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &NewGameValidator{}
			err := v.Validate([]byte(tt.data))
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	if err := validateFile(write("first_steps.json", validGame)); err != nil {
		t.Errorf("valid game file rejected: %v", err)
	}
	if err := validateFile(write("First-Steps.json", validGame)); err == nil {
		t.Error("expected filename format error")
	}
	if err := validateFile(write("house_rules.yaml", "default_max_hp: 150\n")); err != nil {
		t.Errorf("valid rules file rejected: %v", err)
	}
	if err := validateFile(write("notes.txt", "hello")); err == nil {
		t.Error("expected unsupported extension error")
	}
}
