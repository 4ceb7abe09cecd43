package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jwebster45206/chronicle-engine/internal/config"
	"github.com/jwebster45206/chronicle-engine/pkg/state"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <new_game.json | rules.yaml>...\n", os.Args[0])
		os.Exit(1)
	}

	failed := false
	for _, filename := range os.Args[1:] {
		if err := validateFile(filename); err != nil {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
			failed = true
			continue
		}
		fmt.Printf("%s is valid!\n", filename)
	}
	if failed {
		os.Exit(1)
	}
}

func validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	ext := filepath.Ext(baseName)
	if !isValidFilename(strings.TrimSuffix(baseName, ext)) {
		return fmt.Errorf("filename '%s' must be lowercase snake_case (e.g., my_world.json, not my-world.json or MyWorld.json)", baseName)
	}

	switch ext {
	case ".yaml", ".yml":
		_, err := config.LoadRules(filename)
		return err
	case ".json":
		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", filename, err)
		}
		v := &NewGameValidator{}
		return v.Validate(data)
	default:
		return fmt.Errorf("unsupported file type %q (expected .json or .yaml)", ext)
	}
}

// NewGame is the body accepted by POST /v1/gamestate.
type NewGame struct {
	World     *state.World     `json:"world"`
	Character *state.Character `json:"character"`
}

type NewGameValidator struct {
	errors []string
}

// Validate strictly decodes a new game file and checks every enum and
// identifier in it.
func (v *NewGameValidator) Validate(data []byte) error {
	v.errors = nil
	if !json.Valid(data) {
		return fmt.Errorf("file contains invalid JSON")
	}

	var ng NewGame
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&ng); err != nil {
		return fmt.Errorf("failed strict JSON unmarshaling: %w", err)
	}

	v.validateWorld(ng.World)
	v.validateCharacter(ng.Character)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *NewGameValidator) validateWorld(w *state.World) {
	if w == nil {
		v.addError("world is required")
		return
	}
	if strings.TrimSpace(w.Name) == "" {
		v.addError("world name is required")
	}
	if strings.TrimSpace(w.Genre) == "" {
		v.addError("world genre is required")
	}
}

func (v *NewGameValidator) validateCharacter(c *state.Character) {
	if c == nil {
		v.addError("character is required")
		return
	}
	if strings.TrimSpace(c.Name) == "" {
		v.addError("character name is required")
	}
	if c.MaxHP > 0 && c.HP > c.MaxHP {
		v.addError(fmt.Sprintf("hp %d exceeds maxHp %d", c.HP, c.MaxHP))
	}
	if c.MaxMana > 0 && c.Mana > c.MaxMana {
		v.addError(fmt.Sprintf("mana %d exceeds maxMana %d", c.Mana, c.MaxMana))
	}

	ids := map[string]string{}
	for _, it := range c.Inventory {
		v.validateID(ids, "inventory item", it.Name, it.ID)
		if _, ok := state.ParseItemCategory(string(it.Category)); !ok {
			v.addError(fmt.Sprintf("item '%s' has unknown category '%s'", it.Name, it.Category))
		}
		if it.IsEquipped && it.Category != state.CategoryEquipment {
			v.addError(fmt.Sprintf("item '%s' is equipped but is not equipment", it.Name))
		}
	}
	for _, s := range c.Skills {
		v.validateID(ids, "skill", s.Name, s.ID)
		if _, ok := state.ParseSkillType(string(s.Type)); !ok {
			v.addError(fmt.Sprintf("skill '%s' has unknown type '%s'", s.Name, s.Type))
		}
	}
	for _, list := range [][]state.Trait{c.Bloodlines, c.DivineBodies, c.ActiveStatuses} {
		for _, t := range list {
			v.validateID(ids, "trait", t.Name, t.ID)
			if _, ok := state.ParseTraitType(string(t.Type)); !ok {
				v.addError(fmt.Sprintf("trait '%s' has unknown type '%s'", t.Name, t.Type))
			}
		}
	}
	for _, q := range c.Quests {
		v.validateID(ids, "quest", q.Name, q.ID)
		if _, ok := state.ParseQuestStatus(string(q.Status)); !ok {
			v.addError(fmt.Sprintf("quest '%s' has unknown status '%s'", q.Name, q.Status))
		}
	}
	for _, a := range c.Achievements {
		v.validateID(ids, "achievement", a.Name, a.ID)
		if strings.TrimSpace(a.Condition) == "" {
			v.addError(fmt.Sprintf("achievement '%s' has no unlock condition", a.Name))
		}
	}
}

// validateID checks that a named entity is named and that a preset id is
// not shared with any other entity.
func (v *NewGameValidator) validateID(seen map[string]string, kind, name, id string) {
	if strings.TrimSpace(name) == "" {
		v.addError(fmt.Sprintf("%s without a name", kind))
	}
	if id == "" {
		return
	}
	if prev, ok := seen[id]; ok {
		v.addError(fmt.Sprintf("%s '%s' reuses id '%s' of %s", kind, name, id, prev))
		return
	}
	seen[id] = fmt.Sprintf("%s '%s'", kind, name)
}

func (v *NewGameValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidFilename(name string) bool {
	// Allow 'x.' prefix for experimental files
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
