package state

import (
	"fmt"
	"slices"
)

// Player edits to the NPC roster, troops and statuses. These run outside
// a turn and never touch the turn counter or history.

func (gs *GameState) npcIndex(id string) (int, error) {
	i := slices.IndexFunc(gs.NPCs, func(n NPC) bool { return n.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("npc %s: %w", id, ErrEntityNotFound)
	}
	return i, nil
}

func (gs *GameState) troopIndex(id string) (int, error) {
	i := slices.IndexFunc(gs.Troops, func(t TroopUnit) bool { return t.ID == id })
	if i < 0 {
		return -1, fmt.Errorf("troop %s: %w", id, ErrEntityNotFound)
	}
	return i, nil
}

// ToggleNPCLock flips the lock of an NPC and returns the new value.
func (gs *GameState) ToggleNPCLock(npcID string) (bool, error) {
	i, err := gs.npcIndex(npcID)
	if err != nil {
		return false, err
	}
	gs.NPCs[i].IsLocked = !gs.NPCs[i].IsLocked
	return gs.NPCs[i].IsLocked, nil
}

// DeleteNPC removes an unlocked NPC and drops it from every troop command.
func (gs *GameState) DeleteNPC(npcID string) error {
	i, err := gs.npcIndex(npcID)
	if err != nil {
		return err
	}
	if gs.NPCs[i].IsLocked {
		return fmt.Errorf("%s: %w", gs.NPCs[i].Name, ErrNPCLocked)
	}
	gs.NPCs = slices.Delete(gs.NPCs, i, i+1)
	for j := range gs.Troops {
		t := &gs.Troops[j]
		if t.CommanderID == npcID {
			t.CommanderID = ""
		}
		t.ViceCommanderIDs = slices.DeleteFunc(slices.Clone(t.ViceCommanderIDs), func(id string) bool { return id == npcID })
	}
	return nil
}

// SetNPCAffiliation moves an NPC to another social group.
func (gs *GameState) SetNPCAffiliation(npcID string, affiliation string) error {
	aff, ok := ParseAffiliation(affiliation)
	if !ok {
		return fmt.Errorf("%w: unknown affiliation %q", ErrInvalidOperation, affiliation)
	}
	i, err := gs.npcIndex(npcID)
	if err != nil {
		return err
	}
	gs.NPCs[i].Affiliation = aff
	return nil
}

// AssignCommander puts an NPC in command of a troop, or adds it to the vice
// commanders. An NPC is listed as vice commander at most once.
func (gs *GameState) AssignCommander(troopID, npcID string, vice bool) error {
	ti, err := gs.troopIndex(troopID)
	if err != nil {
		return err
	}
	if _, err := gs.npcIndex(npcID); err != nil {
		return err
	}
	t := &gs.Troops[ti]
	switch {
	case !vice:
		t.CommanderID = npcID
	case !slices.Contains(t.ViceCommanderIDs, npcID):
		t.ViceCommanderIDs = append(slices.Clone(t.ViceCommanderIDs), npcID)
	}
	return nil
}

// RemoveCommander clears the commander of a troop, or removes one vice
// commander.
func (gs *GameState) RemoveCommander(troopID, npcID string, vice bool) error {
	ti, err := gs.troopIndex(troopID)
	if err != nil {
		return err
	}
	t := &gs.Troops[ti]
	if !vice {
		t.CommanderID = ""
		return nil
	}
	if !slices.Contains(t.ViceCommanderIDs, npcID) {
		return fmt.Errorf("vice commander %s of %s: %w", npcID, t.Name, ErrEntityNotFound)
	}
	t.ViceCommanderIDs = slices.DeleteFunc(slices.Clone(t.ViceCommanderIDs), func(id string) bool { return id == npcID })
	return nil
}

// ApplyStatus folds a player-made trait update into the character, or into
// the NPC with npcID when it is set. It goes through the same merge as
// narrator updates, so removal and duration rules are identical.
func (gs *GameState) ApplyStatus(npcID string, u TraitUpdate) error {
	if trimSpace(u.Name) == "" {
		return fmt.Errorf("%w: status name is required", ErrInvalidOperation)
	}
	if npcID == "" {
		if gs.Character == nil {
			return fmt.Errorf("%w: no character", ErrInvariantViolation)
		}
		mergeCharacterTraits(gs.Character, []TraitUpdate{u})
		return nil
	}
	i, err := gs.npcIndex(npcID)
	if err != nil {
		return err
	}
	gs.NPCs[i].ActiveStatuses = mergeStatuses(gs.NPCs[i].ActiveStatuses, []TraitUpdate{u})
	return nil
}
