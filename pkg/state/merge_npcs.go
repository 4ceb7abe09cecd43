package state

import "slices"

// npcIndex resolves NPCs by id and by normalized name while a merge runs.
type npcIndex struct {
	npcs   []NPC
	ids    idSet
	byID   map[string]int
	byName map[string]int
}

func newNPCIndex(npcs []NPC) *npcIndex {
	ix := &npcIndex{
		npcs:   npcs,
		ids:    newIDSet(npcs, func(n NPC) string { return n.ID }),
		byID:   make(map[string]int, len(npcs)),
		byName: make(map[string]int, len(npcs)),
	}
	for i, n := range npcs {
		if n.ID != "" {
			ix.byID[n.ID] = i
		}
		ix.claimName(n.Name, i)
	}
	return ix
}

// resolve finds an NPC by id first, then by case-insensitive name.
func (ix *npcIndex) resolve(id, name string) (int, bool) {
	if id = trimSpace(id); id != "" {
		if i, ok := ix.byID[id]; ok {
			return i, true
		}
	}
	if key := NormalizeName(name); key != "" {
		if i, ok := ix.byName[key]; ok {
			return i, true
		}
	}
	return -1, false
}

func (ix *npcIndex) add(n NPC) {
	i := len(ix.npcs)
	ix.npcs = append(ix.npcs, n)
	ix.byID[n.ID] = i
	ix.claimName(n.Name, i)
}

// claimName points name at NPC i unless another NPC already answers to it.
func (ix *npcIndex) claimName(name string, i int) {
	key := NormalizeName(name)
	if key == "" {
		return
	}
	if _, taken := ix.byName[key]; !taken {
		ix.byName[key] = i
	}
}

func (ix *npcIndex) rename(i int, name string) {
	old := NormalizeName(ix.npcs[i].Name)
	if j, ok := ix.byName[old]; ok && j == i {
		delete(ix.byName, old)
	}
	ix.npcs[i].Name = name
	ix.claimName(name, i)
}

// mergeNPCs runs the per-turn NPC merge: statuses decay when a turn
// elapsed, newly met NPCs are created or folded into known ones, and
// updates are applied. An update that matches nobody creates an NPC.
func (r Rules) mergeNPCs(existing []NPC, newNPCs, updates []NPCUpdate, turnElapsed bool) []NPC {
	npcs := make([]NPC, len(existing))
	for i, n := range existing {
		n.ActiveStatuses = cloneTraits(n.ActiveStatuses)
		if turnElapsed {
			n.ActiveStatuses = decayTraits(n.ActiveStatuses)
		}
		npcs[i] = n
	}
	if existing == nil {
		npcs = nil
	}
	ix := newNPCIndex(npcs)

	for _, u := range newNPCs {
		if i, ok := ix.resolve(u.ID, u.Name); ok {
			r.applyNPCUpdate(ix, i, u)
			continue
		}
		ix.add(r.newNPC(ix.ids.claim(""), u))
	}

	for _, u := range updates {
		if i, ok := ix.resolve(u.ID, u.Name); ok {
			r.applyNPCUpdate(ix, i, u)
			continue
		}
		ix.add(r.newNPC(ix.ids.claim(u.ID), u))
	}
	return ix.npcs
}

// newNPC builds an NPC from an update with neutral defaults.
func (r Rules) newNPC(id string, u NPCUpdate) NPC {
	n := NPC{
		ID:          id,
		Name:        trimSpace(u.Name),
		Relation:    RelationNeutral,
		Affiliation: AffiliationNone,
		Notes:       r.DefaultNPCNotes,
	}
	if n.Name == "" {
		n.Name = r.DefaultNPCName
	}
	assignNPCFields(&n, u)
	n.ActiveStatuses = mergeStatuses(nil, u.StatusUpdates)
	return n
}

// applyNPCUpdate overwrites the fields the update carries. The id never
// changes, isLocked is player-owned, and a dead NPC stays dead.
func (r Rules) applyNPCUpdate(ix *npcIndex, i int, u NPCUpdate) {
	if name := trimSpace(u.Name); name != "" && NormalizeName(name) != NormalizeName(ix.npcs[i].Name) {
		ix.rename(i, name)
	}
	n := &ix.npcs[i]
	assignNPCFields(n, u)
	if len(u.StatusUpdates) > 0 {
		n.ActiveStatuses = mergeStatuses(n.ActiveStatuses, u.StatusUpdates)
	}
}

func assignNPCFields(n *NPC, u NPCUpdate) {
	set := func(dst *string, v string) {
		if v = trimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&n.Gender, u.Gender)
	set(&n.Group, u.Group)
	set(&n.HairColor, u.HairColor)
	set(&n.EyeColor, u.EyeColor)
	set(&n.BodyType, u.BodyType)
	set(&n.Notes, u.Notes)
	set(&n.LevelName, u.LevelName)
	set(&n.Emotion, u.Emotion)
	set(&n.CurrentActivity, u.CurrentActivity)
	if rel, ok := ParseRelation(u.Relation); ok {
		n.Relation = rel
	}
	if aff, ok := ParseAffiliation(u.Affiliation); ok {
		n.Affiliation = aff
	}
	if u.Level.Valid && u.Level.Value > 0 {
		n.Level = u.Level.Value
	}
	if u.IsDead.True() {
		n.IsDead = true
	}
}

// mergeTroops applies quantity deltas to troop units matched by exact name.
// Quantities floor at zero and units are never removed. An unknown unit is
// only created by a positive delta.
func (r Rules) mergeTroops(existing []TroopUnit, updates []TroopUpdate) []TroopUnit {
	out := slices.Clone(existing)
	for i := range out {
		out[i].ViceCommanderIDs = slices.Clone(out[i].ViceCommanderIDs)
	}
	ids := newIDSet(out, func(t TroopUnit) string { return t.ID })

	for _, u := range updates {
		name := trimSpace(u.Name)
		if name == "" {
			continue
		}
		delta := 0
		if u.QuantityChange.Valid {
			delta = u.QuantityChange.Value
		}

		idx := slices.IndexFunc(out, func(t TroopUnit) bool { return t.Name == name })
		if idx >= 0 {
			t := &out[idx]
			t.Quantity = max(0, addDelta(t.Quantity, delta))
			if v := trimSpace(u.RenameTo); v != "" {
				t.Name = v
			}
			if v := trimSpace(u.Description); v != "" {
				t.Description = v
			}
			continue
		}

		if delta <= 0 {
			continue
		}
		unit := TroopUnit{
			ID:          ids.claim(""),
			Name:        name,
			Quantity:    delta,
			Description: trimSpace(u.Description),
		}
		if v := trimSpace(u.RenameTo); v != "" {
			unit.Name = v
		}
		if unit.Description == "" {
			unit.Description = r.DefaultTroopDescription
		}
		out = append(out, unit)
	}
	return out
}
