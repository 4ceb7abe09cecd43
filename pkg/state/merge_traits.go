package state

import "slices"

// decayTraits counts down every timed trait by one turn and prunes those
// that run out. Permanent traits (nil duration) are untouched.
func decayTraits(traits []Trait) []Trait {
	if len(traits) == 0 {
		return traits
	}
	out := make([]Trait, 0, len(traits))
	for _, t := range traits {
		if t.Duration != nil {
			left := *t.Duration - 1
			if left <= 0 {
				continue
			}
			t.Duration = &left
		}
		out = append(out, t)
	}
	return out
}

// applyTraitUpdate folds one update into a role-list. Traits match by exact
// name. The duration is the explicit value if one was set, otherwise the
// existing duration shifted by durationChange. A timed trait whose duration
// reaches zero is removed.
func applyTraitUpdate(traits []Trait, u TraitUpdate, fallback TraitType, ids idSet) []Trait {
	name := trimSpace(u.Name)
	if name == "" {
		return traits
	}
	idx := slices.IndexFunc(traits, func(t Trait) bool { return t.Name == name })

	if u.IsRemoved.True() {
		if idx >= 0 {
			traits = slices.Delete(traits, idx, idx+1)
		}
		return traits
	}

	var existing *Trait
	if idx >= 0 {
		existing = &traits[idx]
	}

	var duration *int
	switch abs := u.absoluteDuration(); {
	case abs.Valid:
		duration = intPtr(abs.Value)
	case u.DurationChange.Valid && existing != nil && existing.Duration != nil:
		duration = intPtr(addDelta(*existing.Duration, u.DurationChange.Value))
	case u.DurationChange.Valid:
		duration = intPtr(u.DurationChange.Value)
	case existing != nil && existing.Duration != nil:
		duration = intPtr(*existing.Duration)
	}

	if duration != nil && *duration <= 0 {
		if idx >= 0 {
			traits = slices.Delete(traits, idx, idx+1)
		}
		return traits
	}

	if existing != nil {
		if v := trimSpace(u.Description); v != "" {
			existing.Description = v
		}
		if v := trimSpace(u.Quality); v != "" {
			existing.Quality = v
		}
		if v := trimSpace(u.Effect); v != "" {
			existing.Effect = v
		}
		existing.Duration = duration
		return traits
	}

	typ, ok := ParseTraitType(u.Type)
	if !ok {
		typ = fallback
	}
	return append(traits, Trait{
		ID:          ids.claim(""),
		Name:        name,
		Type:        typ,
		Description: trimSpace(u.Description),
		Quality:     trimSpace(u.Quality),
		Duration:    duration,
		Effect:      trimSpace(u.Effect),
	})
}

// mergeStatuses folds updates into a single active-status list, as used for
// NPCs. Bloodline and divine body updates are routed like any other status.
func mergeStatuses(existing []Trait, updates []TraitUpdate) []Trait {
	out := cloneTraits(existing)
	ids := newIDSet(out, func(t Trait) string { return t.ID })
	for _, u := range updates {
		out = applyTraitUpdate(out, u, TraitSpecial, ids)
	}
	return out
}

// mergeCharacterTraits routes each update to the bloodline, divine body or
// active-status list by type. An update without a known type targets the
// list that already holds a trait of that name, else the active statuses.
func mergeCharacterTraits(c *Character, updates []TraitUpdate) {
	c.Bloodlines = cloneTraits(c.Bloodlines)
	c.DivineBodies = cloneTraits(c.DivineBodies)
	c.ActiveStatuses = cloneTraits(c.ActiveStatuses)

	ids := idSet{}
	for _, list := range [][]Trait{c.Bloodlines, c.DivineBodies, c.ActiveStatuses} {
		for _, t := range list {
			if t.ID != "" {
				ids[t.ID] = struct{}{}
			}
		}
	}

	for _, u := range updates {
		typ, ok := ParseTraitType(u.Type)
		if !ok {
			typ = TraitSpecial
			name := trimSpace(u.Name)
			hasName := func(t Trait) bool { return t.Name == name }
			switch {
			case slices.ContainsFunc(c.Bloodlines, hasName):
				typ = TraitBloodline
			case slices.ContainsFunc(c.DivineBodies, hasName):
				typ = TraitDivineBody
			}
		}
		list := c.traitList(typ)
		*list = applyTraitUpdate(*list, u, typ, ids)
	}
}

// cloneTraits copies a trait list including the duration pointers, so
// merges never write through to the source state.
func cloneTraits(traits []Trait) []Trait {
	out := slices.Clone(traits)
	for i := range out {
		if out[i].Duration != nil {
			out[i].Duration = intPtr(*out[i].Duration)
		}
	}
	return out
}

func intPtr(v int) *int { return &v }
