package state

import "slices"

// mergeSkills folds skill updates into the list. A skill is identified by
// its case-insensitive name; a match keeps its id, name and icon while the
// other non-empty fields are overwritten. Removals by id run after the merge.
func (r Rules) mergeSkills(existing []Skill, updates []SkillUpdate, removedIDs []string) []Skill {
	out := slices.Clone(existing)
	ids := newIDSet(out, func(s Skill) string { return s.ID })
	byName := make(map[string]int, len(out))
	for i, s := range out {
		if _, dup := byName[NormalizeName(s.Name)]; !dup {
			byName[NormalizeName(s.Name)] = i
		}
	}

	for _, u := range updates {
		name := trimSpace(u.Name)
		if name == "" {
			continue
		}
		key := NormalizeName(name)
		typ, typOK := ParseSkillType(u.Type)

		if i, ok := byName[key]; ok {
			s := &out[i]
			if typOK {
				s.Type = typ
			}
			if v := trimSpace(u.Description); v != "" {
				s.Description = v
			}
			if v := trimSpace(u.Mastery); v != "" {
				s.Mastery = v
			}
			if v := u.Rank.String(); v != "" {
				s.Rank = v
			}
			continue
		}

		s := Skill{
			ID:          ids.claim(u.ID),
			Name:        name,
			Type:        SkillSpecial,
			Description: trimSpace(u.Description),
			Mastery:     trimSpace(u.Mastery),
			Rank:        u.Rank.String(),
		}
		if typOK {
			s.Type = typ
		}
		if s.Description == "" {
			s.Description = r.DefaultSkillDescription
		}
		if s.Mastery == "" {
			s.Mastery = r.DefaultSkillMastery
		}
		byName[key] = len(out)
		out = append(out, s)
	}

	if len(removedIDs) > 0 {
		out = slices.DeleteFunc(out, func(s Skill) bool { return slices.Contains(removedIDs, s.ID) })
	}
	return out
}

// mergeInventory removes items by id, then folds added items. Stackable
// items merge into a row with the same name; equipment always gets its own
// row. A stacked row whose quantity drops to zero or below is deleted.
func mergeInventory(existing []InventoryItem, added []ItemUpdate, removedIDs []string) []InventoryItem {
	out := slices.Clone(existing)
	if len(removedIDs) > 0 {
		out = slices.DeleteFunc(out, func(it InventoryItem) bool { return slices.Contains(removedIDs, it.ID) })
	}
	ids := newIDSet(out, func(it InventoryItem) string { return it.ID })

	for _, u := range added {
		name := trimSpace(u.Name)
		if name == "" {
			continue
		}
		qty := u.Quantity.Value
		if !u.Quantity.Valid || qty == 0 {
			qty = 1
		}
		cat, ok := ParseItemCategory(u.Category)
		if !ok {
			cat = CategoryConsumable
		}

		if cat == CategoryEquipment {
			if qty <= 0 {
				continue
			}
			out = append(out, InventoryItem{
				ID:          ids.claim(u.ID),
				Name:        name,
				Quantity:    qty,
				Category:    cat,
				Type:        trimSpace(u.Type),
				Rank:        u.Rank.String(),
				Effect:      trimSpace(u.Effect),
				Description: trimSpace(u.Description),
				IsEquipped:  u.IsEquipped.True(),
			})
			continue
		}

		key := NormalizeName(name)
		idx := slices.IndexFunc(out, func(it InventoryItem) bool {
			return NormalizeName(it.Name) == key && (it.Category == cat || it.Category.Stackable())
		})
		if idx >= 0 {
			it := &out[idx]
			it.Quantity = addDelta(it.Quantity, qty)
			if it.Quantity <= 0 {
				out = slices.Delete(out, idx, idx+1)
				continue
			}
			if v := trimSpace(u.Type); v != "" {
				it.Type = v
			}
			if v := u.Rank.String(); v != "" {
				it.Rank = v
			}
			if v := trimSpace(u.Effect); v != "" {
				it.Effect = v
			}
			if v := trimSpace(u.Description); v != "" {
				it.Description = v
			}
			continue
		}
		if qty <= 0 {
			continue
		}
		out = append(out, InventoryItem{
			ID:          ids.claim(u.ID),
			Name:        name,
			Quantity:    qty,
			Category:    cat,
			Type:        trimSpace(u.Type),
			Rank:        u.Rank.String(),
			Effect:      trimSpace(u.Effect),
			Description: trimSpace(u.Description),
		})
	}
	return out
}

// unlockAchievements flips the named achievements to unlocked. Unknown ids
// are ignored and unlocked achievements never lock again.
func unlockAchievements(existing []Achievement, ids []string) []Achievement {
	out := slices.Clone(existing)
	for i := range out {
		if !out[i].IsUnlocked && slices.Contains(ids, out[i].ID) {
			out[i].IsUnlocked = true
		}
	}
	return out
}

// mergeQuests matches updates by id, then by exact name. An unmatched
// update only creates a quest when it is active and named; completed or
// failed updates for unknown quests are dropped.
func (r Rules) mergeQuests(existing []Quest, updates []QuestUpdate) []Quest {
	out := slices.Clone(existing)
	ids := newIDSet(out, func(q Quest) string { return q.ID })

	for _, u := range updates {
		id, name := trimSpace(u.ID), trimSpace(u.Name)
		idx := -1
		if id != "" {
			idx = slices.IndexFunc(out, func(q Quest) bool { return q.ID == id })
		}
		if idx < 0 && name != "" {
			idx = slices.IndexFunc(out, func(q Quest) bool { return q.Name == name })
		}
		status, statusOK := ParseQuestStatus(u.Status)

		if idx >= 0 {
			q := &out[idx]
			if statusOK {
				q.Status = status
			}
			if v := trimSpace(u.Description); v != "" {
				q.Description = v
			}
			if v := trimSpace(u.Progress); v != "" {
				q.Progress = v
			}
			continue
		}

		if !statusOK && u.IsNew.True() && trimSpace(u.Status) == "" {
			status, statusOK = QuestActive, true
		}
		if !statusOK || status != QuestActive || name == "" {
			continue
		}
		q := Quest{
			ID:          ids.claim(id),
			Name:        name,
			Description: trimSpace(u.Description),
			Status:      QuestActive,
			Progress:    trimSpace(u.Progress),
		}
		if q.Description == "" {
			q.Description = r.DefaultQuestDescription
		}
		out = append(out, q)
	}
	return out
}
