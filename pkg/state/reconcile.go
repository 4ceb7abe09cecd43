package state

import (
	"math"
	"slices"
)

// ReconcileCharacter returns the character after applying the response.
// prev is not modified. Every merge that touches the character runs here,
// followed by the max HP and mana bonus, the level-up loop and clamping.
// Active statuses decay once before updates are folded in when a turn
// elapsed, so a status set this turn is not shortened by it.
func (r Rules) ReconcileCharacter(prev *Character, resp *TurnResponse, turnElapsed bool) *Character {
	if prev == nil {
		return nil
	}
	c := *prev
	c.ActiveStatuses = cloneTraits(prev.ActiveStatuses)
	if turnElapsed {
		c.ActiveStatuses = decayTraits(c.ActiveStatuses)
	}
	if resp == nil {
		return &c
	}

	up := resp.StatUpdates
	if up == nil {
		up = &CharacterUpdate{}
	}

	var bonusHP, bonusMana int
	var changes []statChange
	c.Stats, changes = mergeStats(prev.Stats, up.Stats)
	for _, ch := range changes {
		hp, mana := r.statBonus(ch.Name, ch.Delta)
		bonusHP += hp
		bonusMana += mana
	}

	c.Resistances, _ = mergeStats(prev.Resistances, up.Resistances)
	c.Skills = r.mergeSkills(prev.Skills, up.Skills, resp.RemovedSkillIDs)
	c.Inventory = mergeInventory(prev.Inventory, resp.AddedInventoryItems, resp.RemovedInventoryIDs)
	mergeCharacterTraits(&c, resp.TraitUpdates)
	c.Achievements = unlockAchievements(prev.Achievements, resp.UnlockedAchievementIDs)
	c.Quests = r.mergeQuests(prev.Quests, resp.QuestUpdates)
	if up.PermanentInjuries != nil {
		c.PermanentInjuries = nonBlank(up.PermanentInjuries)
	} else {
		c.PermanentInjuries = slices.Clone(prev.PermanentInjuries)
	}
	if up.Talents != nil {
		c.Talents = nonBlank(up.Talents)
	} else {
		c.Talents = slices.Clone(prev.Talents)
	}

	if v := trimSpace(up.LevelName); v != "" {
		c.LevelName = v
	}
	if v := trimSpace(up.Title); v != "" {
		c.Title = v
	}

	if up.MaxHP.Valid && up.MaxHP.Value > 0 {
		c.MaxHP = up.MaxHP.Value
	} else {
		c.MaxHP = prev.MaxHP + bonusHP
	}
	if up.MaxMana.Valid && up.MaxMana.Value > 0 {
		c.MaxMana = up.MaxMana.Value
	} else {
		c.MaxMana = prev.MaxMana + bonusMana
	}
	if up.HP.Valid {
		c.HP = up.HP.Value
	}
	if up.Mana.Valid {
		c.Mana = up.Mana.Value
	}

	if up.Level.Valid && up.Level.Value >= 1 {
		c.Level = up.Level.Value
	}
	if up.Exp.Valid {
		c.Exp = max(0, up.Exp.Value)
	}
	if up.ExpToNextLevel.Valid && up.ExpToNextLevel.Value > 0 {
		c.ExpToNextLevel = up.ExpToNextLevel.Value
	}
	if gained := c.Level - prev.Level; gained > 0 && c.ExpToNextLevel <= prev.ExpToNextLevel {
		c.ExpToNextLevel = r.growThreshold(prev.ExpToNextLevel, gained)
	}
	r.levelUp(&c)

	c.HP = min(c.HP, c.MaxHP)
	c.Mana = min(c.Mana, c.MaxMana)
	return &c
}

// growThreshold scales an exp threshold by the growth factor once per level.
func (r Rules) growThreshold(threshold, levels int) int {
	t := max(threshold, r.MinExpThreshold)
	scaled := math.Floor(float64(t) * math.Pow(r.LevelGrowthFactor, float64(levels)))
	if scaled > math.MaxInt32 {
		return math.MaxInt32
	}
	return max(int(scaled), t+levels)
}

// levelUp converts accumulated exp into levels. The threshold grows on
// every level so the loop ends; MaxLevelUps bounds it regardless.
func (r Rules) levelUp(c *Character) {
	c.ExpToNextLevel = max(c.ExpToNextLevel, r.MinExpThreshold)
	for i := 0; i < r.MaxLevelUps && c.Exp >= c.ExpToNextLevel; i++ {
		c.Exp -= c.ExpToNextLevel
		c.Level++
		c.ExpToNextLevel = r.growThreshold(c.ExpToNextLevel, 1)
	}
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = trimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
