package state

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// effectEntry matches one "Stat name +5" part of an item effect.
var effectEntry = regexp.MustCompile(`^(.*?)\s*([+-]\d+)$`)

// StatModifier is a signed change to a named stat.
type StatModifier struct {
	Stat  string
	Value int
}

// ParseEffectModifiers reads stat modifiers from an item effect such as
// "Sức mạnh +5, Nhanh nhẹn -2". Parts that are not of that form are ignored.
func ParseEffectModifiers(effect string) []StatModifier {
	var mods []StatModifier
	for part := range strings.SplitSeq(effect, ",") {
		m := effectEntry.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			continue
		}
		name := trimSpace(m[1])
		v, err := strconv.Atoi(m[2])
		if name == "" || err != nil || v < -MaxFlexInt || v > MaxFlexInt {
			continue
		}
		mods = append(mods, StatModifier{Stat: name, Value: v})
	}
	return mods
}

// ToggleEquip equips or unequips the equipment item with itemID. Stat
// modifiers in the item effect are added to matching stats on equip and
// taken back on unequip, so a round trip leaves the stats as they were.
// Stats are matched case-insensitively; modifiers for stats the character
// does not have are ignored. The updated item is returned.
func (c *Character) ToggleEquip(itemID string) (InventoryItem, error) {
	idx := -1
	for i, it := range c.Inventory {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return InventoryItem{}, fmt.Errorf("item %s: %w", itemID, ErrEntityNotFound)
	}
	it := &c.Inventory[idx]
	if it.Category != CategoryEquipment {
		return InventoryItem{}, fmt.Errorf("%w: %s is %s, only equipment can be equipped", ErrInvalidOperation, it.Name, it.Category)
	}

	it.IsEquipped = !it.IsEquipped
	sign := 1
	if !it.IsEquipped {
		sign = -1
	}
	for _, mod := range ParseEffectModifiers(it.Effect) {
		if i := findStat(c.Stats, mod.Stat); i >= 0 {
			c.Stats[i].Value = addDelta(c.Stats[i].Value, sign*mod.Value)
		}
	}
	return *it, nil
}
