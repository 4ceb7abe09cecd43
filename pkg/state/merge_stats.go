package state

import "slices"

// statChange records how much a named stat moved during a merge.
type statChange struct {
	Name  string
	Delta int
}

// mergeStats folds numeric updates into a named value list. Names match
// exactly first, then case-insensitively. Unknown names are appended so no
// reported value is lost; appended stats report no change. Updates without
// a usable value only refresh the description of a known stat.
func mergeStats(existing []Stat, updates []StatUpdate) ([]Stat, []statChange) {
	out := slices.Clone(existing)
	var changes []statChange
	for _, u := range updates {
		name := trimSpace(u.Name)
		if name == "" {
			continue
		}
		idx := findStat(out, name)
		if idx < 0 {
			if !u.Value.Valid {
				continue
			}
			out = append(out, Stat{Name: name, Value: u.Value.Value, Description: trimSpace(u.Description)})
			continue
		}
		if d := trimSpace(u.Description); d != "" {
			out[idx].Description = d
		}
		if !u.Value.Valid {
			continue
		}
		if delta := u.Value.Value - out[idx].Value; delta != 0 {
			changes = append(changes, statChange{Name: out[idx].Name, Delta: delta})
		}
		out[idx].Value = u.Value.Value
	}
	return out, changes
}

func findStat(stats []Stat, name string) int {
	if i := slices.IndexFunc(stats, func(s Stat) bool { return s.Name == name }); i >= 0 {
		return i
	}
	n := NormalizeName(name)
	return slices.IndexFunc(stats, func(s Stat) bool { return NormalizeName(s.Name) == n })
}
