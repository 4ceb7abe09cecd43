package state

import (
	"fmt"
	"slices"
)

// FusionIngredients returns the skills named by skillIDs after checking
// that they can be fused: at least two distinct skills, all held by the
// character and all of one type.
func (c *Character) FusionIngredients(skillIDs []string) ([]Skill, error) {
	ids := slices.Compact(slices.Sorted(slices.Values(skillIDs)))
	if len(ids) < 2 {
		return nil, fmt.Errorf("%w: fusion needs at least two different skills", ErrInvalidOperation)
	}
	var out []Skill
	for _, id := range ids {
		i := slices.IndexFunc(c.Skills, func(s Skill) bool { return s.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("skill %s: %w", id, ErrEntityNotFound)
		}
		if len(out) > 0 && c.Skills[i].Type != out[0].Type {
			return nil, fmt.Errorf("%w: cannot fuse %s skill %s with %s skill %s",
				ErrInvalidOperation, c.Skills[i].Type, c.Skills[i].Name, out[0].Type, out[0].Name)
		}
		out = append(out, c.Skills[i])
	}
	return out, nil
}

// FuseSkills replaces the ingredient skills with the fused skill. The fused
// skill always keeps the ingredients' type and gets a fresh id. If its name
// matches another remaining skill, that skill is updated instead, so names
// stay unique. The resulting skill is returned.
func (r Rules) FuseSkills(c *Character, skillIDs []string, fused SkillUpdate) (Skill, error) {
	ingredients, err := c.FusionIngredients(skillIDs)
	if err != nil {
		return Skill{}, err
	}
	if trimSpace(fused.Name) == "" {
		return Skill{}, fmt.Errorf("%w: fused skill has no name", ErrMalformedResponse)
	}

	remaining := slices.DeleteFunc(slices.Clone(c.Skills), func(s Skill) bool {
		return slices.ContainsFunc(ingredients, func(in Skill) bool { return in.ID == s.ID })
	})
	fused.ID = ""
	fused.Type = string(ingredients[0].Type)
	c.Skills = r.mergeSkills(remaining, []SkillUpdate{fused}, nil)

	key := NormalizeName(fused.Name)
	i := slices.IndexFunc(c.Skills, func(s Skill) bool { return NormalizeName(s.Name) == key })
	return c.Skills[i], nil
}
