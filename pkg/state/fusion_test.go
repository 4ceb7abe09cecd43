package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fusionCharacter() *Character {
	c := testCharacter()
	c.Skills = append(c.Skills,
		Skill{ID: "s2", Name: "Flame Fist", Type: SkillAttack, Mastery: "Adept"},
		Skill{ID: "s3", Name: "Iron Skin", Type: SkillDefense},
		Skill{ID: "s4", Name: "Burning Lotus", Type: SkillAttack, Description: "Old technique."},
	)
	return c
}

func TestRules_FuseSkills(t *testing.T) {
	rules := DefaultRules()

	t.Run("ingredients are replaced by the fused skill", func(t *testing.T) {
		c := fusionCharacter()
		got, err := rules.FuseSkills(c, []string{"s1", "s2"}, SkillUpdate{
			ID: "s1", Name: "Phật Nộ Hỏa Liên", Type: "Defense", Description: "Fire lotus of wrath.", Mastery: "Novice",
		})
		require.NoError(t, err)

		assert.Equal(t, "Phật Nộ Hỏa Liên", got.Name)
		assert.Equal(t, SkillAttack, got.Type, "fused skill keeps the ingredients' type")
		assert.NotContains(t, []string{"s1", "s2", "s3", "s4"}, got.ID)
		require.Len(t, c.Skills, 3)
		assert.Equal(t, []string{"s3", "s4", got.ID}, []string{c.Skills[0].ID, c.Skills[1].ID, c.Skills[2].ID})
	})

	t.Run("fused name matching a remaining skill updates it", func(t *testing.T) {
		c := fusionCharacter()
		got, err := rules.FuseSkills(c, []string{"s1", "s2"}, SkillUpdate{Name: "burning lotus", Description: "Reborn."})
		require.NoError(t, err)
		assert.Equal(t, "s4", got.ID)
		assert.Equal(t, "Reborn.", got.Description)
		assert.Len(t, c.Skills, 2)
	})

	tests := []struct {
		name    string
		ids     []string
		fused   SkillUpdate
		wantErr error
	}{
		{"mixed types", []string{"s1", "s3"}, SkillUpdate{Name: "X"}, ErrInvalidOperation},
		{"single skill", []string{"s1"}, SkillUpdate{Name: "X"}, ErrInvalidOperation},
		{"same skill twice", []string{"s1", "s1"}, SkillUpdate{Name: "X"}, ErrInvalidOperation},
		{"unknown skill", []string{"s1", "s9"}, SkillUpdate{Name: "X"}, ErrEntityNotFound},
		{"nameless result", []string{"s1", "s2"}, SkillUpdate{Name: " "}, ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fusionCharacter()
			_, err := rules.FuseSkills(c, tt.ids, tt.fused)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, fusionCharacter().Skills, c.Skills)
		})
	}
}

func TestParseSkillResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"bare object", `{"name":"Hỏa Liên","type":"Attack","mastery":"Novice"}`, "Hỏa Liên", false},
		{"wrapped and fenced", "```json\n{\"skill\":{\"name\":\"Hỏa Liên\",\"description\":\"Lotus\"}}\n```", "Hỏa Liên", false},
		{"array", `[{"name":"Hỏa Liên"}]`, "Hỏa Liên", false},
		{"no name", `{"type":"Attack"}`, "", true},
		{"not json", `The skills merge into light.`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSkillResponse(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}
