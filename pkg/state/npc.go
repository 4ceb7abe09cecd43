package state

type Relation string

const (
	RelationHostile  Relation = "hostile"
	RelationNeutral  Relation = "neutral"
	RelationFriendly Relation = "friendly"
	RelationDevoted  Relation = "devoted"
	RelationNemesis  Relation = "nemesis"
)

func ParseRelation(s string) (Relation, bool) {
	r := Relation(NormalizeName(s))
	switch r {
	case RelationHostile, RelationNeutral, RelationFriendly, RelationDevoted, RelationNemesis:
		return r, true
	}
	return "", false
}

// Affiliation is the player-controlled social grouping of an NPC.
// It is independent of Relation.
type Affiliation string

const (
	AffiliationNone    Affiliation = "none"
	AffiliationFaction Affiliation = "faction"
	AffiliationSlave   Affiliation = "slave"
)

func ParseAffiliation(s string) (Affiliation, bool) {
	a := Affiliation(NormalizeName(s))
	switch a {
	case AffiliationNone, AffiliationFaction, AffiliationSlave:
		return a, true
	}
	return "", false
}

// NPC represents a non-player character known to the player.
type NPC struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Gender          string      `json:"gender,omitempty"`
	Group           string      `json:"group,omitempty"`
	HairColor       string      `json:"hairColor,omitempty"`
	EyeColor        string      `json:"eyeColor,omitempty"`
	BodyType        string      `json:"bodyType,omitempty"`
	Relation        Relation    `json:"relation"`
	Affiliation     Affiliation `json:"affiliation"`
	Notes           string      `json:"notes"`
	Level           int         `json:"level,omitempty"`
	LevelName       string      `json:"levelName,omitempty"`
	IsLocked        bool        `json:"isLocked,omitempty"` // set by the player, protects against deletion
	Emotion         string      `json:"emotion,omitempty"`
	CurrentActivity string      `json:"currentActivity,omitempty"`
	ActiveStatuses  []Trait     `json:"activeStatuses,omitempty"`
	IsDead          bool        `json:"isDead,omitempty"`
}

// TroopUnit is a group of soldiers under the player's command.
// CommanderID and ViceCommanderIDs reference NPCs without owning them.
type TroopUnit struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Quantity         int      `json:"quantity"`
	Description      string   `json:"description"`
	CommanderID      string   `json:"commanderId,omitempty"`
	ViceCommanderIDs []string `json:"viceCommanderIds,omitempty"`
}
