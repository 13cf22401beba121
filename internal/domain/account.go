package domain

// Account is one player identity the fleet drives. InitData is the opaque
// chat-platform credential produced by the external login handshake.
type Account struct {
	Name     string
	InitData string
}

// Database is the immutable game catalog fetched once per authorization.
type Database struct {
	Skills     []Skill
	Leagues    []League
	Strategies []string
	Quests     []QuestDef
}

// QuestDef is a quest definition from the game database. CheckData carries
// the expected answer for puzzle-style quests.
type QuestDef struct {
	Key       string
	CheckData string
}

// LeagueByKey returns the league with the given key, or nil.
func (d *Database) LeagueByKey(key string) *League {
	for i := range d.Leagues {
		if d.Leagues[i].Key == key {
			return &d.Leagues[i]
		}
	}
	return nil
}

// HasStrategy reports whether key is a known negotiation strategy.
func (d *Database) HasStrategy(key string) bool {
	for _, s := range d.Strategies {
		if s == key {
			return true
		}
	}
	return false
}
