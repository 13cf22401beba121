package domain

import "time"

// SkillRequirement is one gating tier of a skill: it applies to every level
// at or above Level until the next tier takes over.
type SkillRequirement struct {
	Level             int
	RequiredAllies    int
	RequiredHeroLevel int
	// RequiredSkills maps prerequisite skill key to minimum level. The gate
	// is satisfied as soon as any single pair is met (inclusive OR), matching
	// the game client's behavior.
	RequiredSkills map[string]int
}

// Skill is one immutable upgrade definition from the game database.
type Skill struct {
	Key         string
	Title       string
	Category    string
	SubCategory string

	PriceBase    float64
	PriceKind    FormulaKind
	PriceCoeff   float64
	ProfitBase   float64
	ProfitKind   FormulaKind
	ProfitCoeff  float64
	MaxLevel     int
	Requirements []SkillRequirement
}

// RequirementFor returns the requirement tier whose threshold is the greatest
// value not exceeding level, or nil when the level is below every tier (the
// skill is then free of gating).
func (s *Skill) RequirementFor(level int) *SkillRequirement {
	var match *SkillRequirement
	for i := range s.Requirements {
		if s.Requirements[i].Level <= level {
			match = &s.Requirements[i]
		}
	}
	return match
}

// SkillState is the account's progress on one owned skill.
type SkillState struct {
	Level           int
	LastUpgradeAt   time.Time
	FinishUpgradeAt time.Time // zero when no timed upgrade is pending
}
