// Package upgrade ranks purchasable skills by profit-to-cost weight and
// plans a purchase pass under a balance reserve.
package upgrade

import (
	"sort"
	"time"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
	"github.com/paveL1boyko/MuskEmpireBot/internal/formula"
)

// cooldownGrace is how long after a timed upgrade finishes the skill stays
// unavailable; the game gates re-purchase at progress end + 60s.
const cooldownGrace = 60 * time.Second

// Evaluation is one skill's derived pricing for the current cycle. It is
// recomputed every cycle and never persisted.
type Evaluation struct {
	Skill     *domain.Skill
	NextLevel int
	Price     int64
	Profit    int64
	Weight    float64
}

// Policy tunes the purchase pass.
type Policy struct {
	// Reserve is the minimum balance that must remain after every purchase,
	// typically the current maximum pvp stake so liquidity is preserved.
	Reserve int64
	// MinWeight drops evaluations below this profit/price ratio.
	MinWeight float64
	// SkipTitles excludes skills by display title.
	SkipTitles map[string]bool
	// Mining, when enabled, restricts the pass to cheap mining-category
	// upgrades.
	Mining MiningPolicy
}

// MiningPolicy is the conservative mode: only mining-category skills below
// level and cost ceilings are bought. Energy skills get their own, usually
// higher, level ceiling.
type MiningPolicy struct {
	Enabled        bool
	MaxLevel       int
	MaxEnergyLevel int
	MaxCost        int64
	EnergySkills   []string
}

func (m MiningPolicy) allows(ev Evaluation) bool {
	if !m.Enabled {
		return true
	}
	if ev.Skill.Category != "mining" {
		return false
	}
	if m.MaxCost > 0 && ev.Price > m.MaxCost {
		return false
	}
	limit := m.MaxLevel
	for _, key := range m.EnergySkills {
		if key == ev.Skill.Key {
			limit = m.MaxEnergyLevel
			break
		}
	}
	return limit <= 0 || ev.NextLevel <= limit
}

// Evaluate prices every skill the account could buy right now and returns
// the candidates sorted by weight, most valuable first.
func Evaluate(skills []domain.Skill, profile *domain.Profile, now time.Time, pol Policy) []Evaluation {
	evals := make([]Evaluation, 0, len(skills))
	for i := range skills {
		skill := &skills[i]
		ev, ok := evaluate(skill, profile, now, pol)
		if ok {
			evals = append(evals, ev)
		}
	}
	sort.SliceStable(evals, func(i, j int) bool {
		return evals[i].Weight > evals[j].Weight
	})
	return evals
}

func evaluate(skill *domain.Skill, profile *domain.Profile, now time.Time, pol Policy) (Evaluation, bool) {
	nextLevel := 1
	state, owned := profile.Skills[skill.Key]
	if owned {
		nextLevel = state.Level + 1
	}
	if nextLevel > skill.MaxLevel {
		return Evaluation{}, false
	}
	if owned && !state.FinishUpgradeAt.IsZero() && now.Before(state.FinishUpgradeAt.Add(cooldownGrace)) {
		return Evaluation{}, false
	}

	if req := skill.RequirementFor(nextLevel); req != nil {
		if len(profile.Allies) < req.RequiredAllies {
			return Evaluation{}, false
		}
		if profile.Hero.Level < req.RequiredHeroLevel {
			return Evaluation{}, false
		}
		if !prerequisitesMet(req, profile) {
			return Evaluation{}, false
		}
	}

	price := formula.Price(skill, nextLevel)
	profit := formula.Profit(skill, nextLevel)
	if price <= 0 {
		return Evaluation{}, false
	}
	ev := Evaluation{
		Skill:     skill,
		NextLevel: nextLevel,
		Price:     int64(price),
		Profit:    int64(profit),
		Weight:    profit / price,
	}
	if ev.Weight < pol.MinWeight {
		return Evaluation{}, false
	}
	return ev, true
}

// prerequisitesMet applies the game client's inclusive-OR gate: with several
// prerequisite pairs, one pair owned at or above its minimum level is enough.
// Owning none of the listed skills fails the gate.
func prerequisitesMet(req *domain.SkillRequirement, profile *domain.Profile) bool {
	if len(req.RequiredSkills) == 0 {
		return true
	}
	for key := range req.RequiredSkills {
		if _, ok := profile.Skills[key]; !ok {
			return false
		}
	}
	for key, minLevel := range req.RequiredSkills {
		if profile.Skills[key].Level >= minLevel {
			return true
		}
	}
	return false
}

// Plan walks the ranked evaluations and returns the purchases that keep the
// simulated balance at or above the reserve. The balance is decremented
// locally after each pick so later checks see the post-purchase amount.
func Plan(evals []Evaluation, balance int64, pol Policy) []Evaluation {
	var picks []Evaluation
	for _, ev := range evals {
		if pol.SkipTitles[ev.Skill.Title] {
			continue
		}
		if !pol.Mining.allows(ev) {
			continue
		}
		if balance-ev.Price < pol.Reserve {
			continue
		}
		picks = append(picks, ev)
		balance -= ev.Price
	}
	return picks
}
