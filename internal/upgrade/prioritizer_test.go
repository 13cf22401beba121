package upgrade

import (
	"testing"
	"time"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
)

func linearSkill(key string, priceBase, profitBase float64) domain.Skill {
	return domain.Skill{
		Key:        key,
		Title:      key,
		Category:   "business",
		PriceKind:  domain.FormulaLinear,
		PriceBase:  priceBase,
		ProfitKind: domain.FormulaLinear,
		ProfitBase: profitBase,
		MaxLevel:   10,
	}
}

func emptyProfile() *domain.Profile {
	return &domain.Profile{
		Hero:   domain.Hero{Level: 5, Balance: 2_000},
		Skills: map[string]domain.SkillState{},
	}
}

func TestEvaluateGatesIneligible(t *testing.T) {
	now := time.Now()

	// Upgrade A requires 2 allies, B is ungated. With 0 allies only B is
	// purchasable regardless of A's higher raw profit.
	a := linearSkill("a", 1_000, 50)
	a.Requirements = []domain.SkillRequirement{{Level: 1, RequiredAllies: 2}}
	b := linearSkill("b", 500, 40)

	evals := Evaluate([]domain.Skill{a, b}, emptyProfile(), now, Policy{})
	if len(evals) != 1 || evals[0].Skill.Key != "b" {
		t.Fatalf("expected only b eligible, got %+v", evals)
	}
	if evals[0].Price != 500 || evals[0].Profit != 40 {
		t.Errorf("b priced %d/%d, want 500/40", evals[0].Price, evals[0].Profit)
	}

	picks := Plan(evals, 2_000, Policy{})
	if len(picks) != 1 || picks[0].Skill.Key != "b" {
		t.Fatalf("expected b purchased, got %+v", picks)
	}
}

func TestEvaluateSkipsMaxLevel(t *testing.T) {
	s := linearSkill("s", 100, 10)
	s.MaxLevel = 3
	p := emptyProfile()
	p.Skills["s"] = domain.SkillState{Level: 3}

	if evals := Evaluate([]domain.Skill{s}, p, time.Now(), Policy{}); len(evals) != 0 {
		t.Fatalf("expected skill at max level to be skipped, got %+v", evals)
	}
}

func TestEvaluateCooldown(t *testing.T) {
	now := time.Now()
	s := linearSkill("s", 100, 10)

	cases := []struct {
		name     string
		finish   time.Time
		eligible bool
	}{
		{"upgrade still running", now.Add(10 * time.Minute), false},
		{"just finished, inside grace", now.Add(-30 * time.Second), false},
		{"grace elapsed", now.Add(-2 * time.Minute), true},
		{"no timer", time.Time{}, true},
	}
	for _, tc := range cases {
		p := emptyProfile()
		p.Skills["s"] = domain.SkillState{Level: 2, FinishUpgradeAt: tc.finish}
		evals := Evaluate([]domain.Skill{s}, p, now, Policy{})
		if got := len(evals) == 1; got != tc.eligible {
			t.Errorf("%s: eligible = %v, want %v", tc.name, got, tc.eligible)
		}
	}
}

func TestPrerequisiteOrGate(t *testing.T) {
	s := linearSkill("s", 100, 10)
	s.Requirements = []domain.SkillRequirement{{
		Level:          1,
		RequiredSkills: map[string]int{"alpha": 5, "beta": 8},
	}}

	cases := []struct {
		name     string
		skills   map[string]domain.SkillState
		eligible bool
	}{
		{"one prerequisite at level", map[string]domain.SkillState{
			"alpha": {Level: 5}, "beta": {Level: 1},
		}, true},
		{"other prerequisite at level", map[string]domain.SkillState{
			"alpha": {Level: 1}, "beta": {Level: 8},
		}, true},
		{"both below level", map[string]domain.SkillState{
			"alpha": {Level: 4}, "beta": {Level: 7},
		}, false},
		{"prerequisite not owned", map[string]domain.SkillState{
			"alpha": {Level: 9},
		}, false},
	}
	for _, tc := range cases {
		p := emptyProfile()
		p.Skills = tc.skills
		evals := Evaluate([]domain.Skill{s}, p, time.Now(), Policy{})
		if got := len(evals) == 1; got != tc.eligible {
			t.Errorf("%s: eligible = %v, want %v", tc.name, got, tc.eligible)
		}
	}
}

func TestRequirementTierSelection(t *testing.T) {
	// The tier with the greatest threshold <= nextLevel applies.
	s := linearSkill("s", 100, 10)
	s.Requirements = []domain.SkillRequirement{
		{Level: 1, RequiredHeroLevel: 1},
		{Level: 5, RequiredHeroLevel: 20},
	}
	p := emptyProfile() // hero level 5
	p.Skills["s"] = domain.SkillState{Level: 4}

	if evals := Evaluate([]domain.Skill{s}, p, time.Now(), Policy{}); len(evals) != 0 {
		t.Fatalf("expected tier-5 hero gate to block, got %+v", evals)
	}

	p.Skills["s"] = domain.SkillState{Level: 2}
	if evals := Evaluate([]domain.Skill{s}, p, time.Now(), Policy{}); len(evals) != 1 {
		t.Fatalf("expected tier-1 gate to pass, got %+v", evals)
	}
}

func TestEvaluateSortsByWeight(t *testing.T) {
	cheap := linearSkill("cheap", 100, 30)   // weight 0.3
	strong := linearSkill("strong", 200, 80) // weight 0.4
	weak := linearSkill("weak", 500, 50)     // weight 0.1

	evals := Evaluate([]domain.Skill{cheap, strong, weak}, emptyProfile(), time.Now(), Policy{})
	if len(evals) != 3 {
		t.Fatalf("expected 3 evaluations, got %d", len(evals))
	}
	want := []string{"strong", "cheap", "weak"}
	for i, key := range want {
		if evals[i].Skill.Key != key {
			t.Errorf("rank %d = %s, want %s", i, evals[i].Skill.Key, key)
		}
	}
}

func TestPlanKeepsReserve(t *testing.T) {
	evals := Evaluate([]domain.Skill{
		linearSkill("a", 400, 100),
		linearSkill("b", 400, 90),
		linearSkill("c", 400, 80),
	}, emptyProfile(), time.Now(), Policy{})

	pol := Policy{Reserve: 500}
	picks := Plan(evals, 1_400, pol)

	if len(picks) != 2 {
		t.Fatalf("expected 2 purchases, got %d", len(picks))
	}
	balance := int64(1_400)
	for _, pick := range picks {
		balance -= pick.Price
		if balance < pol.Reserve {
			t.Fatalf("balance %d fell below reserve %d", balance, pol.Reserve)
		}
	}
}

func TestPlanSkipsExcludedTitles(t *testing.T) {
	evals := Evaluate([]domain.Skill{
		linearSkill("keep", 100, 30),
		linearSkill("skip", 100, 90),
	}, emptyProfile(), time.Now(), Policy{})

	picks := Plan(evals, 10_000, Policy{SkipTitles: map[string]bool{"skip": true}})
	if len(picks) != 1 || picks[0].Skill.Key != "keep" {
		t.Fatalf("expected only keep purchased, got %+v", picks)
	}
}

func TestPlanMiningPolicy(t *testing.T) {
	mining := linearSkill("energy_capacity", 100, 30)
	mining.Category = "mining"
	expensive := linearSkill("drill", 100_000, 90_000)
	expensive.Category = "mining"
	office := linearSkill("desks", 100, 90)

	evals := Evaluate([]domain.Skill{mining, expensive, office}, emptyProfile(), time.Now(), Policy{})

	pol := Policy{Mining: MiningPolicy{
		Enabled:        true,
		MaxLevel:       30,
		MaxEnergyLevel: 60,
		MaxCost:        5_000,
		EnergySkills:   []string{"energy_capacity", "energy_recovery"},
	}}
	picks := Plan(evals, 10_000_000, pol)
	if len(picks) != 1 || picks[0].Skill.Key != "energy_capacity" {
		t.Fatalf("expected only the cheap mining skill, got %+v", picks)
	}
}

func TestMinWeightFloor(t *testing.T) {
	evals := Evaluate([]domain.Skill{
		linearSkill("good", 100, 50),
		linearSkill("bad", 1_000, 10),
	}, emptyProfile(), time.Now(), Policy{MinWeight: 0.1})
	if len(evals) != 1 || evals[0].Skill.Key != "good" {
		t.Fatalf("expected weight floor to drop bad, got %+v", evals)
	}
}
