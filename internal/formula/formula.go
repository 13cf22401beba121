// Package formula evaluates the cost and profit curves of leveled upgrades.
// All functions are pure and deterministic; every result passes through the
// game's tiered rounding so computed numbers match what the game displays.
package formula

import (
	"math"

	"github.com/paveL1boyko/MuskEmpireBot/internal/domain"
)

// Price returns the smart-rounded cost of buying level for the skill.
func Price(s *domain.Skill, level int) float64 {
	return Evaluate(s.PriceKind, level, s.PriceBase, s.PriceCoeff, s)
}

// Profit returns the smart-rounded profit delta of level for the skill.
func Profit(s *domain.Skill, level int) float64 {
	return Evaluate(s.ProfitKind, level, s.ProfitBase, s.ProfitCoeff, s)
}

// Evaluate computes one curve value for level >= 1. A level of 0 or below
// yields 0 before rounding. The skill is only consulted by the payback kind,
// which needs the full cost and profit coefficient set; the other kinds may
// pass nil.
func Evaluate(kind domain.FormulaKind, level int, base, coeff float64, s *domain.Skill) float64 {
	if level <= 0 {
		return 0
	}
	l := float64(level)
	var result float64
	switch kind {
	case domain.FormulaLinear:
		result = base * l
	case domain.FormulaQuadratic:
		result = base * l * l
	case domain.FormulaCubic:
		result = base * l * l * l
	case domain.FormulaExponential:
		result = base * math.Pow(coeff/10, l)
	case domain.FormulaLogarithmic:
		result = base * math.Log2(l+1)
	case domain.FormulaCompound:
		result = base * math.Pow(1+coeff/100, l-1)
	case domain.FormulaPayback:
		result = payback(level, s)
	default:
		result = base
	}
	return SmartRound(result)
}

// payback accumulates price(n)/profit(n) over levels 1..level, rounding each
// step. The accumulator is local to one call; the curve depends on every
// lower level, so it cannot be computed level-independently.
func payback(level int, s *domain.Skill) float64 {
	acc := make([]float64, level+1)
	for n := 1; n <= level; n++ {
		price := Evaluate(s.PriceKind, n, s.PriceBase, s.PriceCoeff, s)
		profit := s.ProfitBase + s.ProfitCoeff*float64(n-1)
		acc[n] = SmartRound(acc[n-1] + price/profit)
	}
	return acc[level]
}

// SmartRound rounds half away from zero to the nearest multiple of a step
// that grows with the value's magnitude, mirroring the game's displayed
// numbers.
func SmartRound(value float64) float64 {
	switch {
	case value < 50:
		return math.Round(value)
	case value < 100:
		return roundTo(value, 5)
	case value < 500:
		return roundTo(value, 25)
	case value < 1_000:
		return roundTo(value, 50)
	case value < 5_000:
		return roundTo(value, 100)
	case value < 10_000:
		return roundTo(value, 200)
	case value < 100_000:
		return roundTo(value, 500)
	case value < 500_000:
		return roundTo(value, 1_000)
	case value < 1_000_000:
		return roundTo(value, 5_000)
	case value < 50_000_000:
		return roundTo(value, 10_000)
	case value < 100_000_000:
		return roundTo(value, 50_000)
	default:
		return roundTo(value, 100_000)
	}
}

func roundTo(value, step float64) float64 {
	return math.Round(value/step) * step
}
