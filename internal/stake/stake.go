// Package stake sizes wager-style fund investments from the account's level
// and passive income rate. The numbers reproduce the game client's own bet
// ladder: a fixed number of steps between a minimum and maximum stake.
package stake

import "math"

// Steps is the number of wager steps the game divides the bet range into.
const Steps = 7

// Min returns the minimum stake for the given hero level and money per hour.
// It never returns less than 100.
func Min(level int, moneyPerHour int64) int64 {
	multiplier := riskMultiplier(level)
	v := smartZeroRound(float64(moneyPerHour) * multiplier / (Steps * 3))
	if v == 0 {
		return 100
	}
	return v
}

// Max returns the maximum stake: Steps minimum steps.
func Max(level int, moneyPerHour int64) int64 {
	return Min(level, moneyPerHour) * Steps
}

// Affordable reduces Max by whole minimum steps until it fits the balance,
// but never below one minimum step. When balance < Min the result still
// equals Min; the caller must check affordability before spending.
func Affordable(balance int64, level int, moneyPerHour int64) int64 {
	max := Max(level, moneyPerHour)
	if max < balance {
		return max
	}
	min := Min(level, moneyPerHour)
	for max > balance && max-min >= min {
		max -= min
	}
	if max > min {
		return max
	}
	return min
}

// riskMultiplier shrinks as the hero levels up: low-level accounts wager a
// larger share of their income.
func riskMultiplier(level int) float64 {
	switch {
	case level < 3:
		return 5
	case level < 6:
		return 4
	case level < 10:
		return 3
	default:
		return 2
	}
}

// smartZeroRound is the bet ladder's own tiered rounding, distinct from the
// formula engine's table. The final tier's 1,000 step is inherited from the
// game client as-is.
func smartZeroRound(v float64) int64 {
	switch {
	case v < 100:
		return roundTo(v, 50)
	case v < 1_000:
		return roundTo(v, 100)
	case v < 10_000:
		return roundTo(v, 1_000)
	case v < 100_000:
		return roundTo(v, 10_000)
	case v < 1_000_000:
		return roundTo(v, 100_000)
	case v < 10_000_000:
		return roundTo(v, 1_000_000)
	case v < 100_000_000:
		return roundTo(v, 10_000_000)
	default:
		return roundTo(v, 1_000)
	}
}

func roundTo(v, step float64) int64 {
	return int64(math.Round(v/step) * step)
}
