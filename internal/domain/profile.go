package domain

// Hero is the balance triple reported by nearly every game response.
type Hero struct {
	Balance      int64
	Level        int
	MoneyPerHour int64
}

// Energy describes the tap-earning state of the hero.
type Energy struct {
	MoneyPerTap       int64
	Limit             int64
	Current           int64
	RecoveryPerSecond int64
}

// Ally is a referred account that may carry an unclaimed bonus.
type Ally struct {
	ID          int64
	Name        string
	BonusToTake int64
}

// QuestState is the account's progress on one quest.
type QuestState struct {
	Key        string
	IsComplete bool
	IsRewarded bool
}

// DailyRewardCanTake marks a daily-reward ladder slot that is claimable now.
const DailyRewardCanTake = "canTake"

// Profile is the full per-account snapshot refreshed at the start of each
// cycle. It is owned exclusively by that account's session.
type Profile struct {
	UserID       int64
	Hero         Hero
	Energy       Energy
	OfflineBonus int64
	DailyRewards map[int]string
	Quests       []QuestState
	Allies       []Ally
	Skills       map[string]SkillState
}
