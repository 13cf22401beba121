package domain

// League is a PvP bracket from the game database.
type League struct {
	Key           string
	RequiredLevel int
	MaxContract   int64
}

// Fight is one resolved PvP negotiation.
type Fight struct {
	League          string
	Contract        int64
	Profit          int64
	Player1         int64
	Player2         int64
	Player1Strategy string
	Player2Strategy string
	Winner          int64
}

// StrategyRandom selects a concrete strategy at random per match.
const StrategyRandom = "random"
