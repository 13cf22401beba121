package domain

// FundStake is an open fund position reported by the game.
type FundStake struct {
	FundKey     string
	Money       int64
	MoneyProfit int64
}

// Hints is the day's external helper feed: quiz/rebus answers and the list
// of funds worth backing. All fields may be empty.
type Hints struct {
	Quiz  string   `json:"quiz"`
	Rebus string   `json:"rebus"`
	Funds []string `json:"funds"`
}

// Empty reports whether the feed carried nothing for the day.
func (h Hints) Empty() bool {
	return h.Quiz == "" && h.Rebus == "" && len(h.Funds) == 0
}
