package players

// Standing is a player's public row on the roster.
type Standing struct {
	Name           string
	Score          int
	IsHost         bool
	BestSimilarity float64
}

// RoundResult is what a player achieved in a single round.
type RoundResult struct {
	Name           string
	BestSimilarity float64
	RoundScore     int
	TotalScore     int
}
