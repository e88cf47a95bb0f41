package analytics

type BadgeID string

const (
	BadgeMindReader  BadgeID = "mind_reader"
	BadgeConsistent  BadgeID = "consistent"
	BadgeHighScorer  BadgeID = "high_scorer"
	BadgeFullHouse   BadgeID = "full_house"
	BadgeUnstoppable BadgeID = "unstoppable"
	BadgeVeteran     BadgeID = "veteran"
)

type Badge struct {
	ID          BadgeID `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

var AllBadges = map[BadgeID]Badge{
	BadgeMindReader:  {ID: BadgeMindReader, Name: "Mind Reader", Description: "95%+ similarity on a single guess", Icon: "🔮"},
	BadgeConsistent:  {ID: BadgeConsistent, Name: "Consistent", Description: "60%+ average best similarity over 3+ rounds", Icon: "📈"},
	BadgeHighScorer:  {ID: BadgeHighScorer, Name: "High Scorer", Description: "3000+ points in a single game", Icon: "💯"},
	BadgeFullHouse:   {ID: BadgeFullHouse, Name: "Full House", Description: "Scored in every round of a completed game", Icon: "🏠"},
	BadgeUnstoppable: {ID: BadgeUnstoppable, Name: "Unstoppable", Description: "3-game win streak", Icon: "🔥"},
	BadgeVeteran:     {ID: BadgeVeteran, Name: "Veteran", Description: "Played 10+ games", Icon: "🏅"},
}

// EvaluateGameBadges checks which badges a player earned in a single game.
func EvaluateGameBadges(stats PlayerGameStats) []Badge {
	var earned []Badge

	if stats.BestSimilarity >= 95 {
		earned = append(earned, AllBadges[BadgeMindReader])
	}

	if stats.RoundsPlayed >= 3 && stats.AvgSimilarity >= 60 {
		earned = append(earned, AllBadges[BadgeConsistent])
	}

	if stats.Score >= 3000 {
		earned = append(earned, AllBadges[BadgeHighScorer])
	}

	if stats.Completed && stats.TotalRounds > 0 && stats.RoundsScored >= stats.TotalRounds {
		earned = append(earned, AllBadges[BadgeFullHouse])
	}

	return earned
}

// EvaluateLifetimeBadges checks which badges a player earned across their career.
func EvaluateLifetimeBadges(stats PlayerLifetimeStats) []Badge {
	var earned []Badge

	if stats.WinStreak >= 3 {
		earned = append(earned, AllBadges[BadgeUnstoppable])
	}

	if stats.GamesPlayed >= 10 {
		earned = append(earned, AllBadges[BadgeVeteran])
	}

	return earned
}
