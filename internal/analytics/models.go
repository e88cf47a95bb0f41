package analytics

import "time"

type PlayerGameStats struct {
	PlayerName     string  `json:"playerName"`
	Score          int     `json:"score"`
	Rank           int     `json:"rank"`
	RoundsPlayed   int     `json:"roundsPlayed"`
	RoundsScored   int     `json:"roundsScored"`
	BestSimilarity float64 `json:"bestSimilarity"`
	AvgSimilarity  float64 `json:"avgSimilarity"`
	Badges         []Badge `json:"badges"`
	TotalRounds    int     `json:"-"`
	Completed      bool    `json:"-"`
}

type PlayerLifetimeStats struct {
	PlayerName     string  `json:"playerName"`
	GamesPlayed    int     `json:"gamesPlayed"`
	TotalScore     int     `json:"totalScore"`
	BestGame       int     `json:"bestGame"`
	WinCount       int     `json:"winCount"`
	WinStreak      int     `json:"winStreak"`
	BestSimilarity float64 `json:"bestSimilarity"`
	Badges         []Badge `json:"badges"`
}

type LeaderboardEntry struct {
	PlayerName string  `json:"playerName"`
	Value      float64 `json:"value"`
	Rank       int     `json:"rank"`
}

type RoundRecap struct {
	Round   int               `json:"round"`
	Prompt  string            `json:"prompt"`
	Results []RoundPlayerLine `json:"results"`
}

type RoundPlayerLine struct {
	PlayerName     string  `json:"playerName"`
	BestSimilarity float64 `json:"bestSimilarity"`
	RoundScore     int     `json:"roundScore"`
	TotalScore     int     `json:"totalScore"`
}

type GameRecap struct {
	GameID      string            `json:"gameId"`
	RoomCode    string            `json:"roomCode"`
	TotalRounds int               `json:"totalRounds"`
	Completed   bool              `json:"completed"`
	StartedAt   *time.Time        `json:"startedAt"`
	EndedAt     *time.Time        `json:"endedAt"`
	Players     []PlayerGameStats `json:"players"`
	Rounds      []RoundRecap      `json:"rounds"`
}
