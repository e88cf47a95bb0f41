package analytics

import (
	"fmt"

	"pictionary/internal/db"

	"github.com/google/uuid"
)

type Queries struct {
	DB *db.DB
}

func NewQueries(database *db.DB) *Queries {
	return &Queries{DB: database}
}

// leaderboardQueries maps a category to a query yielding (player_name, value)
// ordered best first.
var leaderboardQueries = map[string]string{
	"score": `
		SELECT player_name, COALESCE(SUM(final_score), 0)::float8 AS value
		FROM game_players
		GROUP BY player_name
		ORDER BY value DESC, player_name
		LIMIT $1`,
	"wins": `
		SELECT player_name, (COUNT(*) FILTER (WHERE rank = 1))::float8 AS value
		FROM game_players
		GROUP BY player_name
		ORDER BY value DESC, player_name
		LIMIT $1`,
	"similarity": `
		SELECT player_name, COALESCE(MAX(best_similarity), 0) AS value
		FROM round_results
		GROUP BY player_name
		ORDER BY value DESC, player_name
		LIMIT $1`,
	"games": `
		SELECT player_name, COUNT(*)::float8 AS value
		FROM game_players
		GROUP BY player_name
		ORDER BY value DESC, player_name
		LIMIT $1`,
}

func IsLeaderboardCategory(category string) bool {
	_, ok := leaderboardQueries[category]
	return ok
}

func (q *Queries) GetLeaderboard(category string, limit int) ([]LeaderboardEntry, error) {
	query, ok := leaderboardQueries[category]
	if !ok {
		return nil, fmt.Errorf("unknown leaderboard category: %s", category)
	}

	rows, err := q.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	rank := 1
	for rows.Next() {
		var e LeaderboardEntry
		if err := rows.Scan(&e.PlayerName, &e.Value); err != nil {
			return nil, err
		}
		e.Rank = rank
		rank++
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (q *Queries) GetPlayerLifetimeStats(name string) (*PlayerLifetimeStats, error) {
	stats := &PlayerLifetimeStats{PlayerName: name}

	err := q.DB.QueryRow(`
		SELECT
			COUNT(*) as games_played,
			COALESCE(SUM(final_score), 0) as total_score,
			COALESCE(MAX(final_score), 0) as best_game,
			COUNT(*) FILTER (WHERE rank = 1) as win_count
		FROM game_players
		WHERE player_name = $1
	`, name).Scan(&stats.GamesPlayed, &stats.TotalScore, &stats.BestGame, &stats.WinCount)
	if err != nil {
		return nil, fmt.Errorf("getting lifetime stats: %w", err)
	}
	if stats.GamesPlayed == 0 {
		return nil, fmt.Errorf("player %q has no recorded games", name)
	}

	err = q.DB.QueryRow(`
		SELECT COALESCE(MAX(best_similarity), 0) FROM round_results WHERE player_name = $1
	`, name).Scan(&stats.BestSimilarity)
	if err != nil {
		return nil, fmt.Errorf("getting best similarity: %w", err)
	}

	rows, err := q.DB.Query(`
		SELECT gp.rank
		FROM game_players gp
		JOIN games g ON g.id = gp.game_id
		WHERE gp.player_name = $1 AND g.ended_at IS NOT NULL
		ORDER BY g.ended_at DESC
	`, name)
	if err != nil {
		return nil, fmt.Errorf("getting win streak: %w", err)
	}
	defer rows.Close()

	ranks := []int{}
	for rows.Next() {
		var rank int
		if err := rows.Scan(&rank); err != nil {
			return nil, err
		}
		ranks = append(ranks, rank)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	stats.WinStreak = WinStreak(ranks)
	stats.Badges = EvaluateLifetimeBadges(*stats)

	return stats, nil
}

// WinStreak counts consecutive first places from the most recent game.
func WinStreak(ranksNewestFirst []int) int {
	streak := 0
	for _, r := range ranksNewestFirst {
		if r != 1 {
			break
		}
		streak++
	}
	return streak
}

func (q *Queries) GetGameRecap(gameID uuid.UUID) (*GameRecap, error) {
	game, err := q.DB.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	recap := &GameRecap{
		GameID:      game.ID.String(),
		RoomCode:    game.RoomCode,
		TotalRounds: game.TotalRounds,
		Completed:   game.Completed,
		StartedAt:   &game.StartedAt,
		EndedAt:     game.EndedAt,
		Players:     []PlayerGameStats{},
		Rounds:      []RoundRecap{},
	}

	rows, err := q.DB.Query(`
		SELECT r.round, r.prompt, rr.player_name, rr.best_similarity, rr.round_score, rr.total_score
		FROM rounds r
		JOIN round_results rr ON rr.game_id = r.game_id AND rr.round = r.round
		WHERE r.game_id = $1
		ORDER BY r.round, rr.total_score DESC, rr.player_name
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting rounds: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			round  int
			prompt string
			line   RoundPlayerLine
		)
		if err := rows.Scan(&round, &prompt, &line.PlayerName, &line.BestSimilarity, &line.RoundScore, &line.TotalScore); err != nil {
			return nil, err
		}
		if n := len(recap.Rounds); n == 0 || recap.Rounds[n-1].Round != round {
			recap.Rounds = append(recap.Rounds, RoundRecap{Round: round, Prompt: prompt})
		}
		last := &recap.Rounds[len(recap.Rounds)-1]
		last.Results = append(last.Results, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := q.DB.Query(`
		SELECT player_name, final_score, rank FROM game_players WHERE game_id = $1 ORDER BY rank, player_name
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("getting game players: %w", err)
	}
	defer prows.Close()

	for prows.Next() {
		var p PlayerGameStats
		if err := prows.Scan(&p.PlayerName, &p.Score, &p.Rank); err != nil {
			return nil, err
		}
		recap.Players = append(recap.Players, p)
	}
	if err := prows.Err(); err != nil {
		return nil, err
	}

	for i := range recap.Players {
		p := &recap.Players[i]
		p.TotalRounds = recap.TotalRounds
		p.Completed = recap.Completed
		SummarizeRounds(p, recap.Rounds)
		p.Badges = EvaluateGameBadges(*p)
	}

	return recap, nil
}

// SummarizeRounds fills the per-round aggregates of p from the recap rounds.
func SummarizeRounds(p *PlayerGameStats, rounds []RoundRecap) {
	var total float64
	for _, r := range rounds {
		for _, line := range r.Results {
			if line.PlayerName != p.PlayerName {
				continue
			}
			p.RoundsPlayed++
			if line.RoundScore > 0 {
				p.RoundsScored++
			}
			if line.BestSimilarity > p.BestSimilarity {
				p.BestSimilarity = line.BestSimilarity
			}
			total += line.BestSimilarity
		}
	}
	if p.RoundsPlayed > 0 {
		p.AvgSimilarity = total / float64(p.RoundsPlayed)
	}
}
