package db

import (
	"cmp"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
)

type GameRecord struct {
	ID          uuid.UUID
	RoomCode    string
	TotalRounds int
	StartedAt   time.Time
	EndedAt     *time.Time
	Completed   bool
}

// RoundResult is one player's line for a finished round.
type RoundResult struct {
	PlayerName     string
	BestSimilarity float64
	RoundScore     int
	TotalScore     int
}

type FinalScore struct {
	PlayerName string
	Score      int
}

func (d *DB) CreateGame(id uuid.UUID, roomCode string, totalRounds int, startedAt time.Time) error {
	_, err := d.conn.Exec(`
		INSERT INTO games (id, room_code, total_rounds, started_at)
		VALUES ($1, $2, $3, $4)
	`, id, roomCode, totalRounds, startedAt)
	if err != nil {
		return fmt.Errorf("creating game: %w", err)
	}
	return nil
}

func (d *DB) RecordRound(gameID uuid.UUID, round int, prompt string, endedAt time.Time, results []RoundResult) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning round tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO rounds (game_id, round, prompt, ended_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id, round) DO UPDATE SET prompt = $3, ended_at = $4
	`, gameID, round, prompt, endedAt)
	if err != nil {
		return fmt.Errorf("recording round: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO round_results (game_id, round, player_name, best_similarity, round_score, total_score)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, round, player_name) DO UPDATE
		SET best_similarity = $4, round_score = $5, total_score = $6
	`)
	if err != nil {
		return fmt.Errorf("preparing round results: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.Exec(gameID, round, r.PlayerName, r.BestSimilarity, r.RoundScore, r.TotalScore); err != nil {
			return fmt.Errorf("recording result for %s: %w", r.PlayerName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing round: %w", err)
	}
	return nil
}

// EndGame closes the game and stores final scores, ranked highest first.
// Tied scores share a rank.
func (d *DB) EndGame(gameID uuid.UUID, completed bool, endedAt time.Time, scores []FinalScore) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return fmt.Errorf("beginning end game tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		UPDATE games SET ended_at = $2, completed = $3 WHERE id = $1
	`, gameID, endedAt, completed)
	if err != nil {
		return fmt.Errorf("ending game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("ending game %s: %w", gameID, sql.ErrNoRows)
	}

	for _, s := range Rank(scores) {
		_, err := tx.Exec(`
			INSERT INTO game_players (game_id, player_name, final_score, rank)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (game_id, player_name) DO UPDATE SET final_score = $3, rank = $4
		`, gameID, s.PlayerName, s.Score, s.Rank)
		if err != nil {
			return fmt.Errorf("adding game player: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing end game: %w", err)
	}
	return nil
}

func (d *DB) GetGame(gameID uuid.UUID) (*GameRecord, error) {
	g := &GameRecord{}
	err := d.conn.QueryRow(`
		SELECT id, room_code, total_rounds, started_at, ended_at, completed
		FROM games WHERE id = $1
	`, gameID).Scan(&g.ID, &g.RoomCode, &g.TotalRounds, &g.StartedAt, &g.EndedAt, &g.Completed)
	if err != nil {
		return nil, fmt.Errorf("getting game: %w", err)
	}
	return g, nil
}

type RankedScore struct {
	FinalScore
	Rank int
}

// Rank orders scores highest first using competition ranking (1, 2, 2, 4).
func Rank(scores []FinalScore) []RankedScore {
	sorted := slices.Clone(scores)
	slices.SortStableFunc(sorted, func(a, b FinalScore) int {
		return cmp.Compare(b.Score, a.Score)
	})
	out := make([]RankedScore, len(sorted))
	for i, s := range sorted {
		rank := i + 1
		if i > 0 && s.Score == sorted[i-1].Score {
			rank = out[i-1].Rank
		}
		out[i] = RankedScore{FinalScore: s, Rank: rank}
	}
	return out
}
