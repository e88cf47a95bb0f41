package server

import (
	"context"
	"fmt"
	"time"

	"pictionary/internal/db"
	"pictionary/internal/events"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// historyStore is the part of the database the recorder writes to.
type historyStore interface {
	CreateGame(id uuid.UUID, roomCode string, totalRounds int, startedAt time.Time) error
	RecordRound(gameID uuid.UUID, round int, prompt string, endedAt time.Time, results []db.RoundResult) error
	EndGame(gameID uuid.UUID, completed bool, endedAt time.Time, scores []db.FinalScore) error
}

// recorder persists room lifecycle events. With no store it only logs them.
type recorder struct {
	store historyStore
	log   zerolog.Logger
}

func newRecorder(store historyStore, log zerolog.Logger) *recorder {
	return &recorder{store: store, log: log.With().Str("component", "recorder").Logger()}
}

// run consumes events until ctx ends, then drains what is already queued.
func (rec *recorder) run(ctx context.Context, in <-chan events.Event) {
	for {
		select {
		case ev := <-in:
			rec.handle(ev)
		case <-ctx.Done():
			for {
				select {
				case ev := <-in:
					rec.handle(ev)
				default:
					return
				}
			}
		}
	}
}

func (rec *recorder) handle(ev events.Event) {
	if err := rec.record(ev); err != nil {
		rec.log.Error().Err(err).Msgf("recording %T", ev)
	}
}

func (rec *recorder) record(ev events.Event) error {
	switch e := ev.(type) {
	case events.GameStarted:
		rec.log.Info().Stringer("game", e.GameID).Str("room", e.RoomKey).Int("players", len(e.Players)).Msg("game started")
		if rec.store == nil {
			return nil
		}
		if err := rec.store.CreateGame(e.GameID, e.RoomKey, e.TotalRounds, e.At); err != nil {
			return err
		}

	case events.RoundEnded:
		rec.log.Debug().Stringer("game", e.GameID).Int("round", e.Round).Msg("round ended")
		if rec.store == nil {
			return nil
		}
		results := make([]db.RoundResult, 0, len(e.Results))
		for _, r := range e.Results {
			results = append(results, db.RoundResult{
				PlayerName:     r.Name,
				BestSimilarity: r.BestSimilarity,
				RoundScore:     r.RoundScore,
				TotalScore:     r.TotalScore,
			})
		}
		if err := rec.store.RecordRound(e.GameID, e.Round, e.Prompt, e.At, results); err != nil {
			return err
		}

	case events.GameEnded:
		rec.log.Info().Stringer("game", e.GameID).Bool("completed", e.Completed).Msg("game ended")
		if rec.store == nil {
			return nil
		}
		scores := make([]db.FinalScore, 0, len(e.Standings))
		for _, s := range e.Standings {
			scores = append(scores, db.FinalScore{PlayerName: s.Name, Score: s.Score})
		}
		if err := rec.store.EndGame(e.GameID, e.Completed, e.At, scores); err != nil {
			return err
		}

	default:
		return fmt.Errorf("unknown event %T", ev)
	}
	return nil
}
