package gamedata

import (
	"errors"
	"time"

	"pictionary/internal/prompts"
)

type State string

const (
	StateLobby     = State("LOBBY")
	StateInGame    = State("IN_GAME")
	StatePostRound = State("POST_ROUND")
)

// Config is the immutable rule set shared by every room of a process.
type Config struct {
	Prompts        *prompts.Pool
	RoundDuration  time.Duration
	PostRoundDelay time.Duration
	TotalRounds    int
	MaxPlayers     int
	PointsPerGuess int
}

func DefaultConfig() Config {
	return Config{
		Prompts:        prompts.Default(),
		RoundDuration:  30 * time.Second,
		PostRoundDelay: 10 * time.Second,
		TotalRounds:    10,
		MaxPlayers:     12,
		PointsPerGuess: 1000,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Prompts == nil || c.Prompts.Len() == 0:
		return errors.New("game config needs at least one prompt")
	case c.RoundDuration <= 0:
		return errors.New("round duration must be positive")
	case c.PostRoundDelay < 0:
		return errors.New("post-round delay must not be negative")
	case c.TotalRounds < 1:
		return errors.New("total rounds must be at least 1")
	case c.MaxPlayers < 1:
		return errors.New("max players must be at least 1")
	case c.PointsPerGuess < 1:
		return errors.New("points per guess must be at least 1")
	}
	return nil
}
