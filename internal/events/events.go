package events

import (
	"time"

	"pictionary/internal/players"

	"github.com/google/uuid"
)

// Event is a game lifecycle notification published by rooms.
type Event interface {
	event()
}

type GameStarted struct {
	GameID      uuid.UUID
	RoomKey     string
	TotalRounds int
	Players     []string
	At          time.Time
}

type RoundEnded struct {
	GameID  uuid.UUID
	Round   int
	Prompt  string
	Results []players.RoundResult
	At      time.Time
}

type GameEnded struct {
	GameID    uuid.UUID
	Standings []players.Standing
	Completed bool
	At        time.Time
}

func (GameStarted) event() {}
func (RoundEnded) event()  {}
func (GameEnded) event()   {}

const bufferSize = 64

type Bus struct {
	Events chan Event
}

func NewBus() *Bus {
	return &Bus{
		Events: make(chan Event, bufferSize),
	}
}

// Publish queues ev without blocking and reports whether it was accepted.
// A nil Bus accepts nothing.
func (b *Bus) Publish(ev Event) bool {
	if b == nil {
		return false
	}
	select {
	case b.Events <- ev:
		return true
	default:
		return false
	}
}
