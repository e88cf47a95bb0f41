package server

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"pictionary/internal/db"
	"pictionary/internal/events"
	"pictionary/internal/gamedata"
	"pictionary/internal/players"
	"pictionary/internal/prompts"
	"pictionary/internal/rooms"
	"pictionary/internal/wshub"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu      sync.Mutex
	created []uuid.UUID
	rounds  map[int][]db.RoundResult
	ended   []db.FinalScore
	ends    int
	done    bool
	err     error
}

func (f *fakeStore) CreateGame(id uuid.UUID, _ string, _ int, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, id)
	return f.err
}

func (f *fakeStore) RecordRound(_ uuid.UUID, round int, _ string, _ time.Time, results []db.RoundResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.rounds == nil {
		f.rounds = make(map[int][]db.RoundResult)
	}
	f.rounds[round] = results
	return f.err
}

func (f *fakeStore) EndGame(_ uuid.UUID, completed bool, _ time.Time, scores []db.FinalScore) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = scores
	f.ends++
	f.done = completed
	return f.err
}

func TestRecorder_Record(t *testing.T) {
	store := &fakeStore{}
	rec := newRecorder(store, zerolog.Nop())
	id := uuid.New()

	require.NoError(t, rec.record(events.GameStarted{GameID: id, RoomKey: "abc123", TotalRounds: 2}))
	require.NoError(t, rec.record(events.RoundEnded{
		GameID: id,
		Round:  1,
		Prompt: "a red fox",
		Results: []players.RoundResult{
			{Name: "alice", BestSimilarity: 90, RoundScore: 900, TotalScore: 900},
		},
	}))
	require.NoError(t, rec.record(events.GameEnded{
		GameID:    id,
		Completed: true,
		Standings: []players.Standing{{Name: "alice", Score: 900, IsHost: true}},
	}))

	assert.Equal(t, []uuid.UUID{id}, store.created)
	assert.Equal(t, []db.RoundResult{
		{PlayerName: "alice", BestSimilarity: 90, RoundScore: 900, TotalScore: 900},
	}, store.rounds[1])
	assert.Equal(t, []db.FinalScore{{PlayerName: "alice", Score: 900}}, store.ended)
	assert.True(t, store.done)
}

func TestRecorder_StoreError(t *testing.T) {
	boom := errors.New("boom")
	rec := newRecorder(&fakeStore{err: boom}, zerolog.Nop())

	err := rec.record(events.GameStarted{GameID: uuid.New()})
	assert.ErrorIs(t, err, boom)
}

func TestRecorder_NoStore(t *testing.T) {
	rec := newRecorder(nil, zerolog.Nop())

	assert.NoError(t, rec.record(events.GameStarted{GameID: uuid.New()}))
	assert.NoError(t, rec.record(events.RoundEnded{GameID: uuid.New(), Round: 1}))
	assert.NoError(t, rec.record(events.GameEnded{GameID: uuid.New()}))
}

func TestRecorder_RunDrainsOnCancel(t *testing.T) {
	store := &fakeStore{}
	rec := newRecorder(store, zerolog.Nop())
	bus := events.NewBus()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for range 3 {
		require.True(t, bus.Publish(events.GameStarted{GameID: uuid.New()}))
	}

	done := make(chan struct{})
	go func() {
		rec.run(ctx, bus.Events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("run did not return after cancel")
	}
	assert.Len(t, store.created, 3)
}

func TestBackground_StopPersistsGamesEndedByShutdown(t *testing.T) {
	pool, err := prompts.New([]string{"a red fox in the snow"})
	require.NoError(t, err)
	bus := events.NewBus()
	dir, err := rooms.NewDirectory(gamedata.Config{
		Prompts:        pool,
		RoundDuration:  time.Hour,
		PostRoundDelay: time.Hour,
		TotalRounds:    3,
		MaxPlayers:     4,
		PointsPerGuess: 1000,
	}, rooms.Deps{
		Scorer: stubScorer{score: 10},
		Images: idleGenerator{},
		Bus:    bus,
		Log:    zerolog.Nop(),
	}, time.Minute)
	require.NoError(t, err)

	c := &wshub.Client{ID: uuid.New(), Name: "alice", Send: make(chan []byte, wshub.SendBuffer)}
	room, err := dir.Join("abc123", c)
	require.NoError(t, err)
	require.True(t, room.StartGame("alice"))

	store := &fakeStore{}
	ctx, cancel := context.WithCancel(context.Background())
	bg := startBackground(ctx, dir, newRecorder(store, zerolog.Nop()), bus.Events)

	cancel()
	done := make(chan struct{})
	go func() {
		bg.stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("background did not stop")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.created, 1)
	assert.Equal(t, 1, store.ends, "game ended by shutdown must reach the store")
	assert.False(t, store.done)
	assert.Equal(t, []db.FinalScore{{PlayerName: "alice", Score: 0}}, store.ended)
}
