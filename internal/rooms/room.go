package rooms

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"pictionary/internal/events"
	"pictionary/internal/gamedata"
	"pictionary/internal/imagegen"
	"pictionary/internal/metrics"
	"pictionary/internal/players"
	"pictionary/internal/protocol"
	"pictionary/internal/scoring"
	"pictionary/internal/wshub"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	ErrRoomFull     = errors.New("room is full")
	ErrNameTaken    = errors.New("name already taken")
	ErrRoomNotFound = errors.New("room not found")
)

const reasonTimeUp = "time_up"

// Deps are the collaborators every room shares.
type Deps struct {
	Scorer  scoring.Scorer
	Images  imagegen.Generator
	Metrics *metrics.Metrics
	Bus     *events.Bus
	Log     zerolog.Logger
	Now     func() time.Time
}

// Room is one game session. All state below mu is touched only with mu
// held; outbound messages are queued on client buffers while holding it so
// every broadcast for one logical step lands before the next step begins.
type Room struct {
	Key string

	cfg     gamedata.Config
	scorer  scoring.Scorer
	images  imagegen.Generator
	metrics *metrics.Metrics
	bus     *events.Bus
	log     zerolog.Logger
	now     func() time.Time

	mu         sync.Mutex
	hub        *wshub.Hub
	roster     *players.Roster
	state      gamedata.State
	round      int
	roundSeq   uint64
	gameID     uuid.UUID
	prompt     string
	image      string
	roundStart time.Time
	tasks      taskSet
}

func newRoom(key string, cfg gamedata.Config, deps Deps) *Room {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	m := deps.Metrics
	if m == nil {
		m = metrics.Discard()
	}
	return &Room{
		Key:     key,
		cfg:     cfg,
		scorer:  deps.Scorer,
		images:  deps.Images,
		metrics: m,
		bus:     deps.Bus,
		log:     deps.Log.With().Str("component", "room").Str("room", key).Logger(),
		now:     now,
		hub:     wshub.NewHub(),
		roster:  players.NewRoster(),
		state:   gamedata.StateLobby,
	}
}

// Connect enrolls c under c.Name, sends it the full room state and
// announces the new roster to everyone.
func (r *Room) Connect(c *wshub.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roster.Len() >= r.cfg.MaxPlayers {
		return ErrRoomFull
	}
	if err := r.roster.Add(c.Name); err != nil {
		if errors.Is(err, players.ErrNameTaken) {
			return ErrNameTaken
		}
		return err
	}
	r.hub.Register(c)
	r.metrics.Players.Inc()

	if err := r.hub.Unicast(c.Name, protocol.JoinSuccess{Snapshot: r.snapshotLocked()}); err != nil {
		r.log.Warn().Err(err).Str("player", c.Name).Msg("join snapshot not delivered")
	}
	r.broadcastPlayersLocked()

	r.log.Info().
		Str("player", c.Name).
		Str("host", r.roster.Host()).
		Msg("player joined")
	return nil
}

// Disconnect removes the player and reports whether the room is now empty.
// Emptying the room stops the game loop along with its round tasks.
func (r *Room) Disconnect(name string, connID uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.roster.Remove(name) {
		return r.roster.Len() == 0
	}
	r.hub.Unregister(name, connID)
	r.metrics.Players.Dec()

	empty := r.roster.Len() == 0
	if empty {
		r.tasks.stopAll()
	}
	r.broadcastPlayersLocked()

	r.log.Info().
		Str("player", name).
		Str("host", r.roster.Host()).
		Bool("empty", empty).
		Msg("player left")
	return empty
}

// HandleMessage dispatches one inbound message from name. It returns once
// the message is fully processed, so a connection's messages are handled in
// the order they arrive.
func (r *Room) HandleMessage(ctx context.Context, name string, msg protocol.Inbound) {
	switch m := msg.(type) {
	case protocol.StartGame:
		r.StartGame(name)
	case protocol.NewGuess:
		r.ProcessGuess(ctx, name, m.Guess)
	case protocol.JoinRoom:
		r.log.Debug().Str("player", name).Msg("ignoring join_room from joined player")
	default:
		r.log.Debug().Str("player", name).Msgf("ignoring %T", msg)
	}
}

// StartGame starts a new game when requested by the host from the lobby.
func (r *Room) StartGame(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.roster.IsHost(name) || r.state != gamedata.StateLobby {
		r.log.Debug().
			Str("player", name).
			Str("state", string(r.state)).
			Msg("start_game ignored")
		return false
	}

	r.state = gamedata.StateInGame
	r.gameID = uuid.New()
	r.round = 0
	r.prompt = ""
	gameID := r.gameID
	r.tasks.startLoop(func(ctx context.Context) { r.runGameLoop(ctx, gameID) })

	r.broadcastLocked(protocol.GameStarted{})
	r.metrics.GamesStarted.Inc()
	r.publishLocked(events.GameStarted{
		GameID:      gameID,
		RoomKey:     r.Key,
		TotalRounds: r.cfg.TotalRounds,
		Players:     r.roster.Names(),
		At:          r.now(),
	})

	r.log.Info().Str("game", gameID.String()).Msg("game started")
	return true
}

func (r *Room) runGameLoop(ctx context.Context, gameID uuid.UUID) {
	completed := false
	defer func() { r.finishGame(gameID, completed) }()

	for n := 1; n <= r.cfg.TotalRounds; n++ {
		if !r.startRound(ctx, n) {
			return
		}
		if !sleep(ctx, r.cfg.RoundDuration+r.cfg.PostRoundDelay) {
			return
		}
	}
	completed = true
}

func (r *Room) finishGame(gameID uuid.UUID, completed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gameID != gameID {
		return
	}
	r.tasks.stopRound()
	r.state = gamedata.StateLobby
	r.publishLocked(events.GameEnded{
		GameID:    gameID,
		Standings: r.roster.Standings(),
		Completed: completed,
		At:        r.now(),
	})

	r.log.Info().
		Str("game", gameID.String()).
		Bool("completed", completed).
		Msg("game ended")
}

// startRound begins round n. It reports false when the loop should exit
// because it was cancelled or the room has no players left.
func (r *Room) startRound(ctx context.Context, n int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctx.Err() != nil || r.roster.Len() == 0 {
		return false
	}

	r.state = gamedata.StateInGame
	r.round = n
	r.roundSeq++
	r.prompt = r.cfg.Prompts.Pick()
	r.image = ""
	r.roster.ResetRound()
	r.roundStart = r.now()

	r.broadcastLocked(protocol.NewTurn{
		Round:       n,
		TotalRounds: r.cfg.TotalRounds,
		TimeLeft:    int(r.cfg.RoundDuration.Seconds()),
		PromptHint:  gamedata.PromptHint(r.prompt),
	})
	r.broadcastPlayersLocked()

	seq, prompt := r.roundSeq, r.prompt
	r.tasks.replaceRound(
		func(ctx context.Context) { r.runRoundTimer(ctx, seq) },
		func(ctx context.Context) { r.runImageRelay(ctx, prompt) },
	)

	r.log.Info().Int("round", n).Str("prompt", prompt).Msg("round started")
	return true
}

func (r *Room) runRoundTimer(ctx context.Context, seq uint64) {
	if !sleep(ctx, r.cfg.RoundDuration) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if ctx.Err() != nil || r.roundSeq != seq || r.state != gamedata.StateInGame {
		return
	}
	r.endRoundLocked(reasonTimeUp)
}

func (r *Room) runImageRelay(ctx context.Context, prompt string) {
	err := r.images.Stream(ctx, prompt, func(frame string) error {
		r.mu.Lock()
		defer r.mu.Unlock()

		if err := ctx.Err(); err != nil {
			return err
		}
		r.image = frame
		r.broadcastLocked(protocol.ImageUpdate{ImageBase64: protocol.DataURL(frame)})
		r.metrics.FramesRelayed.Inc()
		return nil
	})
	if err != nil && ctx.Err() == nil {
		r.metrics.RelayFailures.Inc()
		r.log.Warn().Err(err).Msg("image relay stopped")
		return
	}
	r.log.Debug().Msg("image relay finished")
}

// endRoundLocked freezes the round and announces its result.
func (r *Room) endRoundLocked(reason string) {
	r.tasks.stopRound()
	r.state = gamedata.StatePostRound

	standings := r.roster.Standings()
	scores := make([]protocol.ScoreEntry, 0, len(standings))
	for _, s := range standings {
		scores = append(scores, protocol.ScoreEntry{Name: s.Name, Score: s.Score})
	}
	r.broadcastLocked(protocol.RoundEnd{
		CorrectPrompt:         r.prompt,
		Scores:                scores,
		RoundBestSimilarities: r.roster.BestSimilarities(),
		Reason:                reason,
	})

	r.metrics.RoundsPlayed.Inc()
	r.publishLocked(events.RoundEnded{
		GameID:  r.gameID,
		Round:   r.round,
		Prompt:  r.prompt,
		Results: r.roster.RoundResults(),
		At:      r.now(),
	})

	r.log.Info().Int("round", r.round).Str("reason", reason).Msg("round ended")
}

// ProcessGuess scores a guess against the current prompt. The scoring call
// runs without the room lock; a round that ended or was replaced meanwhile
// still yields feedback but no score change.
func (r *Room) ProcessGuess(ctx context.Context, name, text string) {
	text = strings.TrimSpace(text)

	r.mu.Lock()
	if text == "" || r.state != gamedata.StateInGame || r.prompt == "" || !r.roster.Has(name) {
		r.mu.Unlock()
		r.metrics.Guesses.WithLabelValues(metrics.GuessIgnored).Inc()
		return
	}
	seq, prompt := r.roundSeq, r.prompt
	elapsed := r.now().Sub(r.roundStart)
	r.mu.Unlock()

	similarity, err := r.scorer.Similarity(ctx, prompt, text)
	if err != nil {
		r.log.Warn().Err(err).Str("player", name).Msg("scoring failed")
		similarity = gamedata.ScoringFailed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.hub.Unicast(name, protocol.GuessFeedback{Similarity: gamedata.RoundSimilarity(similarity)}); err != nil {
		r.log.Debug().Err(err).Str("player", name).Msg("feedback not delivered")
	}

	switch {
	case similarity < 0:
		r.metrics.Guesses.WithLabelValues(metrics.GuessFailed).Inc()
		return
	case r.roundSeq != seq || r.state != gamedata.StateInGame || !r.roster.Has(name):
		r.metrics.Guesses.WithLabelValues(metrics.GuessStale).Inc()
		return
	}

	if r.roster.RecordSimilarity(name, similarity) {
		r.broadcastPlayersLocked()
	}

	progress := gamedata.RoundProgress(elapsed, r.cfg.RoundDuration)
	candidate := gamedata.RoundScore(similarity, r.cfg.PointsPerGuess, progress)
	added, err := r.roster.RecordRoundScore(name, candidate)
	if err != nil {
		r.log.Error().Err(err).Str("player", name).Msg("recording round score")
		return
	}
	if added == 0 {
		r.metrics.Guesses.WithLabelValues(metrics.GuessNoGain).Inc()
		return
	}

	r.metrics.Guesses.WithLabelValues(metrics.GuessScored).Inc()
	r.broadcastPlayersLocked()
	r.log.Debug().
		Str("player", name).
		Float64("similarity", similarity).
		Int("round_score", candidate).
		Int("added", added).
		Msg("score improved")
}

// Snapshot returns the state a joining player is sent.
func (r *Room) Snapshot() protocol.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

func (r *Room) snapshotLocked() protocol.Snapshot {
	snap := protocol.Snapshot{
		RoomID:       r.Key,
		Players:      r.playerInfoLocked(),
		GameState:    string(r.state),
		CurrentRound: r.round,
		TotalRounds:  r.cfg.TotalRounds,
		PromptHint:   gamedata.PromptHint(r.prompt),
	}
	if r.state == gamedata.StateInGame {
		left := r.cfg.RoundDuration - r.now().Sub(r.roundStart)
		snap.TimeLeft = max(0, int(left.Seconds()))
	}
	if r.state != gamedata.StateLobby && r.image != "" {
		img := protocol.DataURL(r.image)
		snap.CurrentImageB64 = &img
	}
	if r.state == gamedata.StatePostRound {
		prompt := r.prompt
		snap.CorrectPrompt = &prompt
	}
	return snap
}

func (r *Room) State() gamedata.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Room) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roster.Len()
}

// Close stops every background task and waits for them to return.
func (r *Room) Close() {
	r.mu.Lock()
	pending := r.tasks.pending()
	r.tasks.stopAll()
	r.mu.Unlock()

	for _, done := range pending {
		<-done
	}
}

func (r *Room) playerInfoLocked() []protocol.PlayerInfo {
	standings := r.roster.Standings()
	out := make([]protocol.PlayerInfo, 0, len(standings))
	for _, s := range standings {
		out = append(out, protocol.PlayerInfo{
			Name:           s.Name,
			Score:          s.Score,
			IsHost:         s.IsHost,
			BestSimilarity: s.BestSimilarity,
		})
	}
	return out
}

func (r *Room) broadcastPlayersLocked() {
	r.broadcastLocked(protocol.PlayerUpdate{Players: r.playerInfoLocked()})
}

func (r *Room) broadcastLocked(msg protocol.Outbound) {
	failed, err := r.hub.Broadcast(msg)
	if err != nil {
		r.log.Error().Err(err).Msg("broadcast")
		return
	}
	if len(failed) > 0 {
		r.metrics.DeliveryFailures.Add(float64(len(failed)))
		r.log.Warn().
			Str("type", msg.Type()).
			Strs("players", failed).
			Msgf("dropped message for %d slow players", len(failed))
	}
}

// sleep waits for d and reports false if ctx ended first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// publishLocked hands ev to the history bus. A full bus drops the event, so
// the drop is counted and logged instead of blocking the room.
func (r *Room) publishLocked(ev events.Event) {
	if r.bus == nil || r.bus.Publish(ev) {
		return
	}
	r.metrics.EventsDropped.Inc()
	r.log.Warn().Msgf("history bus full, dropped %T", ev)
}
