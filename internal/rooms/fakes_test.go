package rooms

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pictionary/internal/events"
	"pictionary/internal/gamedata"
	"pictionary/internal/metrics"
	"pictionary/internal/prompts"
	"pictionary/internal/wshub"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeScorer struct {
	mu     sync.Mutex
	scores map[string]float64
	err    error
	gate   chan struct{}
	calls  int
}

func (f *fakeScorer) Similarity(ctx context.Context, prompt, guess string) (float64, error) {
	f.mu.Lock()
	f.calls++
	gate, err, score := f.gate, f.err, f.scores[guess]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return score, err
}

func (f *fakeScorer) set(guess string, score float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scores == nil {
		f.scores = make(map[string]float64)
	}
	f.scores[guess] = score
}

func (f *fakeScorer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeGenerator replays frames, then either returns err or, with hold set,
// blocks until cancelled.
type fakeGenerator struct {
	frames []string
	err    error
	hold   bool

	started atomic.Int32
	active  atomic.Int32
}

func (f *fakeGenerator) Stream(ctx context.Context, prompt string, onFrame func(string) error) error {
	f.started.Add(1)
	f.active.Add(1)
	defer f.active.Add(-1)

	for _, frame := range f.frames {
		if err := onFrame(frame); err != nil {
			return err
		}
	}
	if f.hold {
		<-ctx.Done()
		return ctx.Err()
	}
	return f.err
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type harness struct {
	cfg     gamedata.Config
	scorer  *fakeScorer
	images  *fakeGenerator
	clock   *fakeClock
	bus     *events.Bus
	metrics *metrics.Metrics
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	pool, err := prompts.New([]string{"a red fox in the snow", "two cats playing chess"})
	require.NoError(t, err)
	return &harness{
		cfg: gamedata.Config{
			Prompts:        pool,
			RoundDuration:  10 * time.Second,
			PostRoundDelay: time.Hour,
			TotalRounds:    3,
			MaxPlayers:     4,
			PointsPerGuess: 1000,
		},
		scorer:  &fakeScorer{},
		images:  &fakeGenerator{},
		bus:     events.NewBus(),
		metrics: metrics.New(prometheus.NewRegistry()),
	}
}

func (h *harness) deps() Deps {
	d := Deps{
		Scorer:  h.scorer,
		Images:  h.images,
		Metrics: h.metrics,
		Bus:     h.bus,
		Log:     zerolog.Nop(),
	}
	if h.clock != nil {
		d.Now = h.clock.Now
	}
	return d
}

func (h *harness) room(t *testing.T) *Room {
	t.Helper()
	r := newRoom("abc123", h.cfg, h.deps())
	t.Cleanup(r.Close)
	return r
}

func (h *harness) directory(t *testing.T) *Directory {
	t.Helper()
	d, err := NewDirectory(h.cfg, h.deps(), 10*time.Minute)
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

func newClient(name string) *wshub.Client {
	return &wshub.Client{ID: uuid.New(), Name: name, Send: make(chan []byte, 256)}
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Message string          `json:"message"`
}

func (f frame) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(f.Payload, v))
}

// next returns the next queued message of type typ, skipping others.
func next(t *testing.T, c *wshub.Client, typ string) frame {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case data, ok := <-c.Send:
			require.True(t, ok, "send channel closed while waiting for %s", typ)
			var f frame
			require.NoError(t, json.Unmarshal(data, &f))
			if f.Type == typ {
				return f
			}
		case <-deadline:
			t.Fatalf("%s never received %s", c.Name, typ)
		}
	}
}

// drain returns every message currently queued for c.
func drain(t *testing.T, c *wshub.Client) []frame {
	t.Helper()
	var out []frame
	for {
		select {
		case data, ok := <-c.Send:
			if !ok {
				return out
			}
			var f frame
			require.NoError(t, json.Unmarshal(data, &f))
			out = append(out, f)
		default:
			return out
		}
	}
}

func types(frames []frame) []string {
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Type)
	}
	return out
}

func score(r *Room, name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roster.Score(name)
}

// collect reads bus events until pred holds or the deadline passes.
func collect(t *testing.T, bus *events.Bus, pred func([]events.Event) bool) []events.Event {
	t.Helper()
	var got []events.Event
	deadline := time.After(5 * time.Second)
	for !pred(got) {
		select {
		case ev := <-bus.Events:
			got = append(got, ev)
		case <-deadline:
			t.Fatalf("events never satisfied condition, got %d: %#v", len(got), got)
		}
	}
	return got
}
