package rooms

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pictionary/internal/gamedata"
	"pictionary/internal/metrics"
	"pictionary/internal/wshub"

	"github.com/rs/zerolog"
)

const sweepInterval = time.Minute

// Directory owns every live room. A room exists only while it has players;
// codes handed out by Reserve are tracked separately until first joined.
type Directory struct {
	mu           sync.Mutex
	rooms        map[string]*Room
	reservations map[string]time.Time
	cfg          gamedata.Config
	deps         Deps
	log          zerolog.Logger
	ttl          time.Duration
}

// NewDirectory validates cfg and returns an empty directory sharing deps
// with every room it creates.
func NewDirectory(cfg gamedata.Config, deps Deps, reservationTTL time.Duration) (*Directory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.Discard()
	}
	return &Directory{
		rooms:        make(map[string]*Room),
		reservations: make(map[string]time.Time),
		cfg:          cfg,
		deps:         deps,
		log:          deps.Log.With().Str("component", "directory").Logger(),
		ttl:          reservationTTL,
	}, nil
}

// Reserve hands out a fresh room code not used by a live room or another
// reservation.
func (d *Directory) Reserve() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for range maxCodeAttempts {
		code, err := GenerateCode()
		if err != nil {
			return "", fmt.Errorf("generating room code: %w", err)
		}
		if _, exists := d.rooms[code]; exists {
			continue
		}
		if _, reserved := d.reservations[code]; reserved {
			continue
		}
		d.reservations[code] = d.deps.Now()
		d.log.Info().Str("room", code).Msg("room code reserved")
		return code, nil
	}
	return "", fmt.Errorf("failed to generate unique room code after %d attempts", maxCodeAttempts)
}

// Join connects c to the room for key, creating the room on first
// reference. A rejected join leaves no room behind.
func (d *Directory) Join(key string, c *wshub.Client) (*Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[key]
	if !ok {
		room = newRoom(key, d.cfg, d.deps)
	}
	if err := room.Connect(c); err != nil {
		return nil, err
	}
	if !ok {
		d.rooms[key] = room
		delete(d.reservations, key)
		d.deps.Metrics.Rooms.Inc()
		d.log.Info().Str("room", key).Msg("room created")
	}
	return room, nil
}

// Leave disconnects a player and drops the room once it is empty.
func (d *Directory) Leave(key, name string, c *wshub.Client) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	room, ok := d.rooms[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRoomNotFound, key)
	}
	if room.Disconnect(name, c.ID) {
		delete(d.rooms, key)
		d.deps.Metrics.Rooms.Dec()
		d.log.Info().Str("room", key).Msg("room closed")
	}
	return nil
}

func (d *Directory) Get(key string) *Room {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rooms[key]
}

// Exists reports whether key is a live room or an outstanding reservation.
func (d *Directory) Exists(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.rooms[key]; ok {
		return true
	}
	_, ok := d.reservations[key]
	return ok
}

func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}

// Run sweeps expired reservations until ctx ends, then closes every room.
func (d *Directory) Run(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.Close()
			return
		case <-ticker.C:
			d.sweepReservations()
		}
	}
}

func (d *Directory) sweepReservations() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.deps.Now()
	swept := 0
	for code, at := range d.reservations {
		if now.Sub(at) > d.ttl {
			delete(d.reservations, code)
			swept++
		}
	}
	if swept > 0 {
		d.log.Debug().Int("count", swept).Msg("expired room reservations")
	}
	return swept
}

// Close stops the background tasks of every room.
func (d *Directory) Close() {
	d.mu.Lock()
	list := make([]*Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		list = append(list, r)
	}
	d.mu.Unlock()

	for _, r := range list {
		r.Close()
	}
}
