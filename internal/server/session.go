package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"pictionary/internal/metrics"
	"pictionary/internal/protocol"
	"pictionary/internal/registry"
	"pictionary/internal/rooms"
	"pictionary/internal/wshub"

	"github.com/coder/websocket"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

const (
	joinTimeout = 10 * time.Second
	readLimit   = 4 << 10

	reasonNotJoin       = "first message was not join_room"
	reasonMissingFields = "missing room_id or player_name"
)

// handleGame runs one player's game session. The first frame must be a
// join_room request; after that, inbound messages are dispatched to the room
// in arrival order until the socket closes.
func (s *Server) handleGame(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.originPatterns(),
	})
	if err != nil {
		s.Log.Debug().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.CloseNow()
	conn.SetReadLimit(readLimit)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	client := wshub.NewClient(conn)
	room, ok := s.join(ctx, client)
	if !ok {
		return
	}

	s.Conns.Add(client.ID, registry.Identity{RoomKey: room.Key, Name: client.Name})
	log := s.Log.With().Str("room", room.Key).Str("player", client.Name).Logger()
	log.Info().Msg("player joined")

	go client.WritePump(ctx)

	defer s.disconnect(client)

	limiter := rate.NewLimiter(s.GuessRate, s.GuessBurst)
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return
		}
		msg, err := protocol.DecodeInbound(data)
		if err != nil {
			log.Debug().Err(err).Msg("dropping malformed message")
			continue
		}
		if !limiter.Allow() {
			if _, guess := msg.(protocol.NewGuess); guess {
				s.Metrics.Guesses.WithLabelValues(metrics.GuessThrottle).Inc()
			}
			log.Debug().Msgf("rate limited %T", msg)
			continue
		}
		room.HandleMessage(ctx, client.Name, msg)
	}
}

// join reads the handshake frame and admits the client to its room. On
// failure the socket has already been closed with the matching reason.
func (s *Server) join(ctx context.Context, client *wshub.Client) (*rooms.Room, bool) {
	conn := client.Conn

	readCtx, cancel := context.WithTimeout(ctx, joinTimeout)
	defer cancel()
	_, data, err := conn.Read(readCtx)
	if err != nil {
		return nil, false
	}

	msg, err := protocol.DecodeInbound(data)
	req, isJoin := msg.(protocol.JoinRoom)
	if err != nil || !isJoin {
		conn.Close(websocket.StatusPolicyViolation, reasonNotJoin)
		return nil, false
	}

	key := strings.TrimSpace(req.RoomID)
	name := strings.TrimSpace(req.PlayerName)
	if key == "" || name == "" {
		conn.Close(websocket.StatusPolicyViolation, reasonMissingFields)
		return nil, false
	}

	client.Name = name
	room, err := s.Rooms.Join(key, client)
	switch {
	case errors.Is(err, rooms.ErrRoomFull):
		s.reject(ctx, conn, protocol.ErrorRoomFull)
		return nil, false
	case errors.Is(err, rooms.ErrNameTaken):
		s.reject(ctx, conn, protocol.ErrorNameTaken)
		return nil, false
	case err != nil:
		s.Log.Error().Err(err).Str("room", key).Msg("join failed")
		conn.Close(websocket.StatusInternalError, "join failed")
		return nil, false
	}
	return room, true
}

func (s *Server) reject(ctx context.Context, conn *websocket.Conn, reason string) {
	data, err := protocol.Encode(protocol.Error{Message: reason})
	if err == nil {
		_ = conn.Write(ctx, websocket.MessageText, data)
	}
	conn.Close(websocket.StatusPolicyViolation, reason)
}

// disconnect releases whatever the registry holds for client's connection.
func (s *Server) disconnect(client *wshub.Client) {
	id, ok := s.Conns.Remove(client.ID)
	if !ok {
		return
	}
	log := s.Log.With().Str("room", id.RoomKey).Str("player", id.Name).Logger()
	if err := s.Rooms.Leave(id.RoomKey, id.Name, client); err != nil {
		log.Warn().Err(err).Msg("leaving room")
		return
	}
	log.Info().Msg("player left")
}
