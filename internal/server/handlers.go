package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pictionary/internal/analytics"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
)

const (
	qrSize          = 320
	defaultBoard    = 10
	maxBoard        = 100
	healthTimeout   = 2 * time.Second
	preflightMaxAge = "600"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// cors sets the allow headers when the request comes from a permitted origin.
func (s *Server) cors(w http.ResponseWriter, r *http.Request) {
	w.Header().Add("Vary", "Origin")
	origin := r.Header.Get("Origin")
	if origin == "" || !s.originAllowed(origin) {
		return
	}
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Credentials", "true")
}

func (s *Server) handlePreflight(w http.ResponseWriter, r *http.Request) {
	s.cors(w, r)
	if r.Header.Get("Access-Control-Request-Method") != "" {
		w.Header().Set("Access-Control-Allow-Methods", w.Header().Get("Allow"))
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Max-Age", preflightMaxAge)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.cors(w, r)

	code, err := s.Rooms.Reserve()
	if err != nil {
		s.Log.Error().Err(err).Msg("reserving room code")
		writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"room_id": code})
}

func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.cors(w, r)

	id := ps.ByName("room_id")
	if !s.Rooms.Exists(id) {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}

	link := strings.TrimSuffix(s.PublicURL, "/") + "/?room=" + url.QueryEscape(id)
	png, err := qrcode.Encode(link, qrcode.Medium, qrSize)
	if err != nil {
		s.Log.Error().Err(err).Str("room", id).Msg("qr generation failed")
		writeError(w, http.StatusInternalServerError, "qr generation failed")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body := map[string]any{"status": "ok", "rooms": s.Rooms.Len()}
	if s.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := s.DB.Ping(ctx); err != nil {
			body["status"] = "db_error"
			body["error"] = err.Error()
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) queries(w http.ResponseWriter) (*analytics.Queries, bool) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "history requires a database connection")
		return nil, false
	}
	return analytics.NewQueries(s.DB), true
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.cors(w, r)

	category := r.URL.Query().Get("category")
	if category == "" {
		category = "score"
	}
	if !analytics.IsLeaderboardCategory(category) {
		writeError(w, http.StatusBadRequest, "unknown leaderboard category")
		return
	}

	limit := defaultBoard
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxBoard)
	}

	q, ok := s.queries(w)
	if !ok {
		return
	}
	entries, err := q.GetLeaderboard(category, limit)
	if err != nil {
		s.Log.Error().Err(err).Msg("leaderboard query failed")
		writeError(w, http.StatusInternalServerError, "error loading leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"category": category, "entries": entries})
}

func (s *Server) handleGameRecap(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.cors(w, r)

	id, err := uuid.Parse(ps.ByName("game_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid game id")
		return
	}

	q, ok := s.queries(w)
	if !ok {
		return
	}
	recap, err := q.GetGameRecap(id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		writeError(w, http.StatusNotFound, "game not found")
	case err != nil:
		s.Log.Error().Err(err).Stringer("game", id).Msg("game recap query failed")
		writeError(w, http.StatusInternalServerError, "error loading game")
	default:
		writeJSON(w, http.StatusOK, recap)
	}
}

func (s *Server) handlePlayerStats(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	s.cors(w, r)

	q, ok := s.queries(w)
	if !ok {
		return
	}
	stats, err := q.GetPlayerLifetimeStats(ps.ByName("name"))
	if err != nil {
		s.Log.Debug().Err(err).Msg("player stats query failed")
		writeError(w, http.StatusNotFound, "player not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
