package server

import (
	"net/http"
	"net/url"

	"pictionary/internal/db"
	"pictionary/internal/metrics"
	"pictionary/internal/registry"
	"pictionary/internal/rooms"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type Server struct {
	Rooms      *rooms.Directory
	Conns      *registry.Registry
	DB         *db.DB // nil if no database configured
	Metrics    *metrics.Metrics
	Log        zerolog.Logger
	Origins    []string
	PublicURL  string
	GuessRate  rate.Limit
	GuessBurst int
}

// Routes builds the HTTP handler for every endpoint.
func (s *Server) Routes() http.Handler {
	mux := httprouter.New()

	mux.POST("/api/rooms", s.handleCreateRoom)
	mux.GET("/api/rooms/:room_id/qr", s.handleRoomQR)
	mux.GET("/api/leaderboard", s.handleLeaderboard)
	mux.GET("/api/games/:game_id", s.handleGameRecap)
	mux.GET("/api/players/:name", s.handlePlayerStats)
	mux.GET("/ws/game", s.handleGame)
	mux.GET("/health", s.handleHealth)
	mux.Handler(http.MethodGet, "/metrics", s.Metrics.Handler())

	mux.GlobalOPTIONS = http.HandlerFunc(s.handlePreflight)
	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		s.Log.Error().Str("path", r.URL.Path).Interface("panic", v).Msg("handler panicked")
		writeError(w, http.StatusInternalServerError, "internal error")
	}

	return mux
}

// originPatterns converts the allowed origins into the host patterns the
// websocket handshake checks against.
func (s *Server) originPatterns() []string {
	patterns := make([]string, 0, len(s.Origins))
	for _, o := range s.Origins {
		if o == "*" {
			patterns = append(patterns, o)
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		patterns = append(patterns, u.Host)
	}
	return patterns
}

func (s *Server) originAllowed(origin string) bool {
	for _, o := range s.Origins {
		if o == "*" || o == origin {
			return true
		}
	}
	return false
}
