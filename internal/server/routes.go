package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"pictionary/internal/config"
	"pictionary/internal/db"
	"pictionary/internal/events"
	"pictionary/internal/imagegen"
	"pictionary/internal/metrics"
	"pictionary/internal/registry"
	"pictionary/internal/rooms"
	"pictionary/internal/scoring"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const shutdownTimeout = 5 * time.Second

// Run serves the game until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	log = log.With().Str("component", "server").Logger()

	pool, err := cfg.Prompts()
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	bus := events.NewBus()
	deps := rooms.Deps{
		Scorer:  scoring.NewHTTPClient(cfg.ScoringServiceURL, cfg.ScoringTimeout),
		Images:  imagegen.NewWSClient(cfg.ImageServiceURL),
		Metrics: m,
		Bus:     bus,
		Log:     log,
	}
	directory, err := rooms.NewDirectory(cfg.Game(pool), deps, cfg.ReservationTTL)
	if err != nil {
		return err
	}

	srv := &Server{
		Rooms:      directory,
		Conns:      registry.New(),
		Metrics:    m,
		Log:        log,
		Origins:    cfg.AllowedOrigins,
		PublicURL:  cfg.PublicURL,
		GuessRate:  rate.Limit(cfg.GuessRate),
		GuessBurst: cfg.GuessBurst,
	}

	// Optional database connection
	var store historyStore
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("database unavailable, running without history")
		} else {
			defer database.Close()
			if err := database.Migrate(); err != nil {
				log.Error().Err(err).Msg("migration failed")
			}
			srv.DB = database
			store = database
			log.Info().Msg("database connected and migrations applied")
		}
	} else {
		log.Info().Msg("database-url not set, running without history")
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()

	bg := startBackground(runCtx, directory, newRecorder(store, log), bus.Events)
	defer bg.stop()

	httpSrv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Routes(),
		IdleTimeout:       10 * time.Minute,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return runCtx },
	}

	errs := make(chan error, 1)
	go func() {
		log.Info().Str("addr", httpSrv.Addr).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = httpSrv.Shutdown(shutdownCtx)

	stop()
	bg.stop()
	log.Info().Msg("server stopped")

	return serveErr
}

// background owns the directory sweeper and the history recorder. The
// recorder outlives the rooms so events published while rooms close are
// still persisted.
type background struct {
	stopRooms    context.CancelFunc
	roomsDone    chan struct{}
	stopRecorder context.CancelFunc
	recorderDone chan struct{}
	once         sync.Once
}

func startBackground(ctx context.Context, directory *rooms.Directory, rec *recorder, in <-chan events.Event) *background {
	roomsCtx, stopRooms := context.WithCancel(ctx)
	recCtx, stopRecorder := context.WithCancel(context.Background())
	bg := &background{
		stopRooms:    stopRooms,
		roomsDone:    make(chan struct{}),
		stopRecorder: stopRecorder,
		recorderDone: make(chan struct{}),
	}

	go func() {
		defer close(bg.recorderDone)
		rec.run(recCtx, in)
	}()
	go func() {
		defer close(bg.roomsDone)
		directory.Run(roomsCtx)
	}()
	return bg
}

// stop closes every room, then lets the recorder drain and exit.
func (bg *background) stop() {
	bg.once.Do(func() {
		bg.stopRooms()
		<-bg.roomsDone
		bg.stopRecorder()
		<-bg.recorderDone
	})
}
