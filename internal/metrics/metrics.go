package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pictionary"

// Guess outcomes.
const (
	GuessScored   = "scored"
	GuessNoGain   = "no_gain"
	GuessFailed   = "scoring_failed"
	GuessStale    = "stale"
	GuessIgnored  = "ignored"
	GuessThrottle = "throttled"
)

type Metrics struct {
	Rooms            prometheus.Gauge
	Players          prometheus.Gauge
	GamesStarted     prometheus.Counter
	RoundsPlayed     prometheus.Counter
	Guesses          *prometheus.CounterVec
	FramesRelayed    prometheus.Counter
	RelayFailures    prometheus.Counter
	DeliveryFailures prometheus.Counter
	EventsDropped    prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the collectors with reg. If reg is also a Gatherer, Handler
// serves it; otherwise Handler serves the default gatherer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Rooms with at least one connected player.",
		}),
		Players: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players",
			Help:      "Connected players across all rooms.",
		}),
		GamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games started by a host.",
		}),
		RoundsPlayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_played_total",
			Help:      "Rounds that ran until their timer expired.",
		}),
		Guesses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_total",
			Help:      "Guesses received, by outcome.",
		}, []string{"outcome"}),
		FramesRelayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_frames_relayed_total",
			Help:      "Image frames broadcast to rooms.",
		}),
		RelayFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_relay_failures_total",
			Help:      "Image relay sessions that ended with an error.",
		}),
		DeliveryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Outbound messages dropped because a client could not keep up.",
		}),
		EventsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "history_events_dropped_total",
			Help:      "Game events not recorded because the history bus was full.",
		}),
		gatherer: prometheus.DefaultGatherer,
	}

	reg.MustRegister(
		m.Rooms,
		m.Players,
		m.GamesStarted,
		m.RoundsPlayed,
		m.Guesses,
		m.FramesRelayed,
		m.RelayFailures,
		m.DeliveryFailures,
		m.EventsDropped,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Discard returns metrics registered on a private registry.
func Discard() *Metrics {
	return New(prometheus.NewRegistry())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
