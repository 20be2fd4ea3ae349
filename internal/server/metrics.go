package server

import (
	"github.com/janpfeifer/GoMemory/internal/game"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the Prometheus collectors of one server, kept in their own
// registry so several servers can run in the same process (tests).
type Metrics struct {
	Registry *prometheus.Registry

	tables          prometheus.Gauge
	gamesStarted    *prometheus.CounterVec
	evaluations     *prometheus.CounterVec
	phasesCompleted *prometheus.CounterVec
	phaseSeconds    prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	factory := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		tables: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gomemory_tables",
			Help: "Number of connected players.",
		}),
		gamesStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomemory_games_started_total",
			Help: "Games started, by difficulty.",
		}, []string{"difficulty"}),
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomemory_evaluations_total",
			Help: "Evaluated pairs, by result (match or mismatch).",
		}, []string{"result"}),
		phasesCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gomemory_phases_completed_total",
			Help: "Completed phases, by difficulty.",
		}, []string{"difficulty"}),
		phaseSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gomemory_phase_duration_seconds",
			Help:    "Time taken to complete a phase, as counted by the game clock.",
			Buckets: prometheus.ExponentialBuckets(5, 2, 8),
		}),
	}
}

// observe records a game event.
func (m *Metrics) observe(ev game.Event, difficulty game.Difficulty) {
	switch ev.Kind {
	case game.EventMatchFound:
		m.evaluations.WithLabelValues("match").Inc()
	case game.EventMatchFailed:
		m.evaluations.WithLabelValues("mismatch").Inc()
	case game.EventPhaseComplete:
		m.phasesCompleted.WithLabelValues(string(difficulty)).Inc()
		if payload, ok := ev.Payload.(game.PhaseCompletePayload); ok {
			m.phaseSeconds.Observe(float64(payload.ElapsedSeconds))
		}
	}
}
