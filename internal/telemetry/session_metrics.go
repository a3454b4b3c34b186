package telemetry

import "github.com/prometheus/client_golang/prometheus"

// SessionMetrics tracks how many capture/playback sessions are active
// at once and the outcome of sessions as they end.
type SessionMetrics struct {
	active prometheus.Gauge
	ended  *prometheus.CounterVec
}

// NewSessionMetrics registers the session metric family against registry.
func NewSessionMetrics(registry *prometheus.Registry) (*SessionMetrics, error) {
	m := &SessionMetrics{
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "engine",
			Subsystem: "session",
			Name:      "active",
			Help:      "Number of capture or playback sessions currently running.",
		}),
		ended: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "engine",
			Subsystem: "session",
			Name:      "ended_total",
			Help:      "Number of sessions that have ended, by outcome.",
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{m.active, m.ended} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Started marks a new session as active.
func (m *SessionMetrics) Started() {
	m.active.Inc()
}

// Ended marks a session as no longer active and records its outcome
// (e.g. "stopped", "crashed", "recovered").
func (m *SessionMetrics) Ended(outcome string) {
	m.active.Dec()
	m.ended.WithLabelValues(outcome).Inc()
}
