package telemetry

import "github.com/prometheus/client_golang/prometheus"

// RingMetrics tracks the health of the lock-free ring buffers sitting
// between realtime audio callbacks and their drain goroutines (see
// internal/ring). Labels are keyed by source name so a multi-device
// capture session can tell which input is struggling.
type RingMetrics struct {
	overruns   *prometheus.CounterVec
	fillLevel  *prometheus.GaugeVec
	badChannel *prometheus.CounterVec
}

// NewRingMetrics registers the ring buffer metric family against
// registry and returns a handle for recording.
func NewRingMetrics(registry *prometheus.Registry) (*RingMetrics, error) {
	m := &RingMetrics{
		overruns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "engine",
			Subsystem: "ring",
			Name:      "overruns_total",
			Help:      "Number of batches a ring buffer's producer dropped because writing them would have overwritten unread samples.",
		}, []string{"source"}),
		fillLevel: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "engine",
			Subsystem: "ring",
			Name:      "fill_level_samples",
			Help:      "Most recently observed occupancy of a ring buffer, in samples.",
		}, []string{"source"}),
		badChannel: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "engine",
			Subsystem: "ring",
			Name:      "bad_channel_detections_total",
			Help:      "Number of times bad-channel detection flagged a clipped input channel.",
		}, []string{"source", "channel"}),
	}

	for _, c := range []prometheus.Collector{m.overruns, m.fillLevel, m.badChannel} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordOverrun increments the overrun counter for source.
func (m *RingMetrics) RecordOverrun(source string) {
	m.overruns.WithLabelValues(source).Inc()
}

// SetFillLevel records the current occupancy of source's ring buffer.
func (m *RingMetrics) SetFillLevel(source string, samples int) {
	m.fillLevel.WithLabelValues(source).Set(float64(samples))
}

// RecordBadChannel increments the bad-channel counter for the given
// channel label (e.g. "left", "right").
func (m *RingMetrics) RecordBadChannel(source, channel string) {
	m.badChannel.WithLabelValues(source, channel).Inc()
}
