package telemetry

import "github.com/prometheus/client_golang/prometheus"

// WriterMetrics tracks the disk-writer goroutine that drains a ring
// buffer to a WAV file: how long each drain pass takes, and how much
// was written.
type WriterMetrics struct {
	drainLatency prometheus.Histogram
	bytesWritten prometheus.Counter
	writeErrors  *prometheus.CounterVec
}

// NewWriterMetrics registers the writer metric family against registry.
func NewWriterMetrics(registry *prometheus.Registry) (*WriterMetrics, error) {
	m := &WriterMetrics{
		drainLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "engine",
			Subsystem: "writer",
			Name:      "drain_latency_seconds",
			Help:      "Time taken to drain a ring buffer batch and write it to disk.",
			Buckets:   prometheus.DefBuckets,
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "engine",
			Subsystem: "writer",
			Name:      "bytes_written_total",
			Help:      "Total bytes of sample data written to disk.",
		}),
		writeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "engine",
			Subsystem: "writer",
			Name:      "write_errors_total",
			Help:      "Number of errors encountered while writing recordings to disk.",
		}, []string{"stage"}),
	}

	for _, c := range []prometheus.Collector{m.drainLatency, m.bytesWritten, m.writeErrors} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordDrain records a single drain-and-write pass's latency and size.
func (m *WriterMetrics) RecordDrain(seconds float64, bytes int) {
	m.drainLatency.Observe(seconds)
	m.bytesWritten.Add(float64(bytes))
}

// RecordWriteError increments the error counter for the given stage
// (e.g. "open", "write_samples", "patch_header").
func (m *WriterMetrics) RecordWriteError(stage string) {
	m.writeErrors.WithLabelValues(stage).Inc()
}
