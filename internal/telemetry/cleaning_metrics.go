package telemetry

import "github.com/prometheus/client_golang/prometheus"

// CleaningMetrics tracks how long each stage of the cleaning pipeline
// (see internal/cleaning.Process) spends processing a buffer, labeled
// by stage name ("bandlimit", "notch", "spectral", "neural",
// "expander") so a slow stage shows up without needing to profile.
type CleaningMetrics struct {
	stageDuration *prometheus.HistogramVec
}

// NewCleaningMetrics registers the cleaning metric family against registry.
func NewCleaningMetrics(registry *prometheus.Registry) (*CleaningMetrics, error) {
	m := &CleaningMetrics{
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "engine",
			Subsystem: "cleaning",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each cleaning pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
	}

	if err := registry.Register(m.stageDuration); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordStageDuration records how long the named stage took, in seconds.
func (m *CleaningMetrics) RecordStageDuration(stage string, seconds float64) {
	m.stageDuration.WithLabelValues(stage).Observe(seconds)
}
