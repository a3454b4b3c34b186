package telemetry

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clipdr/studio-engine/internal/cleaning"
)

func TestCleaningMetrics_RecordStageDuration(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewCleaningMetrics(registry)
	require.NoError(t, err)

	m.RecordStageDuration("spectral", 0.05)
	m.RecordStageDuration("spectral", 0.07)
	m.RecordStageDuration("expander", 0.01)

	var spectral dto.Metric
	require.NoError(t, m.stageDuration.WithLabelValues("spectral").(prometheus.Histogram).Write(&spectral))
	assert.Equal(t, uint64(2), spectral.GetHistogram().GetSampleCount())

	var expander dto.Metric
	require.NoError(t, m.stageDuration.WithLabelValues("expander").(prometheus.Histogram).Write(&expander))
	assert.Equal(t, uint64(1), expander.GetHistogram().GetSampleCount())
}

// TestCleaningMetrics_WiresIntoPipelineStageObserver exercises the
// cleaning package's StageObserver hook end to end: cleaning.Process
// runs with no knowledge of Prometheus, and the observer we install
// here is the same function cmd/engine installs at startup.
func TestCleaningMetrics_WiresIntoPipelineStageObserver(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewCleaningMetrics(registry)
	require.NoError(t, err)

	prevObserver := cleaning.StageObserver
	cleaning.StageObserver = m.RecordStageDuration
	defer func() { cleaning.StageObserver = prevObserver }()

	samples := make([]float32, 2000)
	for i := range samples {
		samples[i] = 0.2
	}
	opts := cleaning.DefaultOptions()
	opts.NeuralEnabled = false
	require.NoError(t, cleaning.Process(samples, 44100, opts, nil))

	var notch dto.Metric
	require.NoError(t, m.stageDuration.WithLabelValues("notch").(prometheus.Histogram).Write(&notch))
	assert.Equal(t, uint64(1), notch.GetHistogram().GetSampleCount())

	var spectral dto.Metric
	require.NoError(t, m.stageDuration.WithLabelValues("spectral").(prometheus.Histogram).Write(&spectral))
	assert.Equal(t, uint64(1), spectral.GetHistogram().GetSampleCount())
}
