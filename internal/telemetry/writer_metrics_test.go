package telemetry

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterMetrics_RecordDrain(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewWriterMetrics(registry)
	require.NoError(t, err)

	m.RecordDrain(0.01, 4096)
	m.RecordDrain(0.02, 8192)

	assert.Equal(t, float64(12288), testutil.ToFloat64(m.bytesWritten))

	var metric dto.Metric
	require.NoError(t, m.drainLatency.Write(&metric))
	assert.Equal(t, uint64(2), metric.GetHistogram().GetSampleCount())
}

func TestWriterMetrics_RecordWriteError(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewWriterMetrics(registry)
	require.NoError(t, err)

	m.RecordWriteError("open")
	m.RecordWriteError("open")
	m.RecordWriteError("patch_header")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.writeErrors.WithLabelValues("open")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.writeErrors.WithLabelValues("patch_header")))
}
