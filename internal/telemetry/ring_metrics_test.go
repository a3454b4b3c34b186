package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingMetrics_RecordOverrun(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewRingMetrics(registry)
	require.NoError(t, err)

	m.RecordOverrun("mic1")
	m.RecordOverrun("mic1")
	m.RecordOverrun("mic2")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.overruns.WithLabelValues("mic1")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.overruns.WithLabelValues("mic2")))
}

func TestRingMetrics_SetFillLevel(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewRingMetrics(registry)
	require.NoError(t, err)

	m.SetFillLevel("mic1", 128)
	assert.Equal(t, float64(128), testutil.ToFloat64(m.fillLevel.WithLabelValues("mic1")))

	m.SetFillLevel("mic1", 64)
	assert.Equal(t, float64(64), testutil.ToFloat64(m.fillLevel.WithLabelValues("mic1")), "gauge should reflect the latest value, not accumulate")
}

func TestRingMetrics_RecordBadChannel(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewRingMetrics(registry)
	require.NoError(t, err)

	m.RecordBadChannel("mic1", "left")
	m.RecordBadChannel("mic1", "left")
	m.RecordBadChannel("mic1", "right")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.badChannel.WithLabelValues("mic1", "left")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.badChannel.WithLabelValues("mic1", "right")))
}
