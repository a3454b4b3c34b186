package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionMetrics_StartedAndEnded(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := NewSessionMetrics(registry)
	require.NoError(t, err)

	m.Started()
	m.Started()
	assert.Equal(t, float64(2), testutil.ToFloat64(m.active))

	m.Ended("stopped")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.active))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ended.WithLabelValues("stopped")))

	m.Ended("crashed")
	assert.Equal(t, float64(0), testutil.ToFloat64(m.active))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.ended.WithLabelValues("crashed")))
}
