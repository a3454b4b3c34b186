package telemetry

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	return testutil.ToFloat64(c)
}

func TestNewMetrics_AllGroupsInitialized(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.NotNil(t, m.Registry())
	assert.NotNil(t, m.Ring)
	assert.NotNil(t, m.Writer)
	assert.NotNil(t, m.Session)
	assert.NotNil(t, m.Cleaning)
}

func TestNewMetrics_IndependentRegistriesDoNotCollide(t *testing.T) {
	first, err := NewMetrics()
	require.NoError(t, err)
	second, err := NewMetrics()
	require.NoError(t, err)

	assert.NotSame(t, first.Registry(), second.Registry())

	first.Ring.RecordOverrun("mic1")
	second.Ring.RecordOverrun("mic1")
	second.Ring.RecordOverrun("mic1")
	assert.InDelta(t, 1, counterValue(t, first.Ring.overruns.WithLabelValues("mic1")), 0)
	assert.InDelta(t, 2, counterValue(t, second.Ring.overruns.WithLabelValues("mic1")), 0)
}

// TestNewMetricsConcurrency mirrors the teacher's race test for its own
// metrics aggregator: NewMetrics must be safe to call from many
// goroutines at once, each building its own independent registry.
func TestNewMetricsConcurrency(t *testing.T) {
	const numGoroutines = 50

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for range numGoroutines {
		go func() {
			defer wg.Done()
			m, err := NewMetrics()
			assert.NoError(t, err)
			if m == nil {
				assert.Fail(t, "NewMetrics returned nil")
				return
			}
			assert.NotNil(t, m.Ring)
			assert.NotNil(t, m.Writer)
			assert.NotNil(t, m.Session)
			assert.NotNil(t, m.Cleaning)
		}()
	}

	wg.Wait()
}

func TestSetGlobalMetrics_FirstCallWins(t *testing.T) {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()

	first, err := NewMetrics()
	require.NoError(t, err)
	second, err := NewMetrics()
	require.NoError(t, err)

	SetGlobalMetrics(first)
	SetGlobalMetrics(second)

	assert.Same(t, first, GlobalMetrics())
}
