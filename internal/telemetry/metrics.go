package telemetry

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics aggregates every metrics group the engine exposes under a
// single Prometheus registry, mirroring how a production service wires
// one registry per process and hands named sub-groups to each
// subsystem rather than scattering ad hoc prometheus.MustRegister
// calls across the codebase.
type Metrics struct {
	registry *prometheus.Registry

	Ring     *RingMetrics
	Writer   *WriterMetrics
	Session  *SessionMetrics
	Cleaning *CleaningMetrics
}

var (
	globalMetrics   *Metrics
	globalMetricsMu sync.Mutex
)

// NewMetrics builds a fresh registry and every metrics group registered
// against it. Safe to call concurrently; each call returns an
// independent registry, so tests and short-lived tools can construct
// their own Metrics without colliding with the process-wide default.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	ring, err := NewRingMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: ring metrics: %w", err)
	}
	writer, err := NewWriterMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: writer metrics: %w", err)
	}
	session, err := NewSessionMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: session metrics: %w", err)
	}
	cleaning, err := NewCleaningMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("telemetry: cleaning metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Ring:     ring,
		Writer:   writer,
		Session:  session,
		Cleaning: cleaning,
	}, nil
}

// Registry returns the underlying Prometheus registry, e.g. to mount
// it behind an HTTP /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobalMetrics installs m as the process-wide default, but only the
// first time it's called: later calls are silently ignored so that an
// engine started from multiple entry points (CLI command, test harness)
// can't clobber metrics a previous call already wired up.
func SetGlobalMetrics(m *Metrics) {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	if globalMetrics == nil {
		globalMetrics = m
	}
}

// GlobalMetrics returns the process-wide default Metrics, or nil if
// SetGlobalMetrics has never been called.
func GlobalMetrics() *Metrics {
	globalMetricsMu.Lock()
	defer globalMetricsMu.Unlock()
	return globalMetrics
}
