// Package telemetry provides the engine's Prometheus-backed metrics:
// ring buffer overrun/fill-level gauges, writer drain latency, active
// session counts, and cleaning-pipeline stage durations. Components
// that only need a thin, swappable recording surface (for example so
// unit tests can assert on call counts without standing up a real
// registry) should depend on the Recorder interface instead of a
// concrete metrics type.
package telemetry

// Recorder is a narrow interface for recording generic outcome and
// timing data, letting a component depend on "something that records
// metrics" instead of a concrete Prometheus-backed type. Tests can
// substitute NoOpRecorder or a hand-rolled double without pulling in a
// prometheus.Registry.
type Recorder interface {
	// RecordOperation records that an operation finished with the
	// given status (e.g. "success", "error").
	RecordOperation(operation, status string)
	// RecordDuration records how long an operation took, in seconds.
	RecordDuration(operation string, seconds float64)
	// RecordError records an error of the given type for an operation.
	RecordError(operation, errorType string)
}

// NoOpRecorder discards everything. Useful as a default Recorder when
// telemetry wiring hasn't been set up yet (e.g. in short-lived CLI
// subcommands that never start the full engine).
type NoOpRecorder struct{}

var _ Recorder = NoOpRecorder{}

func (NoOpRecorder) RecordOperation(operation, status string)         {}
func (NoOpRecorder) RecordDuration(operation string, seconds float64) {}
func (NoOpRecorder) RecordError(operation, errorType string)          {}
