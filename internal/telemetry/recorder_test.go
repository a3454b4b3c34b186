package telemetry

import "testing"

func TestNoOpRecorder_SatisfiesRecorder(t *testing.T) {
	var r Recorder = NoOpRecorder{}
	r.RecordOperation("op", "success")
	r.RecordDuration("op", 0.5)
	r.RecordError("op", "timeout")
}
