package cleaning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions_AllStagesEnabled(t *testing.T) {
	opts := DefaultOptions()
	assert.True(t, opts.HighpassEnabled)
	assert.True(t, opts.LowpassEnabled)
	assert.True(t, opts.NotchEnabled)
	assert.True(t, opts.SpectralEnabled)
	assert.True(t, opts.NeuralEnabled)
	assert.True(t, opts.ExpanderEnabled)
	assert.Equal(t, MainsAuto, opts.MainsFrequency)
}

func TestProcess_EmptyBufferIsOk(t *testing.T) {
	var samples []float32
	err := Process(samples, 44100, DefaultOptions(), nil)
	assert.NoError(t, err)
}

func TestProcess_AllStagesDisabledLeavesSamplesUnchanged(t *testing.T) {
	samples := make([]float32, 1000)
	for i := range samples {
		samples[i] = 0.5
	}
	original := make([]float32, len(samples))
	copy(original, samples)

	opts := Options{}
	err := Process(samples, 44100, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, original, samples)
}

func TestProcess_BasicSignalAllStagesExceptNeural(t *testing.T) {
	sampleRate := 44100.0
	n := int(sampleRate * 0.1) // 100ms

	samples := make([]float32, n)
	for i := range samples {
		tSec := float64(i) / sampleRate
		tone := 0.3 * math.Sin(2*math.Pi*440*tSec)
		hum := 0.1 * math.Sin(2*math.Pi*60*tSec)
		samples[i] = float32(tone + hum)
	}

	opts := DefaultOptions()
	opts.NeuralEnabled = false

	err := Process(samples, sampleRate, opts, nil)
	require.NoError(t, err)

	for i, v := range samples {
		assert.False(t, math.IsNaN(float64(v)) || math.IsInf(float64(v), 0), "sample %d should be finite", i)
	}
}

func TestProcess_AllStagesDisabledLeavesLargeBuffersUnchanged(t *testing.T) {
	totalLen := chunkSamples + 10000
	samples := make([]float32, totalLen)
	for i := range samples {
		samples[i] = 1.0
	}
	original := make([]float32, len(samples))
	copy(original, samples)

	// Options{} has no enabled stages, so even though this input is
	// large enough to chunk, the chunk-boundary crossfade must not run
	// either: the all-disabled no-op law holds regardless of input size.
	err := Process(samples, 44100, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, original, samples)
}

func TestProcess_ChunksLargeBuffersWithCrossfadeWhenAStageIsEnabled(t *testing.T) {
	totalLen := chunkSamples + 10000
	samples := make([]float32, totalLen)
	for i := range samples {
		samples[i] = 1.0
	}

	opts := Options{ExpanderEnabled: true, ExpanderThreshold: -40.0, ExpanderRatio: 2.0}
	err := Process(samples, 44100, opts, nil)
	require.NoError(t, err)
	require.Len(t, samples, totalLen)

	// Start of the crossfade region in the second chunk: faded toward 0.
	fadeStart := chunkSamples - chunkOverlap
	assert.Less(t, samples[fadeStart], float32(0.01))
}

func TestProcess_StageObserverSeesEachEnabledStage(t *testing.T) {
	prev := StageObserver
	defer func() { StageObserver = prev }()

	var seen []string
	StageObserver = func(stage string, seconds float64) {
		seen = append(seen, stage)
		assert.GreaterOrEqual(t, seconds, 0.0)
	}

	samples := make([]float32, 2000)
	for i := range samples {
		samples[i] = 0.2
	}

	opts := DefaultOptions()
	opts.NeuralEnabled = false
	require.NoError(t, Process(samples, 44100, opts, nil))

	assert.Equal(t, []string{"bandlimit", "notch", "spectral", "expander"}, seen)
}
