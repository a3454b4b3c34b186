package cleaning

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sineAt(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func TestDetectMainsFrequency_Prefers60HzByDefault(t *testing.T) {
	sampleRate := 44100.0
	samples := sineAt(60, sampleRate, humDetectWindow*2)
	assert.Equal(t, 60.0, DetectMainsFrequency(samples, sampleRate))
}

func TestDetectMainsFrequency_Picks50HzWhenDominant(t *testing.T) {
	sampleRate := 44100.0
	samples := sineAt(50, sampleRate, humDetectWindow*2)
	assert.Equal(t, 50.0, DetectMainsFrequency(samples, sampleRate))
}

func TestDetectMainsFrequency_ShortSampleDefaultsTo60Hz(t *testing.T) {
	samples := make([]float64, humDetectWindow-1)
	assert.Equal(t, 60.0, DetectMainsFrequency(samples, 44100))
}

func TestNewHumRemover_SkipsHarmonicsAboveNyquist(t *testing.T) {
	// sampleRate=200 -> Nyquist=100; only the 60Hz fundamental fits, not
	// 120/180/240.
	chain, err := NewHumRemover(200, 60, 4)
	require.NoError(t, err)
	assert.Equal(t, 1, chain.Length())
}

func TestNewHumRemover_AttenuatesFundamental(t *testing.T) {
	sampleRate := 48000.0
	chain, err := NewHumRemover(sampleRate, 60, 4)
	require.NoError(t, err)

	samples := sineAt(60, sampleRate, 48000)
	rmsBefore := rmsFloat64(samples)
	chain.ApplyBatch(samples)
	rmsAfter := rmsFloat64(samples[4000:])

	assert.Less(t, rmsAfter, rmsBefore*0.3, "hum remover should significantly attenuate the fundamental")
}
