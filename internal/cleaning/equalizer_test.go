package cleaning

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilter_IsZero(t *testing.T) {
	t.Run("uninitialized", func(t *testing.T) {
		f := &Filter{}
		assert.True(t, f.IsZero())
	})

	t.Run("initialized", func(t *testing.T) {
		f, err := NewLowPass(48000, 1000, 0.707, 1)
		require.NoError(t, err)
		assert.False(t, f.IsZero())
	})
}

func TestNewFilter_Coefficients(t *testing.T) {
	f := NewFilter(LowPass, 1.0, 0.5, 0.25, 0.1, 0.2, 0.3, 2)

	assert.InDelta(t, 0.1, f.b0a0, 1e-10)
	assert.InDelta(t, 0.2, f.b1a0, 1e-10)
	assert.InDelta(t, 0.3, f.b2a0, 1e-10)
	assert.InDelta(t, 0.5, f.a1a0, 1e-10)
	assert.InDelta(t, 0.25, f.a2a0, 1e-10)

	assert.Len(t, f.in1, 2)
	assert.Len(t, f.in2, 2)
	assert.Len(t, f.out1, 2)
	assert.Len(t, f.out2, 2)
}

func TestFilter_ApplyBatch_DCSignal(t *testing.T) {
	f, err := NewLowPass(48000, 1000, 0.707, 1)
	require.NoError(t, err)

	input := make([]float64, 1000)
	for i := range input {
		input[i] = 0.5
	}
	f.ApplyBatch(input)

	for i := 900; i < 1000; i++ {
		assert.InDelta(t, 0.5, input[i], 0.01, "DC should pass through lowpass (sample %d)", i)
	}
}

func TestFilter_ApplyBatch_HighFreqAttenuation(t *testing.T) {
	sampleRate := 48000.0
	cutoff := 1000.0
	highFreq := 10000.0

	f, err := NewLowPass(sampleRate, cutoff, 0.707, 2)
	require.NoError(t, err)

	input := make([]float64, 48000)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * highFreq * float64(i) / sampleRate)
	}
	rmsBefore := rmsFloat64(input)

	f.ApplyBatch(input)
	rmsAfter := rmsFloat64(input[1000:])

	attenuation := rmsBefore / rmsAfter
	assert.Greater(t, attenuation, 10.0, "high frequency should be attenuated by >20dB")
}

func TestNewHighPass_AttenuatesDC(t *testing.T) {
	f, err := NewHighPass(48000, 1000, 0.707, 2)
	require.NoError(t, err)

	input := make([]float64, 10000)
	for i := range input {
		input[i] = 0.5
	}
	f.ApplyBatch(input)

	avgLast := 0.0
	for i := 9000; i < 10000; i++ {
		avgLast += math.Abs(input[i])
	}
	avgLast /= 1000
	assert.Less(t, avgLast, 0.01, "DC should be attenuated by highpass")
}

func TestNewLowPass_InvalidPasses(t *testing.T) {
	f, err := NewLowPass(48000, 1000, 0.707, 0)
	require.Error(t, err)
	assert.Nil(t, f)
}

func TestNewNotch_RejectsOutOfRangeFrequency(t *testing.T) {
	f, err := NewNotch(48000, 30000, 30, 1)
	require.Error(t, err)
	assert.Nil(t, f)
}

func TestNewNotch_AttenuatesTargetFrequency(t *testing.T) {
	sampleRate := 48000.0
	hum := 60.0

	f, err := NewNotch(sampleRate, hum, 30, 1)
	require.NoError(t, err)

	input := make([]float64, 48000)
	for i := range input {
		input[i] = math.Sin(2 * math.Pi * hum * float64(i) / sampleRate)
	}
	rmsBefore := rmsFloat64(input)
	f.ApplyBatch(input)
	rmsAfter := rmsFloat64(input[4000:])

	assert.Less(t, rmsAfter, rmsBefore*0.3, "notch should significantly attenuate the target hum frequency")
}

func TestFilterChain_AddFilter(t *testing.T) {
	fc := NewFilterChain()

	t.Run("add_valid_filter", func(t *testing.T) {
		f, err := NewLowPass(48000, 1000, 0.707, 1)
		require.NoError(t, err)
		require.NoError(t, fc.AddFilter(f))
		assert.Equal(t, 1, fc.Length())
	})

	t.Run("add_nil_filter", func(t *testing.T) {
		assert.Error(t, fc.AddFilter(nil))
	})

	t.Run("add_uninitialized_filter", func(t *testing.T) {
		assert.Error(t, fc.AddFilter(&Filter{}))
	})
}

func TestFilterChain_ApplyBatch(t *testing.T) {
	fc := NewFilterChain()

	lp, err := NewLowPass(48000, 2000, 0.707, 1)
	require.NoError(t, err)
	hp, err := NewHighPass(48000, 500, 0.707, 1)
	require.NoError(t, err)
	require.NoError(t, fc.AddFilter(lp))
	require.NoError(t, fc.AddFilter(hp))

	input := make([]float64, 48000)
	for i := range input {
		input[i] = rand.Float64()*2 - 1
	}
	fc.ApplyBatch(input)

	for i, v := range input {
		assert.False(t, math.IsNaN(v), "sample %d should not be NaN", i)
		assert.False(t, math.IsInf(v, 0), "sample %d should not be Inf", i)
	}
}

func rmsFloat64(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range samples {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(samples)))
}
