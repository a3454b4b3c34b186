package transcription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMono_MixesChannelsDown(t *testing.T) {
	// 2-channel interleaved: (0,2), (4,6) -> mono averages 1, 5
	interleaved := []float32{0, 2, 4, 6}
	mono := toMono(interleaved, 2)
	assert.Equal(t, []float32{1, 5}, mono)
}

func TestToMono_PassthroughForMono(t *testing.T) {
	samples := []float32{1, 2, 3}
	mono := toMono(samples, 1)
	assert.Equal(t, samples, mono)
}

func TestToMono16k_SkipsResampleAtTargetRate(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3, 0.4}
	out, err := toMono16k(samples, targetSampleRate, 1)
	require.NoError(t, err)
	assert.Equal(t, samples, out)
}
