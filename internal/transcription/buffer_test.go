package transcription

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_AppendRequiresEnabled(t *testing.T) {
	b := NewBuffer(44100, 1)
	b.Append([]float32{1, 2, 3})
	assert.Equal(t, 0, b.Count(), "append before SetEnabled(true) should be dropped")

	b.SetEnabled(true)
	b.Append([]float32{1, 2, 3})
	assert.Equal(t, 3, b.Count())
}

func TestBuffer_SliceClampsToBounds(t *testing.T) {
	b := NewBuffer(44100, 1)
	b.SetEnabled(true)
	b.Append([]float32{0, 1, 2, 3, 4})

	got := b.Slice(2, 100)
	assert.Equal(t, []float32{2, 3, 4}, got)

	assert.Nil(t, b.Slice(10, 20))
}

func TestBuffer_PruneHalvesOversizedBuffer(t *testing.T) {
	b := NewBuffer(100, 1) // tiny format so the 10-minute cap is cheap to exceed in a test
	b.SetEnabled(true)

	samples := make([]float32, 100*60*10+10)
	for i := range samples {
		samples[i] = float32(i)
	}
	b.Append(samples)
	require.Equal(t, len(samples), b.Count())

	dropped := b.Prune()
	assert.Greater(t, dropped, 0)
	assert.Equal(t, len(samples)-dropped, b.Count())

	// Front of the buffer should now start where the drop left off.
	remaining := b.Slice(0, 1)
	assert.Equal(t, float32(dropped), remaining[0])
}

func TestBuffer_PruneIsNoopBelowCap(t *testing.T) {
	b := NewBuffer(44100, 1)
	b.SetEnabled(true)
	b.Append([]float32{1, 2, 3})
	assert.Equal(t, 0, b.Prune())
}

func TestBuffer_ResetClears(t *testing.T) {
	b := NewBuffer(44100, 1)
	b.SetEnabled(true)
	b.Append([]float32{1, 2, 3})
	b.Reset()
	assert.Equal(t, 0, b.Count())
}
