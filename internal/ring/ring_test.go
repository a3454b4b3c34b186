package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_WriteDrain_RoundTrip(t *testing.T) {
	t.Parallel()

	b := NewBuffer(16, 2)
	in := []float32{0.1, 0.2, 0.3, 0.4}
	b.Write(in)

	out := b.Drain()
	assert.Equal(t, in, out)
	assert.Equal(t, 0, b.Pending())
}

func TestBuffer_DrainEmpty(t *testing.T) {
	t.Parallel()

	b := NewBuffer(16, 2)
	assert.Nil(t, b.Drain())
}

func TestBuffer_OverrunWhenConsumerLagsBehindCapacity(t *testing.T) {
	t.Parallel()

	b := NewBuffer(4, 1)
	b.Write([]float32{1, 2, 3, 4})
	assert.Equal(t, uint64(0), b.OverrunCount())

	// Writing more before any drain overflows capacity: the batch is
	// dropped entirely (never overwriting unread data), and the overrun
	// counter tracks that it happened.
	b.Write([]float32{5, 6})
	assert.Equal(t, uint64(1), b.OverrunCount())

	out := b.Drain()
	assert.Equal(t, []float32{1, 2, 3, 4}, out)
}

func TestBuffer_StopAndActive(t *testing.T) {
	t.Parallel()

	b := NewBuffer(8, 1)
	assert.True(t, b.Active())
	b.Stop()
	assert.False(t, b.Active())
}

func TestBuffer_MaxFillLevel(t *testing.T) {
	t.Parallel()

	b := NewBuffer(8, 1)
	b.Write([]float32{1, 2, 3})
	b.Drain()
	b.Write([]float32{4, 5})

	assert.Equal(t, 3, b.MaxFillLevel())
}

func TestDetectBadChannel(t *testing.T) {
	t.Parallel()

	t.Run("left channel pinned", func(t *testing.T) {
		samples := make([]float32, 0, 400)
		for i := 0; i < 200; i++ {
			samples = append(samples, 1.0, 0.01)
		}
		ch, err := DetectBadChannel(samples, 200)
		require.NoError(t, err)
		assert.Equal(t, BadChannelLeft, ch)
	})

	t.Run("right channel pinned", func(t *testing.T) {
		samples := make([]float32, 0, 400)
		for i := 0; i < 200; i++ {
			samples = append(samples, 0.01, -1.0)
		}
		ch, err := DetectBadChannel(samples, 200)
		require.NoError(t, err)
		assert.Equal(t, BadChannelRight, ch)
	})

	t.Run("healthy stereo signal", func(t *testing.T) {
		samples := make([]float32, 0, 400)
		for i := 0; i < 200; i++ {
			samples = append(samples, 0.3, 0.3)
		}
		ch, err := DetectBadChannel(samples, 200)
		require.NoError(t, err)
		assert.Equal(t, BadChannelNone, ch)
	})

	t.Run("odd length rejected", func(t *testing.T) {
		_, err := DetectBadChannel([]float32{1, 2, 3}, 1)
		require.Error(t, err)
	})
}

func TestPreRecord_WriteDrain(t *testing.T) {
	t.Parallel()

	p := NewPreRecord(8, 4, 1)
	p.Write([]float32{1, 2, 3})

	out, seconds := p.Drain()
	assert.Equal(t, []float32{1, 2, 3}, out)
	assert.InDelta(t, 0.75, seconds, 1e-9)
}

func TestPreRecord_WrapsAndKeepsMostRecent(t *testing.T) {
	t.Parallel()

	p := NewPreRecord(4, 4, 1)
	p.Write([]float32{1, 2, 3, 4, 5, 6})

	out, _ := p.Drain()
	assert.Equal(t, []float32{3, 4, 5, 6}, out)
}

func TestPreRecord_Reset(t *testing.T) {
	t.Parallel()

	p := NewPreRecord(4, 4, 1)
	p.Write([]float32{1, 2, 3})
	p.Reset()

	out, seconds := p.Drain()
	assert.Nil(t, out)
	assert.Zero(t, seconds)
}

func TestNewPreRecordSeconds(t *testing.T) {
	t.Parallel()

	p := NewPreRecordSeconds(2, 48000, 2)
	assert.Equal(t, 192000, p.Capacity())
	assert.Equal(t, 48000, p.SampleRate())
	assert.Equal(t, 2, p.Channels())
}
