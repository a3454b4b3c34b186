package playback

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrack_Contains(t *testing.T) {
	ts := newMmapTrackSource(&pcmSource{data: []float32{0, 0, 0, 0}, sampleRate: 10, channels: 1})

	bounded := NewTrack(ts, 2.0, 3.0) // [2, 5)
	assert.False(t, bounded.contains(1.999))
	assert.True(t, bounded.contains(2.0))
	assert.True(t, bounded.contains(4.999))
	assert.False(t, bounded.contains(5.0))

	unbounded := NewTrack(ts, 2.0, 0)
	assert.False(t, unbounded.contains(1.0))
	assert.True(t, unbounded.contains(2.0))
	assert.True(t, unbounded.contains(1e9))
}

func TestTrack_VolumeAndMute(t *testing.T) {
	ts := newMmapTrackSource(&pcmSource{data: []float32{0}, sampleRate: 10, channels: 1})
	track := NewTrack(ts, 0, 0)

	assert.Equal(t, float32(1.0), track.Volume())
	track.SetVolume(0.25)
	assert.Equal(t, float32(0.25), track.Volume())

	assert.False(t, track.Muted())
	track.SetMuted(true)
	assert.True(t, track.Muted())
}
