// Package playback implements mixed multi-track timeline playback: three
// PCM source strategies (mmap'd WAV, decoded cache, streaming decode),
// a lock-free output callback, and seek/pre-roll coordination via a
// seqlock on each streaming track's ring buffer.
package playback

import (
	"math"
	"sync/atomic"

	"github.com/clipdr/studio-engine/internal/logging"
)

var playbackLogger = logging.ForService("playback")

// Track places one TrackSource on the engine's timeline: a start offset
// in seconds, an optional duration (0 means "play until the source
// ends"), a per-track volume, and a mute flag.
type Track struct {
	source      *TrackSource
	startSec    float64
	durationSec float64

	volume atomic.Uint32 // math.Float32bits, default 1.0
	muted  atomic.Bool
}

// NewTrack wraps source with timeline placement. durationSec <= 0 means
// the track plays until its source runs out of frames.
func NewTrack(source *TrackSource, startSec, durationSec float64) *Track {
	t := &Track{source: source, startSec: startSec, durationSec: durationSec}
	t.volume.Store(math.Float32bits(1.0))
	return t
}

// SetVolume sets this track's linear gain, applied in addition to the
// engine's master volume.
func (t *Track) SetVolume(v float32) { t.volume.Store(math.Float32bits(v)) }

// Volume returns this track's linear gain.
func (t *Track) Volume() float32 { return math.Float32frombits(t.volume.Load()) }

// SetMuted mutes or unmutes the track without removing it from the
// engine's track list.
func (t *Track) SetMuted(m bool) { t.muted.Store(m) }

// Muted reports whether the track is currently muted.
func (t *Track) Muted() bool { return t.muted.Load() }

// Source returns the track's underlying PCM source.
func (t *Track) Source() *TrackSource { return t.source }

// StartSec returns the track's timeline start offset in seconds.
func (t *Track) StartSec() float64 { return t.startSec }

// contains reports whether timeline position posSec falls within
// [startSec, startSec+durationSec), or is >= startSec when durationSec
// is unset.
func (t *Track) contains(posSec float64) bool {
	if posSec < t.startSec {
		return false
	}
	if t.durationSec <= 0 {
		return true
	}
	return posSec < t.startSec+t.durationSec
}
