// Package ring implements the lock-free buffers that sit between a
// realtime audio callback and the goroutines that consume its output:
// a single-producer/single-consumer recording buffer, and a sliding
// pre-record buffer that keeps the last few seconds of monitored audio
// so a recording can be started retroactively.
package ring

import (
	"sync/atomic"

	"github.com/clipdr/studio-engine/internal/errors"
)

// BadChannel identifies which input channel, if any, was found to be
// clipped (pinned at full scale) during the initial bad-channel
// detection window.
type BadChannel int

const (
	BadChannelNone BadChannel = iota
	BadChannelLeft
	BadChannelRight
)

// Buffer is a realtime-safe SPSC ring buffer: the audio callback
// (producer) writes interleaved float32 samples without blocking, and a
// dedicated writer goroutine (consumer) drains them to disk. Capacity is
// fixed at construction; Write never allocates and never blocks.
//
// Producer and consumer positions are monotonically increasing counters,
// never reset, so wraparound is just modulo arithmetic against Capacity
// and "bytes available" is always write-read with no ambiguity about
// full vs. empty.
type Buffer struct {
	data     []float32
	capacity uint64

	writePos atomic.Uint64
	readPos  atomic.Uint64

	active atomic.Bool

	channels    int
	badChannel  atomic.Int32
	overruns    atomic.Uint64
	maxFillMark atomic.Uint64
}

// NewBuffer allocates a ring buffer with room for capacity float32
// samples (not frames — interleaved channel samples).
func NewBuffer(capacity int, channels int) *Buffer {
	b := &Buffer{
		data:     make([]float32, capacity),
		capacity: uint64(capacity),
		channels: channels,
	}
	b.active.Store(true)
	return b
}

// Capacity returns the buffer's fixed size in samples.
func (b *Buffer) Capacity() int { return int(b.capacity) }

// Channels returns the number of interleaved channels the buffer was
// created for.
func (b *Buffer) Channels() int { return b.channels }

// Active reports whether the writer goroutine should keep draining.
// Producers clear this to signal "drain what's left, then stop".
func (b *Buffer) Active() bool { return b.active.Load() }

// Stop marks the buffer inactive. The consumer observes this after its
// next drain and exits once write_pos == read_pos.
func (b *Buffer) Stop() { b.active.Store(false) }

// Write copies samples into the buffer at the current write position.
// It never blocks; if the consumer hasn't kept up and the batch would
// overrun (write would lap read), the entire batch is dropped rather
// than overwriting unread data, and the overrun counter is incremented.
// Only ever called from the producer (audio callback) goroutine.
func (b *Buffer) Write(samples []float32) {
	if len(samples) == 0 {
		return
	}

	wp := b.writePos.Load()
	rp := b.readPos.Load()

	if uint64(len(samples))+(wp-rp) > b.capacity {
		b.overruns.Add(1)
		return
	}

	for i, s := range samples {
		idx := (wp + uint64(i)) % b.capacity
		b.data[idx] = s
	}
	newWP := wp + uint64(len(samples))
	b.writePos.Store(newWP)

	fill := newWP - rp
	if fill > b.capacity {
		fill = b.capacity
	}
	for {
		prev := b.maxFillMark.Load()
		if fill <= prev || b.maxFillMark.CompareAndSwap(prev, fill) {
			break
		}
	}
}

// Drain copies all samples available since the last Drain (or since
// construction) into a freshly allocated slice and advances the read
// position. Only ever called from the consumer (writer) goroutine.
func (b *Buffer) Drain() []float32 {
	wp := b.writePos.Load()
	rp := b.readPos.Load()

	avail := wp - rp
	if avail == 0 {
		return nil
	}
	if avail > b.capacity {
		// producer lapped us since the last read; we can only recover
		// the most recent Capacity samples
		rp = wp - b.capacity
		avail = b.capacity
	}

	out := make([]float32, avail)
	for i := range out {
		idx := (rp + uint64(i)) % b.capacity
		out[i] = b.data[idx]
	}
	b.readPos.Store(rp + avail)
	return out
}

// Pending returns the number of samples written but not yet drained.
func (b *Buffer) Pending() int {
	wp := b.writePos.Load()
	rp := b.readPos.Load()
	avail := wp - rp
	if avail > b.capacity {
		avail = b.capacity
	}
	return int(avail)
}

// OverrunCount returns how many batches the producer had to drop
// because the consumer fell behind and the batch would have overrun
// unread samples.
func (b *Buffer) OverrunCount() uint64 { return b.overruns.Load() }

// MaxFillLevel returns the high-water mark of buffer occupancy, in
// samples, observed so far.
func (b *Buffer) MaxFillLevel() int { return int(b.maxFillMark.Load()) }

// SetBadChannel records which channel, if any, was found bad during
// startup detection.
func (b *Buffer) SetBadChannel(ch BadChannel) { b.badChannel.Store(int32(ch)) }

// BadChannel returns the channel flagged bad, or BadChannelNone.
func (b *Buffer) BadChannel() BadChannel { return BadChannel(b.badChannel.Load()) }

// DetectBadChannel inspects up to the first windowFrames stereo frames
// for a clipping heuristic: one channel pinned at full scale for most of
// the window while the other stays well below it usually indicates a
// disconnected or misconfigured input, not real signal. Follows the
// original capture pipeline's detection thresholds: >=80% of samples on
// the suspect channel at |x|>=0.999, and <30% of samples on the other
// channel at the same level.
func DetectBadChannel(interleavedStereo []float32, windowFrames int) (BadChannel, error) {
	if len(interleavedStereo)%2 != 0 {
		return BadChannelNone, errors.Newf("%s", errFrameAlignment).
			Component("ring").
			Category(errors.CategoryValidation).
			Build()
	}

	frames := len(interleavedStereo) / 2
	if windowFrames > 0 && windowFrames < frames {
		frames = windowFrames
	}
	if frames == 0 {
		return BadChannelNone, nil
	}

	const clipThreshold = float32(0.999)
	var leftClipped, rightClipped int
	for i := 0; i < frames; i++ {
		l := interleavedStereo[2*i]
		r := interleavedStereo[2*i+1]
		if abs32(l) >= clipThreshold {
			leftClipped++
		}
		if abs32(r) >= clipThreshold {
			rightClipped++
		}
	}

	leftRatio := float64(leftClipped) / float64(frames)
	rightRatio := float64(rightClipped) / float64(frames)

	switch {
	case leftRatio >= 0.8 && rightRatio < 0.3:
		return BadChannelLeft, nil
	case rightRatio >= 0.8 && leftRatio < 0.3:
		return BadChannelRight, nil
	default:
		return BadChannelNone, nil
	}
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

const errFrameAlignment = "bad-channel detection requires an even number of interleaved stereo samples"
