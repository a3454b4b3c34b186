package playback

import (
	"math"
	"sync/atomic"
	"time"
)

// streamCapacitySeconds sizes a streaming track's ring buffer.
const streamCapacitySeconds = 30

// streamReadyFillSeconds is how much decoded audio must be buffered
// before a streaming track is considered safe to start reading from.
const streamReadyFillSeconds = 0.5

const streamFullRetrySleep = 5 * time.Millisecond

// StreamBuffer is a sliding-window ring of decoded PCM frames for one
// streaming track: a decode goroutine writes, the output callback reads
// under a seqlock (epoch), so a seek can reset the window's base offset
// without the callback ever observing a torn read. All offsets are
// absolute source-frame indices, monotonically increasing except across
// a seek reset.
type StreamBuffer struct {
	data           []float32 // interleaved, capacityFrames*channels
	capacityFrames int64
	channels       int
	sampleRate     int

	baseOffset atomic.Int64 // absolute frame index of the oldest valid frame
	writeHead  atomic.Int64 // absolute frame index one past the last written frame
	readCursor atomic.Int64 // absolute frame index the callback has consumed up to (CAS-max)

	seekBits    atomic.Uint64
	seekPending atomic.Bool

	ready atomic.Bool
	epoch atomic.Uint64 // even = stable, odd = being reset

	stop atomic.Bool
}

// NewStreamBuffer allocates a ring sized for streamCapacitySeconds of
// audio at the given format.
func NewStreamBuffer(sampleRate, channels int) *StreamBuffer {
	capacityFrames := int64(streamCapacitySeconds * float64(sampleRate))
	return &StreamBuffer{
		data:           make([]float32, capacityFrames*int64(channels)),
		capacityFrames: capacityFrames,
		channels:       channels,
		sampleRate:     sampleRate,
	}
}

// Ready reports whether the initial fill threshold (or EOF) has been
// reached.
func (b *StreamBuffer) Ready() bool { return b.ready.Load() }

// Stop signals the decode goroutine to exit at its next loop step.
func (b *StreamBuffer) Stop() { b.stop.Store(true) }

// Stopped reports whether Stop has been called.
func (b *StreamBuffer) Stopped() bool { return b.stop.Load() }

// RequestSeek records pos (seconds, relative to this source) for the
// decode goroutine to pick up at its next loop step.
func (b *StreamBuffer) RequestSeek(posSec float64) {
	b.seekBits.Store(math.Float64bits(posSec))
	b.seekPending.Store(true)
}

// FrameAt reads the frame at absolute source-frame index frame under
// the seqlock. ok is false if the epoch was mid-reset or the frame fell
// outside the currently valid window. For a mono source, both outputs
// carry the single channel's value.
func (b *StreamBuffer) FrameAt(frame int64) (left, right float32, ok bool) {
	e1 := b.epoch.Load()
	if e1%2 != 0 {
		return 0, 0, false
	}
	base := b.baseOffset.Load()
	head := b.writeHead.Load()
	e2 := b.epoch.Load()
	if e1 != e2 {
		return 0, 0, false
	}
	if frame < base || frame >= head {
		return 0, 0, false
	}

	pos := frame % b.capacityFrames
	off := pos * int64(b.channels)
	if b.channels == 1 {
		v := b.data[off]
		return v, v, true
	}
	return b.data[off], b.data[off+1], true
}

// AdvanceReadCursor is a CAS-max loop: it only ever moves readCursor
// forward, called by the output callback after each batch of frames it
// consumed so the decode goroutine knows how much window space it can
// reclaim.
func (b *StreamBuffer) AdvanceReadCursor(frame int64) {
	for {
		prev := b.readCursor.Load()
		if frame <= prev {
			return
		}
		if b.readCursor.CompareAndSwap(prev, frame) {
			return
		}
	}
}

// writeFrames appends interleaved PCM to the ring, starting at the
// current writeHead, blocking (with a short sleep) when the ring is
// full and the reader hasn't made progress. Returns early if Stop or a
// pending seek interrupts the wait — the caller is expected to check
// Stopped/seek state itself afterward.
func (b *StreamBuffer) writeFrames(frames []float32) {
	nFrames := int64(len(frames)) / int64(b.channels)
	for nFrames > 0 {
		head := b.writeHead.Load()
		read := b.readCursor.Load()
		if head-read >= b.capacityFrames {
			if b.stop.Load() || b.seekPending.Load() {
				return
			}
			time.Sleep(streamFullRetrySleep)
			continue
		}

		free := b.capacityFrames - (head - read)
		n := nFrames
		if n > free {
			n = free
		}
		for i := int64(0); i < n; i++ {
			pos := (head + i) % b.capacityFrames
			dstOff := pos * int64(b.channels)
			srcOff := i * int64(b.channels)
			copy(b.data[dstOff:dstOff+int64(b.channels)], frames[srcOff:srcOff+int64(b.channels)])
		}

		newHead := head + n
		b.writeHead.Store(newHead)
		if newHead-b.baseOffset.Load() > b.capacityFrames {
			b.baseOffset.Store(newHead - b.capacityFrames)
		}

		frames = frames[n*int64(b.channels):]
		nFrames -= n
	}
}

// resetForSeek performs the seqlock reset pattern: bump epoch odd,
// rebase every offset to newBaseFrame, clear ready, bump epoch even.
func (b *StreamBuffer) resetForSeek(newBaseFrame int64) {
	b.epoch.Add(1)
	b.baseOffset.Store(newBaseFrame)
	b.writeHead.Store(newBaseFrame)
	b.readCursor.Store(newBaseFrame)
	b.ready.Store(false)
	b.epoch.Add(1)
}
