package transcription

import (
	"sync"
	"sync/atomic"

	"github.com/clipdr/studio-engine/internal/logging"
)

var bufferLogger = logging.ForService("transcription")

// maxBufferSeconds bounds the source buffer before it is halved: 10
// minutes, matching the live-transcription buffer's own cap.
const maxBufferSeconds = 10 * 60

// Buffer accumulates raw capture samples for the live transcription
// chunker. Append is non-blocking (it skips the batch rather than
// stalling the capture/audio thread when the buffer is momentarily
// locked by the chunker) while Slice/Prune block normally since they
// run on the chunker's own goroutine.
type Buffer struct {
	mu      sync.Mutex
	samples []float32

	enabled    atomic.Bool
	sampleRate atomic.Uint32
	channels   atomic.Uint32
	count      atomic.Uint64
}

// NewBuffer returns an empty Buffer for the given source format.
func NewBuffer(sampleRate, channels int) *Buffer {
	b := &Buffer{}
	b.sampleRate.Store(uint32(sampleRate))
	b.channels.Store(uint32(channels))
	return b
}

// SetEnabled turns sample accumulation on or off. Disabled buffers
// silently drop Append calls, matching TRANSCRIPTION_ENABLED's gate.
func (b *Buffer) SetEnabled(enabled bool) { b.enabled.Store(enabled) }

// Enabled reports whether the buffer currently accepts samples.
func (b *Buffer) Enabled() bool { return b.enabled.Load() }

// SetFormat updates the source sample rate/channel count, used when a
// session's negotiated format becomes known after the buffer is
// created.
func (b *Buffer) SetFormat(sampleRate, channels int) {
	b.sampleRate.Store(uint32(sampleRate))
	b.channels.Store(uint32(channels))
}

// Format returns the current source sample rate and channel count.
func (b *Buffer) Format() (sampleRate, channels int) {
	return int(b.sampleRate.Load()), int(b.channels.Load())
}

// Append adds interleaved samples to the buffer. Called from the
// recording write path; never blocks longer than a single uncontended
// lock acquisition, and drops the batch entirely if the buffer is busy
// being read by the chunker, matching the original's try-lock policy.
func (b *Buffer) Append(samples []float32) {
	if !b.enabled.Load() || len(samples) == 0 {
		return
	}
	if !b.mu.TryLock() {
		return
	}
	b.samples = append(b.samples, samples...)
	b.count.Store(uint64(len(b.samples)))
	b.mu.Unlock()
}

// Count returns the number of samples currently buffered.
func (b *Buffer) Count() int { return int(b.count.Load()) }

// Slice returns a copy of samples[from:to], clamped to the buffer's
// current bounds.
func (b *Buffer) Slice(from, to int) []float32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if from < 0 {
		from = 0
	}
	if to > len(b.samples) {
		to = len(b.samples)
	}
	if from >= to {
		return nil
	}
	out := make([]float32, to-from)
	copy(out, b.samples[from:to])
	return out
}

// Prune halves the buffer once it exceeds maxBufferSeconds worth of
// samples at the current format, returning the number of samples
// dropped from the front so the caller can adjust its own read cursor.
func (b *Buffer) Prune() int {
	sampleRate, channels := b.Format()
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	if channels <= 0 {
		channels = 1
	}
	maxSamples := sampleRate * channels * maxBufferSeconds

	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.samples) <= maxSamples {
		return 0
	}
	drain := len(b.samples) / 2
	b.samples = append([]float32(nil), b.samples[drain:]...)
	b.count.Store(uint64(len(b.samples)))
	bufferLogger.Info("pruned transcription buffer", "remaining_samples", len(b.samples))
	return drain
}

// Reset clears the buffer and its sample count.
func (b *Buffer) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.samples = nil
	b.count.Store(0)
}
