package playback

import (
	"math"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/clipdr/studio-engine/internal/wavfile"
)

type sourceKind int

const (
	sourceMmap sourceKind = iota
	sourceStream
)

// sourceState is the immutable snapshot a TrackSource points to. Swapping
// it via an atomic pointer store is how a streaming track hot-swaps to
// its finished decode-cache file without the output callback ever
// taking a lock.
type sourceState struct {
	kind sourceKind

	pcm        []float32
	sampleRate int
	channels   int

	stream *streamSource
}

// TrackSource is a track's PCM source: either an in-memory PCM buffer
// (mmap'd WAV or a completed decode-cache swap) or a live streaming
// decode backed by a seqlocked ring buffer.
type TrackSource struct {
	state atomic.Pointer[sourceState]
}

func newMmapTrackSource(pcm *pcmSource) *TrackSource {
	ts := &TrackSource{}
	ts.state.Store(&sourceState{
		kind:       sourceMmap,
		pcm:        pcm.data,
		sampleRate: pcm.sampleRate,
		channels:   pcm.channels,
	})
	return ts
}

func newStreamTrackSource(s *streamSource) *TrackSource {
	ts := &TrackSource{}
	ts.state.Store(&sourceState{
		kind:       sourceStream,
		sampleRate: s.sampleRate,
		channels:   s.channels,
		stream:     s,
	})
	return ts
}

// SampleRate returns the source's current native sample rate.
func (ts *TrackSource) SampleRate() int { return ts.state.Load().sampleRate }

// Channels returns the source's current channel count.
func (ts *TrackSource) Channels() int { return ts.state.Load().channels }

// FrameAt returns the sample(s) at absolute source-frame index frame. A
// mono source returns the same value in both outputs. ok is false when
// the frame is out of range or (for a streaming source) not currently
// available.
func (ts *TrackSource) FrameAt(frame int64) (left, right float32, ok bool) {
	st := ts.state.Load()
	switch st.kind {
	case sourceMmap:
		idx := frame * int64(st.channels)
		if idx < 0 || idx+int64(st.channels) > int64(len(st.pcm)) {
			return 0, 0, false
		}
		if st.channels == 1 {
			v := st.pcm[idx]
			return v, v, true
		}
		return st.pcm[idx], st.pcm[idx+1], true
	case sourceStream:
		return st.stream.buf.FrameAt(frame)
	default:
		return 0, 0, false
	}
}

// RequestSeek forwards a seek (in source-relative seconds) to the
// streaming decode goroutine, a no-op for an mmap'd source since its
// FrameAt is already random-access.
func (ts *TrackSource) RequestSeek(posSec float64) {
	st := ts.state.Load()
	if st.kind == sourceStream {
		st.stream.RequestSeek(posSec)
	}
}

// advanceStreamReadCursor lets a streaming source's decode goroutine
// reclaim ring space behind the highest frame index the callback has
// consumed so far. No-op for an mmap'd source.
func (ts *TrackSource) advanceStreamReadCursor(frame int64) {
	st := ts.state.Load()
	if st.kind == sourceStream {
		st.stream.buf.AdvanceReadCursor(frame)
	}
}

// SwapToCache replaces a streaming source with its finished decode-cache
// WAV, observed by the next FrameAt call with no lock. Stops the
// decode goroutine that fed the streaming ring. A no-op if the source
// has already been swapped or was never streaming.
func (ts *TrackSource) SwapToCache(cachePath string) error {
	old := ts.state.Load()
	if old.kind != sourceStream {
		return nil
	}
	pcm, err := loadPCMSource(cachePath)
	if err != nil {
		return err
	}
	ts.state.Store(&sourceState{
		kind:       sourceMmap,
		pcm:        pcm.data,
		sampleRate: pcm.sampleRate,
		channels:   pcm.channels,
	})
	return old.stream.Close()
}

// Close releases any resources the source holds (the decode goroutine
// and file handle for a streaming source; a no-op for mmap).
func (ts *TrackSource) Close() error {
	st := ts.state.Load()
	if st.kind == sourceStream {
		return st.stream.Close()
	}
	return nil
}

// LoadTrackSource resolves a playable source for path: (1) mmap it
// directly if it's already a 32-bit float WAV, (2) use a fresh decode
// cache file if one exists for it, or (3) spawn a streaming decode and,
// if cacheDir is set, a background task that builds the cache file and
// hot-swaps the track onto it once done.
func LoadTrackSource(path, cacheDir string) (*TrackSource, error) {
	if isFloatWAV(path) {
		pcm, err := loadPCMSource(path)
		if err != nil {
			return nil, err
		}
		return newMmapTrackSource(pcm), nil
	}

	var cachePath string
	if cacheDir != "" {
		if cp, err := cacheFilePath(cacheDir, path); err == nil {
			cachePath = cp
			if cacheIsFresh(cachePath, path) {
				if pcm, err := loadPCMSource(cachePath); err == nil {
					return newMmapTrackSource(pcm), nil
				}
			}
		}
	}

	stream, err := newStreamSource(path)
	if err != nil {
		return nil, err
	}
	ts := newStreamTrackSource(stream)

	if cachePath != "" {
		go buildDecodeCacheAndSwap(path, cachePath, ts)
	}
	return ts, nil
}

func isFloatWAV(path string) bool {
	format, err := wavfile.ReadFormat(path)
	return err == nil && format.BitsPerSample == 32
}

// pcmSource is a fully in-memory PCM buffer, used both for directly
// mmap'd WAVs and decode-cache swaps. It's a full-file read rather than
// a true mmap syscall: no pack library exposes a cross-platform mmap
// wrapper, and this engine's source files are small enough in practice
// (decode-cache entries, short clips) that the zero-copy win doesn't
// justify reaching outside the pack for one (see DESIGN.md).
type pcmSource struct {
	data       []float32
	sampleRate int
	channels   int
}

func loadPCMSource(path string) (*pcmSource, error) {
	format, err := wavfile.ReadFormat(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, wrapFileIOErr(err, path)
	}
	defer f.Close()

	if _, err := f.Seek(format.DataOffset, 0); err != nil {
		return nil, wrapFileIOErr(err, path)
	}

	raw := make([]byte, format.DataSize)
	if _, err := readFullFrom(f, raw); err != nil {
		return nil, wrapFileIOErr(err, path)
	}

	data := make([]float32, len(raw)/4)
	for i := range data {
		bits := uint32(raw[i*4]) | uint32(raw[i*4+1])<<8 | uint32(raw[i*4+2])<<16 | uint32(raw[i*4+3])<<24
		data[i] = math.Float32frombits(bits)
	}

	return &pcmSource{data: data, sampleRate: format.SampleRate, channels: format.Channels}, nil
}

func readFullFrom(f *os.File, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := f.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// buildDecodeCacheAndSwap independently re-decodes path into a fresh WAV
// file at cachePath (a separate decoder instance from the one already
// feeding the live stream, so the two never contend over the same file
// handle), then hot-swaps ts onto it.
func buildDecodeCacheAndSwap(srcPath, cachePath string, ts *TrackSource) {
	if err := os.MkdirAll(filepath.Dir(cachePath), 0o755); err != nil {
		playbackLogger.Warn("failed to create decode cache directory", "error", err)
		return
	}

	dec, err := openStreamDecoder(srcPath)
	if err != nil {
		playbackLogger.Warn("decode cache build failed to open source", "path", srcPath, "error", err)
		return
	}
	defer dec.Close()

	w, err := wavfile.NewWriter(cachePath, dec.SampleRate(), dec.Channels())
	if err != nil {
		playbackLogger.Warn("decode cache build failed to create writer", "path", cachePath, "error", err)
		return
	}

	var buf []float32
	for {
		var derr error
		buf, derr = dec.NextFrame(buf[:0])
		if len(buf) > 0 {
			if werr := w.WriteSamples(buf); werr != nil {
				playbackLogger.Warn("decode cache write failed", "path", cachePath, "error", werr)
				_ = w.Finalize()
				_ = os.Remove(cachePath)
				return
			}
		}
		if derr != nil {
			break
		}
	}

	if err := w.Finalize(); err != nil {
		playbackLogger.Warn("decode cache finalize failed", "path", cachePath, "error", err)
		return
	}

	if err := ts.SwapToCache(cachePath); err != nil {
		playbackLogger.Warn("decode cache swap failed", "path", cachePath, "error", err)
		return
	}
	playbackLogger.Info("swapped streaming track onto decode cache", "path", cachePath)
}
