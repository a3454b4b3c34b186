package playback

import (
	"io"
	"math"
	"time"
)

const streamPollSleep = time.Millisecond

// streamInitialFillTimeout bounds how long newStreamSource waits for the
// ring to reach its ready threshold. On timeout the track starts
// playing whatever has decoded so far, which may be silence briefly.
const streamInitialFillTimeout = 10 * time.Second

// streamSource owns a streamDecoder and the decode goroutine that fills
// a StreamBuffer from it, implementing the streaming leg of the
// mmap/cache/stream source strategy.
type streamSource struct {
	decoder    streamDecoder
	buf        *StreamBuffer
	sampleRate int
	channels   int
	done       chan struct{}
}

// newStreamSource opens a decoder for path, starts its decode goroutine,
// and blocks until the buffer's initial fill threshold (or EOF) is
// reached, or streamInitialFillTimeout elapses, before returning.
func newStreamSource(path string) (*streamSource, error) {
	dec, err := openStreamDecoder(path)
	if err != nil {
		return nil, err
	}

	buf := NewStreamBuffer(dec.SampleRate(), dec.Channels())
	s := &streamSource{
		decoder:    dec,
		buf:        buf,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		done:       make(chan struct{}),
	}
	go s.run()

	deadline := time.Now().Add(streamInitialFillTimeout)
	for !buf.Ready() && !buf.Stopped() && time.Now().Before(deadline) {
		time.Sleep(streamPollSleep)
	}
	if !buf.Ready() && !buf.Stopped() {
		playbackLogger.Warn("streaming track initial fill timed out, starting with partial buffer", "path", path)
	}
	return s, nil
}

// RequestSeek forwards to the underlying ring; picked up by run() at
// its next loop step.
func (s *streamSource) RequestSeek(posSec float64) { s.buf.RequestSeek(posSec) }

// Close stops the decode goroutine and closes the decoder.
func (s *streamSource) Close() error {
	s.buf.Stop()
	<-s.done
	return s.decoder.Close()
}

func (s *streamSource) run() {
	defer close(s.done)

	readyThreshold := int64(streamReadyFillSeconds * float64(s.sampleRate))
	var scratch []float32

	for {
		if s.buf.Stopped() {
			return
		}
		if s.buf.seekPending.Load() {
			pos := math.Float64frombits(s.buf.seekBits.Load())
			newBase := int64(pos * float64(s.sampleRate))
			if newBase < 0 {
				newBase = 0
			}
			if err := s.decoder.SeekSample(newBase); err != nil {
				playbackLogger.Warn("streaming track seek failed", "error", err)
			}
			s.buf.resetForSeek(newBase)
			s.buf.seekPending.Store(false)
			continue
		}

		var err error
		scratch, err = s.decoder.NextFrame(scratch[:0])
		if len(scratch) > 0 {
			s.buf.writeFrames(scratch)
			if !s.buf.Ready() && s.buf.writeHead.Load()-s.buf.baseOffset.Load() >= readyThreshold {
				s.buf.ready.Store(true)
			}
		}
		if err != nil {
			if err == io.EOF {
				s.buf.ready.Store(true)
			} else {
				playbackLogger.Error("streaming decode error", "error", err)
			}
			return
		}
	}
}
