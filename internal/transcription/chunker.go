package transcription

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/clipdr/studio-engine/internal/logging"
)

var chunkerLogger = logging.ForService("transcription")

// Config controls the chunker's window size and poll cadence.
type Config struct {
	ChunkDurationSecs float64
	OverlapSecs       float64
	PollInterval      time.Duration
}

// DefaultConfig returns the 5s/0.5s-overlap window the live
// transcription event contract specifies.
func DefaultConfig() Config {
	return Config{
		ChunkDurationSecs: 5.0,
		OverlapSecs:       0.5,
		PollInterval:      100 * time.Millisecond,
	}
}

// Chunker drains a Buffer in fixed-size, overlapping windows, resamples
// each window to mono 16kHz, and feeds it to a Transcriber. Results are
// published on the channel returned by Events, with timestamps made
// continuous across chunks via a running offset.
type Chunker struct {
	buf         *Buffer
	transcriber Transcriber
	config      Config

	events  chan Event
	stop    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewChunker builds a Chunker over buf, delivering events on a buffered
// channel of capacity 32.
func NewChunker(buf *Buffer, transcriber Transcriber, config Config) *Chunker {
	return &Chunker{
		buf:         buf,
		transcriber: transcriber,
		config:      config,
		events:      make(chan Event, 32),
	}
}

// Events returns the channel partial and final transcription events are
// published on.
func (c *Chunker) Events() <-chan Event { return c.events }

// Start clears the buffer, enables accumulation, and begins the
// chunking loop. Calling Start on an already-running Chunker is a
// no-op.
func (c *Chunker) Start(ctx context.Context) {
	if c.running.Swap(true) {
		return
	}
	c.buf.Reset()
	c.buf.SetEnabled(true)
	c.stop = make(chan struct{})

	c.wg.Add(1)
	go c.run(ctx)
}

// Stop signals the chunking loop to exit and blocks until it has
// emitted the terminal event and returned. Safe to call on a Chunker
// that is not running.
func (c *Chunker) Stop() {
	if !c.running.Swap(false) {
		return
	}
	c.buf.SetEnabled(false)
	close(c.stop)
	c.wg.Wait()
}

func (c *Chunker) run(ctx context.Context) {
	defer c.wg.Done()
	defer func() {
		c.events <- Event{IsFinal: true, ChunkIndex: FinalChunkIndex}
		chunkerLogger.Info("transcription chunker stopped")
	}()

	chunkSamples16k := int(c.config.ChunkDurationSecs * targetSampleRate)
	processedUpTo := 0
	var chunkIndex uint64
	var totalProcessedSeconds float64

	chunkerLogger.Info("transcription chunker started", "chunk_samples_16k", chunkSamples16k)

	timer := time.NewTimer(c.config.PollInterval)
	defer timer.Stop()

	for c.running.Load() {
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		default:
		}

		sampleRate, channels := c.buf.Format()
		if sampleRate <= 0 {
			sampleRate = 44100
		}
		if channels <= 0 {
			channels = 1
		}

		ratio := float64(sampleRate) / targetSampleRate
		sourceSamplesNeeded := int(float64(chunkSamples16k)*ratio) * channels

		if c.buf.Count() >= processedUpTo+sourceSamplesNeeded {
			end := processedUpTo + sourceSamplesNeeded
			if max := c.buf.Count(); end > max {
				end = max
			}
			raw := c.buf.Slice(processedUpTo, end)

			if len(raw) > 0 {
				mono16k, err := toMono16k(raw, sampleRate, channels)
				if err != nil {
					chunkerLogger.Warn("resample to 16kHz failed", "error", err)
				} else if len(mono16k) >= targetSampleRate/10 { // at least 0.1s
					words, terr := c.transcriber.Transcribe(mono16k)
					if terr != nil {
						chunkerLogger.Warn("transcribe failed", "chunk_index", chunkIndex, "error", terr)
					} else if len(words) > 0 {
						for i := range words {
							words[i].Start += totalProcessedSeconds
							words[i].End += totalProcessedSeconds
							if words[i].ID == "" {
								words[i].ID = fmt.Sprintf("live-%d-%d", chunkIndex, i)
							}
						}
						c.events <- Event{Words: words, ChunkIndex: chunkIndex, IsFinal: false}
					}

					processedSeconds := float64(len(mono16k)) / targetSampleRate
					overlapSource := int(c.config.OverlapSecs*float64(sampleRate)) * channels
					advance := sourceSamplesNeeded - overlapSource
					if advance < 0 {
						advance = 0
					}
					processedUpTo += advance
					totalProcessedSeconds += processedSeconds - c.config.OverlapSecs
					chunkIndex++

					if dropped := c.buf.Prune(); dropped > 0 {
						processedUpTo -= dropped
						if processedUpTo < 0 {
							processedUpTo = 0
						}
					}
				}
			}
		}

		timer.Reset(c.config.PollInterval)
		select {
		case <-ctx.Done():
			return
		case <-c.stop:
			return
		case <-timer.C:
		}
	}
}
