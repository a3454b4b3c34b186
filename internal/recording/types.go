package recording

import (
	"sync/atomic"
	"time"

	"github.com/clipdr/studio-engine/internal/device"
	"github.com/clipdr/studio-engine/internal/ring"
	"github.com/clipdr/studio-engine/internal/wavfile"
)

// LargeFileFormat selects how a session handles data crossing the
// classic WAV 32-bit size boundary.
type LargeFileFormat int

const (
	// SplitTracks rolls to a new segment file at SegmentMaxDataBytes.
	SplitTracks LargeFileFormat = iota
	// RF64 promotes the single file in place instead of rolling.
	RF64
)

// ChannelMode describes how a session's input channels map to the
// written file.
type ChannelMode int

const (
	// ChannelModeNative writes exactly the device's negotiated channels.
	ChannelModeNative ChannelMode = iota
	// ChannelModeMono converts a single-segment stereo recording down
	// to mono on stop via a streaming stereo-to-mono pass.
	ChannelModeMono
)

// SessionConfig is the input to StartSession/StartMultiRecording.
type SessionConfig struct {
	ID              string
	DeviceID        string
	OutputDir       string
	ChannelMode     ChannelMode
	LargeFileFormat LargeFileFormat
}

// SessionResult is returned by StopSession.
type SessionResult struct {
	Path             string
	Duration         time.Duration
	SampleRate       int
	Channels         int
	ExtraSegments    []string
	PreRecordSeconds float64
	StartOffsetUs    int64
}

// Session is the per-recording-session state shared between the
// capture goroutine (feeding the ring) and the writer goroutine
// (draining it to disk). Exported fields are only ever written by one
// side; the manager mutates the session map, never session internals,
// outside of Stop.
type Session struct {
	id        string
	deviceID  string
	outputDir string
	basePath  string

	ring   *ring.Buffer
	stream device.Stream

	channelMode     ChannelMode
	largeFileFormat LargeFileFormat

	negotiated device.NegotiatedConfig

	active       atomic.Bool
	peakLevel    atomic.Uint32
	startOffset  int64
	preRecordSec float64

	done chan writerResult
}

// writerResult is what the writer goroutine sends back on exit, for
// StopSession to finalize.
type writerResult struct {
	totalSamples     uint64
	completedSegs    []string
	finalSegmentPath string
	writer           *wavfile.Writer
	err              error
}
