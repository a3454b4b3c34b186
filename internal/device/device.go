// Package device abstracts audio input/output hardware behind a single
// Backend interface, with concrete implementations for PulseAudio
// (Linux-native, lower latency) and malgo (cross-platform fallback via
// miniaudio). Selection between them follows the configured preference,
// falling back automatically when the preferred backend can't connect.
package device

import (
	"context"
	"strings"

	"github.com/clipdr/studio-engine/internal/errors"
)

// Info describes one input or output device as reported by a backend.
type Info struct {
	ID          string
	Description string
	Backend     string
	Default     bool
	Available   bool
}

// StreamConfig requests a PCM format from a backend. Backends negotiate
// against it and report what they actually opened in NegotiatedConfig.
type StreamConfig struct {
	SampleRate int
	Channels   int
}

// NegotiatedConfig is what a backend actually opened a stream with,
// which may differ from the requested StreamConfig (e.g. a source that
// only supports 48kHz when 44100 was requested).
type NegotiatedConfig struct {
	SampleRate int
	Channels   int
}

// DataFunc receives interleaved float32 PCM frames from an input stream.
// It is called from the backend's I/O goroutine and must not block.
type DataFunc func(samples []float32)

// Stream is a running capture or playback session against one device.
type Stream interface {
	// Negotiated reports the format the stream actually opened with.
	Negotiated() NegotiatedConfig
	// Stop halts I/O. Safe to call more than once.
	Stop() error
}

// Backend is one audio I/O subsystem (PulseAudio, malgo/miniaudio, ...).
type Backend interface {
	// Name identifies the backend for logging and device-ID prefixing.
	Name() string
	// ListInputs enumerates available capture devices.
	ListInputs(ctx context.Context) ([]Info, error)
	// OpenInput starts capturing from deviceID, delivering frames to fn.
	// An empty deviceID selects the backend's default input.
	OpenInput(ctx context.Context, deviceID string, cfg StreamConfig, fn DataFunc) (Stream, error)
}

// Resolve picks a Backend by name ("pulse", "malgo") or, for "auto",
// tries PulseAudio first (native on Linux, lower overhead) and falls
// back to malgo if it can't reach a Pulse server.
func Resolve(ctx context.Context, name string) (Backend, error) {
	switch strings.ToLower(name) {
	case "pulse":
		return NewPulseBackend()
	case "malgo":
		return NewMalgoBackend()
	case "", "auto":
		if b, err := NewPulseBackend(); err == nil {
			return b, nil
		}
		return NewMalgoBackend()
	default:
		return nil, errors.Newf("unknown device backend %q", name).
			Component("device").
			Category(errors.CategoryValidation).
			Build()
	}
}
