package device

import (
	"context"
	"math"
	"sync"

	"github.com/clipdr/studio-engine/internal/errors"
	"github.com/jfreymuth/pulse"
	pulseproto "github.com/jfreymuth/pulse/proto"
)

// pulseBackend talks to a local PulseAudio (or PipeWire-pulse) server.
type pulseBackend struct{}

// NewPulseBackend probes for a reachable Pulse server and returns a
// backend bound to it, or an error if none is running.
func NewPulseBackend() (Backend, error) {
	client, err := pulse.NewClient(
		pulse.ClientApplicationName("studio-engine"),
		pulse.ClientApplicationIconName("audio-input-microphone"),
	)
	if err != nil {
		return nil, errors.New(err).
			Component("device").
			Category(errors.CategoryDevice).
			DeviceContext("pulse", "").
			Context("operation", "connect").
			Build()
	}
	client.Close()
	return &pulseBackend{}, nil
}

func (b *pulseBackend) Name() string { return "pulse" }

func (b *pulseBackend) ListInputs(_ context.Context) ([]Info, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName("studio-engine"))
	if err != nil {
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("pulse", "").Context("operation", "connect").Build()
	}
	defer client.Close()

	defaultSource, err := client.DefaultSource()
	if err != nil {
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("pulse", "").Context("operation", "default_source").Build()
	}
	defaultID := defaultSource.ID()

	var sourceInfos pulseproto.GetSourceInfoListReply
	if err := client.RawRequest(&pulseproto.GetSourceInfoList{}, &sourceInfos); err != nil {
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("pulse", "").Context("operation", "list_sources").Build()
	}

	infos := make([]Info, 0, len(sourceInfos))
	for _, source := range sourceInfos {
		if source == nil {
			continue
		}
		infos = append(infos, Info{
			ID:          source.SourceName,
			Description: source.Device,
			Backend:     "pulse",
			Default:     source.SourceName == defaultID,
			Available:   pulseSourceAvailable(source),
		})
	}
	return infos, nil
}

func (b *pulseBackend) OpenInput(_ context.Context, deviceID string, cfg StreamConfig, fn DataFunc) (Stream, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName("studio-engine"))
	if err != nil {
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("pulse", deviceID).Context("operation", "connect").Build()
	}

	var source *pulse.Source
	if deviceID == "" {
		source, err = client.DefaultSource()
	} else {
		source, err = client.SourceByID(deviceID)
	}
	if err != nil {
		client.Close()
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("pulse", deviceID).Context("operation", "resolve_source").Build()
	}

	channels := cfg.Channels
	if channels <= 0 {
		channels = 2
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	st := &pulseStream{client: client, channels: channels, sampleRate: sampleRate, fn: fn}

	writer := pulse.NewWriter(pulseWriterFunc(st.onPCM), pulseproto.FormatFloat32NE)
	opts := []pulse.RecordOption{
		pulse.RecordSource(source),
		pulse.RecordSampleRate(uint32(sampleRate)),
		pulse.RecordMediaName("studio-engine capture"),
	}
	if channels == 1 {
		opts = append(opts, pulse.RecordMono)
	} else {
		opts = append(opts, pulse.RecordStereo)
	}

	stream, err := client.NewRecord(writer, opts...)
	if err != nil {
		client.Close()
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("pulse", deviceID).Context("operation", "new_record").Build()
	}
	st.stream = stream
	stream.Start()

	return st, nil
}

type pulseStream struct {
	client     *pulse.Client
	stream     *pulse.RecordStream
	channels   int
	sampleRate int
	fn         DataFunc

	mu      sync.Mutex
	stopped bool
}

func (s *pulseStream) Negotiated() NegotiatedConfig {
	return NegotiatedConfig{SampleRate: s.sampleRate, Channels: s.channels}
}

func (s *pulseStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true

	if s.stream != nil {
		s.stream.Stop()
		s.stream.Close()
	}
	if s.client != nil {
		s.client.Close()
	}
	return nil
}

// onPCM decodes little-endian float32 PCM from Pulse and forwards it to
// the caller's DataFunc as interleaved samples.
func (s *pulseStream) onPCM(buf []byte) (int, error) {
	n := len(buf) / 4
	if n == 0 {
		return 0, nil
	}
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		samples[i] = decodeFloat32LE(buf[i*4 : i*4+4])
	}
	s.fn(samples)
	return n * 4, nil
}

func decodeFloat32LE(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}

type pulseWriterFunc func([]byte) (int, error)

func (f pulseWriterFunc) Write(b []byte) (int, error) { return f(b) }

func pulseSourceAvailable(source *pulseproto.GetSourceInfoReply) bool {
	if source == nil {
		return false
	}
	if len(source.Ports) == 0 {
		return true
	}
	for _, port := range source.Ports {
		if port.Name != source.ActivePortName {
			continue
		}
		// PulseAudio port availability: unknown=0, no=1, yes=2.
		return port.Available == 0 || port.Available == 2
	}
	return true
}
