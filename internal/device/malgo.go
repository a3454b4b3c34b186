package device

import (
	"context"
	"math"
	"runtime"
	"strings"
	"sync"

	"github.com/clipdr/studio-engine/internal/errors"
	"github.com/gen2brain/malgo"
)

// malgoBackend captures audio via miniaudio (ALSA/WASAPI/CoreAudio
// depending on platform), used when PulseAudio isn't reachable.
type malgoBackend struct{}

// NewMalgoBackend returns a backend bound to the platform's native
// miniaudio backend.
func NewMalgoBackend() (Backend, error) {
	if _, err := platformBackend(); err != nil {
		return nil, err
	}
	return &malgoBackend{}, nil
}

func (b *malgoBackend) Name() string { return "malgo" }

func platformBackend() (malgo.Backend, error) {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa, nil
	case "windows":
		return malgo.BackendWasapi, nil
	case "darwin":
		return malgo.BackendCoreaudio, nil
	default:
		return malgo.BackendNull, errors.Newf("unsupported operating system %q for malgo backend", runtime.GOOS).
			Component("device").
			Category(errors.CategoryDevice).
			Build()
	}
}

func (b *malgoBackend) ListInputs(_ context.Context) ([]Info, error) {
	backend, err := platformBackend()
	if err != nil {
		return nil, err
	}

	ctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("malgo", "").Context("operation", "init_context").Build()
	}
	defer func() { _ = ctx.Uninit() }()

	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("malgo", "").Context("operation", "enumerate_devices").Build()
	}

	out := make([]Info, 0, len(infos))
	for i := range infos {
		if strings.Contains(infos[i].Name(), "Discard all samples") {
			continue
		}
		out = append(out, Info{
			ID:          infos[i].ID.String(),
			Description: infos[i].Name(),
			Backend:     "malgo",
			Default:     infos[i].IsDefault == 1,
			Available:   true,
		})
	}
	return out, nil
}

func (b *malgoBackend) OpenInput(_ context.Context, deviceID string, cfg StreamConfig, fn DataFunc) (Stream, error) {
	backend, err := platformBackend()
	if err != nil {
		return nil, err
	}

	mctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("malgo", deviceID).Context("operation", "init_context").Build()
	}

	channels := cfg.Channels
	if channels <= 0 {
		channels = 2
	}
	sampleRate := cfg.SampleRate
	if sampleRate <= 0 {
		sampleRate = 44100
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)

	if deviceID != "" {
		info, ferr := findMalgoDevice(mctx, deviceID)
		if ferr != nil {
			_ = mctx.Uninit()
			return nil, ferr
		}
		deviceConfig.Capture.DeviceID = info.ID.Pointer()
	}

	st := &malgoStream{mctx: mctx, channels: channels, sampleRate: sampleRate, fn: fn}

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			st.onPCM(input, frameCount)
		},
	}

	mdevice, err := malgo.InitDevice(mctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = mctx.Uninit()
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("malgo", deviceID).Context("operation", "init_device").Build()
	}
	if err := mdevice.Start(); err != nil {
		mdevice.Uninit()
		_ = mctx.Uninit()
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("malgo", deviceID).Context("operation", "start_device").Build()
	}
	st.device = mdevice

	return st, nil
}

func findMalgoDevice(ctx *malgo.AllocatedContext, deviceID string) (*malgo.DeviceInfo, error) {
	infos, err := ctx.Devices(malgo.Capture)
	if err != nil {
		return nil, errors.New(err).Component("device").Category(errors.CategoryDevice).
			DeviceContext("malgo", deviceID).Context("operation", "enumerate_devices").Build()
	}
	for i := range infos {
		if infos[i].ID.String() == deviceID {
			return &infos[i], nil
		}
	}
	return nil, errors.Newf("malgo device %q not found", deviceID).
		Component("device").
		Category(errors.CategoryNotFound).
		DeviceContext("malgo", deviceID).
		Build()
}

type malgoStream struct {
	mctx       *malgo.AllocatedContext
	device     *malgo.Device
	channels   int
	sampleRate int
	fn         DataFunc

	mu      sync.Mutex
	stopped bool
}

func (s *malgoStream) Negotiated() NegotiatedConfig {
	return NegotiatedConfig{SampleRate: s.sampleRate, Channels: s.channels}
}

func (s *malgoStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	s.stopped = true

	if s.device != nil {
		_ = s.device.Stop()
		s.device.Uninit()
	}
	if s.mctx != nil {
		_ = s.mctx.Uninit()
	}
	return nil
}

// onPCM converts raw little-endian F32 frames from miniaudio into
// interleaved float32 samples and forwards them to the caller.
func (s *malgoStream) onPCM(input []byte, frameCount uint32) {
	n := int(frameCount) * s.channels
	if n == 0 || len(input) < n*4 {
		return
	}
	samples := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := uint32(input[i*4]) | uint32(input[i*4+1])<<8 | uint32(input[i*4+2])<<16 | uint32(input[i*4+3])<<24
		samples[i] = math.Float32frombits(bits)
	}
	s.fn(samples)
}
