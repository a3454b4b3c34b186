package playback

import (
	"math"
	"runtime"
	"sync"

	"github.com/clipdr/studio-engine/internal/errors"
	"github.com/gen2brain/malgo"
)

// OutputStream drives an Engine's OutputCallback from a real playback
// device via miniaudio (ALSA/WASAPI/CoreAudio depending on platform).
// Mirrors internal/device's malgo capture wiring, but for output: kept
// separate because device.Backend's ListInputs/OpenInput surface is
// capture-only, and this engine's output device never needs enumeration
// or fallback selection the way capture inputs do.
type OutputStream struct {
	mctx   *malgo.AllocatedContext
	device *malgo.Device

	mu      sync.Mutex
	stopped bool
}

// OpenOutput starts a playback device at sampleRate/channels, feeding it
// from engine.OutputCallback.
func OpenOutput(engine *Engine, sampleRate, channels int) (*OutputStream, error) {
	backend, err := platformOutputBackend()
	if err != nil {
		return nil, err
	}

	mctx, err := malgo.InitContext([]malgo.Backend{backend}, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, errors.New(err).Component("playback").Category(errors.CategoryDevice).
			Context("operation", "init_context").Build()
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(channels)
	deviceConfig.SampleRate = uint32(sampleRate)

	callbacks := malgo.DeviceCallbacks{
		Data: func(output, _ []byte, frameCount uint32) {
			n := int(frameCount) * channels
			buf := make([]float32, n)
			engine.OutputCallback(buf)
			for i, v := range buf {
				bits := math.Float32bits(v)
				output[i*4] = byte(bits)
				output[i*4+1] = byte(bits >> 8)
				output[i*4+2] = byte(bits >> 16)
				output[i*4+3] = byte(bits >> 24)
			}
		},
	}

	mdevice, err := malgo.InitDevice(mctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = mctx.Uninit()
		return nil, errors.New(err).Component("playback").Category(errors.CategoryDevice).
			Context("operation", "init_device").Build()
	}
	if err := mdevice.Start(); err != nil {
		mdevice.Uninit()
		_ = mctx.Uninit()
		return nil, errors.New(err).Component("playback").Category(errors.CategoryDevice).
			Context("operation", "start_device").Build()
	}

	return &OutputStream{mctx: mctx, device: mdevice}, nil
}

// Stop halts the output device. Safe to call more than once.
func (s *OutputStream) Stop() error {
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

func platformOutputBackend() (malgo.Backend, error) {
	switch runtime.GOOS {
	case "linux":
		return malgo.BackendAlsa, nil
	case "windows":
		return malgo.BackendWasapi, nil
	case "darwin":
		return malgo.BackendCoreaudio, nil
	default:
		return malgo.BackendNull, errors.Newf("unsupported operating system %q for playback output", runtime.GOOS).
			Component("playback").
			Category(errors.CategoryDevice).
			Build()
	}
}
