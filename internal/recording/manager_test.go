package recording

import (
	"context"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/clipdr/studio-engine/internal/device"
	"github.com/clipdr/studio-engine/internal/wavfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStream feeds a synthesized tone to its DataFunc on a background
// goroutine until Stop is called, standing in for a real backend in
// tests so recording logic can be exercised without real audio
// hardware.
type fakeStream struct {
	negotiated device.NegotiatedConfig
	fn         device.DataFunc
	stop       chan struct{}
	stopped    chan struct{}
}

func (s *fakeStream) Negotiated() device.NegotiatedConfig { return s.negotiated }

func (s *fakeStream) Stop() error {
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	<-s.stopped
	return nil
}

// runTone pushes a mono 1kHz sine at the given amplitude in ~20ms
// batches until stopped.
func (s *fakeStream) runTone(freqHz, amplitude float64) {
	defer close(s.stopped)
	rate := s.negotiated.SampleRate
	channels := s.negotiated.Channels
	batchFrames := rate / 50
	var sampleIndex int
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			batch := make([]float32, batchFrames*channels)
			for i := 0; i < batchFrames; i++ {
				t := float64(sampleIndex+i) / float64(rate)
				v := float32(amplitude * math.Sin(2*math.Pi*freqHz*t))
				for c := 0; c < channels; c++ {
					batch[i*channels+c] = v
				}
			}
			sampleIndex += batchFrames
			s.fn(batch)
		}
	}
}

type fakeBackend struct {
	name    string
	devices []device.Info
	streams []*fakeStream
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) ListInputs(_ context.Context) ([]device.Info, error) {
	return b.devices, nil
}

func (b *fakeBackend) OpenInput(_ context.Context, _ string, cfg device.StreamConfig, fn device.DataFunc) (device.Stream, error) {
	st := &fakeStream{
		negotiated: device.NegotiatedConfig{SampleRate: cfg.SampleRate, Channels: cfg.Channels},
		fn:         fn,
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	b.streams = append(b.streams, st)
	go st.runTone(1000, 0.5)
	return st, nil
}

func TestManager_BasicRecording(t *testing.T) {
	backend := &fakeBackend{
		name: "fake",
		devices: []device.Info{
			{ID: "fake0", Description: "Fake Input", Default: true, Available: true},
		},
	}
	m := &Manager{
		backend:        backend,
		sessions:       make(map[string]*Session),
		previewStreams: make(map[string]device.Stream),
	}

	dir := t.TempDir()
	ctx := context.Background()

	_, err := m.StartSession(ctx, SessionConfig{ID: "s1", DeviceID: "fake0", OutputDir: dir})
	require.NoError(t, err)

	time.Sleep(1050 * time.Millisecond)

	res, err := m.StopSession("s1")
	require.NoError(t, err)

	assert.InDelta(t, 1.0, res.Duration.Seconds(), 0.1)
	assert.Equal(t, dir, filepath.Dir(res.Path))

	format, err := wavfile.ReadFormat(res.Path)
	require.NoError(t, err)
	assert.Equal(t, 44100, format.SampleRate)
	assert.Equal(t, 2, format.Channels)
}

func TestManager_StartSession_RejectsDuplicateID(t *testing.T) {
	backend := &fakeBackend{
		devices: []device.Info{{ID: "fake0", Default: true, Available: true}},
	}
	m := &Manager{
		backend:  backend,
		sessions: make(map[string]*Session),
	}
	dir := t.TempDir()
	ctx := context.Background()

	_, err := m.StartSession(ctx, SessionConfig{ID: "dup", DeviceID: "fake0", OutputDir: dir})
	require.NoError(t, err)

	_, err = m.StartSession(ctx, SessionConfig{ID: "dup", DeviceID: "fake0", OutputDir: dir})
	require.Error(t, err)

	_, err = m.StopSession("dup")
	require.NoError(t, err)
}

func TestManager_StartSession_GeneratesIDWhenEmpty(t *testing.T) {
	backend := &fakeBackend{
		devices: []device.Info{{ID: "fake0", Default: true, Available: true}},
	}
	m := &Manager{
		backend:  backend,
		sessions: make(map[string]*Session),
	}
	dir := t.TempDir()
	ctx := context.Background()

	_, err := m.StartSession(ctx, SessionConfig{DeviceID: "fake0", OutputDir: dir})
	require.NoError(t, err)

	m.mu.Lock()
	require.Len(t, m.sessions, 1)
	var generatedID string
	for id := range m.sessions {
		generatedID = id
	}
	m.mu.Unlock()
	assert.NotEmpty(t, generatedID)

	_, err = m.StopSession(generatedID)
	require.NoError(t, err)
}

func TestManager_StopSession_UnknownID(t *testing.T) {
	m := &Manager{sessions: make(map[string]*Session)}
	_, err := m.StopSession("nonexistent")
	require.Error(t, err)
}
