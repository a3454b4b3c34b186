package recording

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/clipdr/studio-engine/internal/config"
	"github.com/clipdr/studio-engine/internal/device"
)

// StartDevicePreviews opens a level-only stream for each device id not
// currently recording, for a VU-meter-style "listen before you record"
// UI. Ids already backing an active session are skipped.
func (m *Manager) StartDevicePreviews(ctx context.Context, ids []string) error {
	settings := config.Setting()
	streamConfig := device.StreamConfig{SampleRate: settings.Device.SampleRate, Channels: settings.Device.Channels}

	for _, id := range ids {
		m.mu.Lock()
		_, recording := m.sessions[id]
		for _, sess := range m.sessions {
			if sess.deviceID == id {
				recording = true
			}
		}
		_, already := m.previewStreams[id]
		m.mu.Unlock()
		if recording || already {
			continue
		}

		level := &atomic.Uint32{}
		stream, err := m.backend.OpenInput(ctx, id, streamConfig, func(samples []float32) {
			updateLevel(level, samples)
		})
		if err != nil {
			return err
		}

		m.mu.Lock()
		m.previewStreams[id] = stream
		m.previewLevels[id] = level
		m.mu.Unlock()
	}
	return nil
}

// GetPreviewLevels merges preview-stream and active-session peak levels
// into a single map keyed by device/session id.
func (m *Manager) GetPreviewLevels() map[string]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]float32, len(m.previewLevels)+len(m.sessions))
	for id, level := range m.previewLevels {
		out[id] = math.Float32frombits(level.Load())
	}
	for id, sess := range m.sessions {
		out[id] = loadLevel(&sess.peakLevel)
	}
	return out
}

// StopAllPreviews tears down every open preview stream.
func (m *Manager) StopAllPreviews() {
	m.mu.Lock()
	streams := m.previewStreams
	m.previewStreams = make(map[string]device.Stream)
	m.previewLevels = make(map[string]*atomic.Uint32)
	m.mu.Unlock()

	for _, s := range streams {
		_ = s.Stop()
	}
}
