package recording

import (
	"context"
	"math"

	"github.com/clipdr/studio-engine/internal/config"
	"github.com/clipdr/studio-engine/internal/device"
	"github.com/clipdr/studio-engine/internal/errors"
	"github.com/clipdr/studio-engine/internal/ring"
)

// StartMonitoring opens a monitor stream on deviceID (or the backend's
// default when empty) that updates the global level atomic and feeds
// the pre-record buffer, so a later StartSession can prepend the
// audio the user already heard.
func (m *Manager) StartMonitoring(ctx context.Context, deviceID string) error {
	m.mu.Lock()
	if m.monitorActive {
		m.mu.Unlock()
		return errors.Newf("monitoring is already active").
			Component("recording").
			Category(errors.CategoryState).
			Build()
	}
	m.mu.Unlock()

	settings := config.Setting()
	streamConfig := device.StreamConfig{SampleRate: settings.Device.SampleRate, Channels: settings.Device.Channels}

	devices, err := m.backend.ListInputs(ctx)
	if err != nil {
		return err
	}
	sel, err := device.SelectInput(devices, deviceID)
	if err != nil {
		return err
	}

	pre := ring.NewPreRecordSeconds(
		float64(settings.Recording.PreRecordSeconds),
		streamConfig.SampleRate,
		streamConfig.Channels,
	)

	stream, err := m.backend.OpenInput(ctx, sel.Device.ID, streamConfig, func(samples []float32) {
		m.mu.Lock()
		active := m.monitorActive
		m.mu.Unlock()
		if !active {
			return
		}
		updateLevel(&m.monitorLevel, samples)
		pre.Write(samples)
	})
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.monitorStream = stream
	m.monitorActive = true
	m.preRecord = pre
	m.mu.Unlock()
	return nil
}

// StopMonitoring tears down the monitor stream and the pre-record
// buffer it was feeding.
func (m *Manager) StopMonitoring() error {
	m.mu.Lock()
	stream := m.monitorStream
	m.monitorStream = nil
	m.monitorActive = false
	m.preRecord = nil
	m.mu.Unlock()

	if stream == nil {
		return nil
	}
	return stream.Stop()
}

// MonitorLevel returns the current global monitor peak level.
func (m *Manager) MonitorLevel() float32 {
	return math.Float32frombits(m.monitorLevel.Load())
}
