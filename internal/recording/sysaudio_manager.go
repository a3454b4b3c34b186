package recording

import (
	"context"

	"github.com/clipdr/studio-engine/internal/errors"
)

// StartSystemAudioMonitoring launches the system-audio subprocess for
// level metering of desktop output (what's currently playing), distinct
// from microphone monitoring.
func (m *Manager) StartSystemAudioMonitoring(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sysAudio != nil {
		return errors.Newf("system audio monitoring is already active").
			Component("recording").
			Category(errors.CategoryState).
			Build()
	}
	p, err := startSystemAudio(ctx)
	if err != nil {
		return err
	}
	m.sysAudio = p
	return nil
}

// StopSystemAudioMonitoring tears down the system-audio subprocess.
func (m *Manager) StopSystemAudioMonitoring() {
	m.mu.Lock()
	p := m.sysAudio
	m.sysAudio = nil
	m.mu.Unlock()
	if p != nil {
		p.Stop()
	}
}

// SystemAudioLevel returns the current system-audio peak level, or 0 if
// system audio monitoring isn't active.
func (m *Manager) SystemAudioLevel() float32 {
	m.mu.Lock()
	p := m.sysAudio
	m.mu.Unlock()
	if p == nil {
		return 0
	}
	return p.Level()
}
