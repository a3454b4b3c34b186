// Package recording implements the capture side of the engine: a
// manager that owns device backends, recording sessions, device
// preview streams, and the always-on monitor/pre-record path, plus the
// per-session writer goroutines that drain ring buffers to WAV/RF64
// files on disk.
package recording

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/clipdr/studio-engine/internal/config"
	"github.com/clipdr/studio-engine/internal/device"
	"github.com/clipdr/studio-engine/internal/errors"
	"github.com/clipdr/studio-engine/internal/logging"
	"github.com/clipdr/studio-engine/internal/ring"
)

// DefaultSessionID is used by the legacy single-session convenience
// wrapper (StartRecording/StopRecording without an explicit id).
const DefaultSessionID = "default"

var managerLogger = logging.ForService("recording-manager")

// ringCaptureSeconds sizes each session's ring buffer generously enough
// that the writer goroutine's 5ms poll loop never has to fear an
// overrun under normal drain latency.
const ringCaptureSeconds = 2

// Manager owns every recording/monitoring/preview resource. All map and
// slot mutation happens under mu; audio goroutines only ever touch the
// atomics and buffers handed to them at start, never the maps
// themselves.
type Manager struct {
	mu sync.Mutex

	backend device.Backend

	sessions map[string]*Session

	monitorStream device.Stream
	monitorActive bool
	monitorLevel  atomic.Uint32

	previewStreams map[string]device.Stream
	previewLevels  map[string]*atomic.Uint32

	preRecord *ring.PreRecord

	sysAudio *systemAudioProcess
}

// NewManager resolves a device backend per cfg.Device.Backend and
// returns a ready-to-use Manager.
func NewManager(ctx context.Context) (*Manager, error) {
	cfg := config.Setting()
	backend, err := device.Resolve(ctx, cfg.Device.Backend)
	if err != nil {
		return nil, err
	}
	return &Manager{
		backend:        backend,
		sessions:       make(map[string]*Session),
		previewStreams: make(map[string]device.Stream),
		previewLevels:  make(map[string]*atomic.Uint32),
	}, nil
}

// ListDevices enumerates input devices on the resolved backend.
func (m *Manager) ListDevices(ctx context.Context) ([]device.Info, error) {
	return m.backend.ListInputs(ctx)
}

// StartSession opens a new recording session. It fails if id is already
// active. On success it returns the output file path the session will
// write to.
func (m *Manager) StartSession(ctx context.Context, cfg SessionConfig) (string, error) {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}

	m.mu.Lock()
	if _, exists := m.sessions[cfg.ID]; exists {
		m.mu.Unlock()
		return "", errors.Newf("session %q is already active", cfg.ID).
			Component("recording").
			Category(errors.CategoryState).
			Build()
	}
	m.mu.Unlock()

	settings := config.Setting()
	wantRate := settings.Device.SampleRate
	wantChannels := settings.Device.Channels

	devices, err := m.backend.ListInputs(ctx)
	if err != nil {
		return "", err
	}
	sel, err := device.SelectInput(devices, cfg.DeviceID)
	if err != nil {
		return "", err
	}
	if sel.Fallback {
		managerLogger.Warn("recording device fallback", "warning", sel.Warning)
	}

	outputPath := sessionOutputPath(cfg.OutputDir, sel.Device.ID)

	sess := &Session{
		id:              cfg.ID,
		deviceID:        sel.Device.ID,
		outputDir:       cfg.OutputDir,
		basePath:        outputPath,
		channelMode:     cfg.ChannelMode,
		largeFileFormat: cfg.LargeFileFormat,
		done:            make(chan writerResult, 1),
	}
	sess.active.Store(true)

	// Sized from the requested config, not the negotiated one: the
	// backend may start invoking the data callback before OpenInput
	// returns, so the ring must exist before the call, not after.
	sess.ring = ring.NewBuffer(ringCaptureSeconds*wantRate*wantChannels, wantChannels)

	streamConfig := device.StreamConfig{SampleRate: wantRate, Channels: wantChannels}
	stream, err := m.backend.OpenInput(ctx, sel.Device.ID, streamConfig, func(samples []float32) {
		sess.ring.Write(samples)
		updateLevel(&sess.peakLevel, samples)
	})
	if err != nil {
		return "", err
	}
	sess.stream = stream
	sess.negotiated = stream.Negotiated()

	m.mu.Lock()
	pre := m.preRecord
	m.mu.Unlock()
	if pre != nil && pre.SampleRate() == sess.negotiated.SampleRate && pre.Channels() == sess.negotiated.Channels {
		preAudio, seconds := pre.Drain()
		if len(preAudio) > 0 {
			sess.ring.Write(preAudio)
			sess.preRecordSec = seconds
			pre.Reset()
		}
	}

	go runWriter(sess)

	m.mu.Lock()
	m.sessions[cfg.ID] = sess
	m.mu.Unlock()

	return outputPath, nil
}

// StartRecording is the legacy single-session convenience wrapper.
func (m *Manager) StartRecording(ctx context.Context, deviceID, outputDir string, channelMode ChannelMode, format LargeFileFormat) (string, error) {
	return m.StartSession(ctx, SessionConfig{
		ID:              DefaultSessionID,
		DeviceID:        deviceID,
		OutputDir:       outputDir,
		ChannelMode:     channelMode,
		LargeFileFormat: format,
	})
}

// StopSession stops and removes a session, joins its writer, and
// returns the finalized result.
func (m *Manager) StopSession(id string) (SessionResult, error) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return SessionResult{}, errors.Newf("session %q is not active", id).
			Component("recording").
			Category(errors.CategoryNotFound).
			Build()
	}

	return m.finishSession(sess)
}

func (m *Manager) finishSession(sess *Session) (SessionResult, error) {
	sess.active.Store(false)
	if sess.stream != nil {
		_ = sess.stream.Stop()
	}
	sess.ring.Stop()

	res := <-sess.done
	if res.err != nil {
		return SessionResult{}, res.err
	}
	if res.writer != nil {
		if err := res.writer.Finalize(); err != nil {
			managerLogger.Error("failed to finalize recording", "session", sess.id, "error", err)
		} else if err := patchHeaderIfNeeded(res.finalSegmentPath); err != nil {
			managerLogger.Warn("safety-net header patch failed", "path", res.finalSegmentPath, "error", err)
		}
	}

	if sess.channelMode == ChannelModeMono && len(res.completedSegs) == 0 && sess.negotiated.Channels == 2 {
		if err := convertToMono(res.finalSegmentPath, sess.negotiated.SampleRate); err != nil {
			managerLogger.Error("stereo-to-mono conversion failed", "path", res.finalSegmentPath, "error", err)
		}
	}

	duration := time.Duration(0)
	if sess.negotiated.SampleRate > 0 && sess.negotiated.Channels > 0 {
		perChannel := res.totalSamples / uint64(sess.negotiated.Channels)
		duration = time.Duration(float64(perChannel) / float64(sess.negotiated.SampleRate) * float64(time.Second))
	}

	return SessionResult{
		Path:             res.finalSegmentPath,
		Duration:         duration,
		SampleRate:       sess.negotiated.SampleRate,
		Channels:         sess.negotiated.Channels,
		ExtraSegments:    res.completedSegs,
		PreRecordSeconds: sess.preRecordSec,
		StartOffsetUs:    sess.startOffset,
	}, nil
}

// StartMultiRecording starts every config against one shared start
// instant, recording each session's StartOffsetUs as elapsed time since
// that instant so downstream consumers can realign multi-device takes.
func (m *Manager) StartMultiRecording(ctx context.Context, configs []SessionConfig) ([]string, error) {
	start := time.Now()
	paths := make([]string, 0, len(configs))
	for _, cfg := range configs {
		if cfg.ID == "" {
			cfg.ID = uuid.NewString()
		}
		path, err := m.StartSession(ctx, cfg)
		if err != nil {
			return paths, err
		}
		m.mu.Lock()
		if sess, ok := m.sessions[cfg.ID]; ok {
			sess.startOffset = time.Since(start).Microseconds()
		}
		m.mu.Unlock()
		paths = append(paths, path)
	}
	return paths, nil
}

// StopAllRecordings stops every active session.
func (m *Manager) StopAllRecordings() (map[string]SessionResult, error) {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	results := make(map[string]SessionResult, len(ids))
	var firstErr error
	for _, id := range ids {
		res, err := m.StopSession(id)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		results[id] = res
	}
	return results, firstErr
}

// CancelRecording stops a session and deletes all files it produced
// instead of returning them, for aborted takes the caller doesn't want
// kept.
func (m *Manager) CancelRecording(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if !ok {
		return errors.Newf("session %q is not active", id).
			Component("recording").
			Category(errors.CategoryNotFound).
			Build()
	}

	res, err := m.finishSession(sess)
	if err != nil {
		return err
	}
	removeQuietly(res.Path)
	for _, seg := range res.ExtraSegments {
		removeQuietly(seg)
	}
	return nil
}

// GetSessionLevels returns the current peak level for every active
// session, keyed by id.
func (m *Manager) GetSessionLevels() map[string]float32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]float32, len(m.sessions))
	for id, sess := range m.sessions {
		out[id] = loadLevel(&sess.peakLevel)
	}
	return out
}

func loadLevel(level *atomic.Uint32) float32 {
	return math.Float32frombits(level.Load())
}

// IsMonitoring reports whether a monitor stream is currently open.
func (m *Manager) IsMonitoring() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.monitorActive
}

func sessionOutputPath(dir, deviceID string) string {
	safe := sanitizeForFilename(deviceID)
	timestamp := time.Now().Format("20060102_150405")
	if safe == "" {
		return fmt.Sprintf("%s/recording_%s.wav", dir, timestamp)
	}
	return fmt.Sprintf("%s/recording_%s_%s.wav", dir, timestamp, safe)
}

func sanitizeForFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

func updateLevel(level *atomic.Uint32, samples []float32) {
	var peak float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	level.Store(math.Float32bits(peak))
}
