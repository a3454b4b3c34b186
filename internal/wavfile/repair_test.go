package wavfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeCrashedWAV writes samples and flushes them to disk but never
// patches the header or calls Finalize, simulating a process that died
// mid-recording: the file has real sample data but a riff/data size of
// zero.
func writeCrashedWAV(t *testing.T, path string, sampleRate, channels int, samples []float32) {
	t.Helper()
	w, err := NewWriter(path, sampleRate, channels)
	require.NoError(t, err)
	require.NoError(t, w.WriteSamples(samples))
	require.NoError(t, w.buf.Flush())
	require.NoError(t, w.file.Close())
}

func TestRepairHeader_FixesZeroSizedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording_crashed.wav")
	samples := make([]float32, 4410) // 0.1s mono at 44100Hz
	for i := range samples {
		samples[i] = 0.25
	}
	writeCrashedWAV(t, path, 44100, 1, samples)

	assert.False(t, IsHeaderValid(path), "freshly crashed file should have an invalid header")

	require.NoError(t, RepairHeader(path))

	assert.True(t, IsHeaderValid(path), "header should be valid after repair")

	format, err := ReadFormat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(samples)*4), format.DataSize)

	duration, err := EstimateDuration(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.1, duration, 0.001)
}

func TestRepairHeader_NoopOnAlreadyValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recording_clean.wav")
	w, err := NewWriter(path, 44100, 1)
	require.NoError(t, err)
	samples := []float32{0.1, 0.2, 0.3}
	require.NoError(t, w.WriteSamples(samples))
	require.NoError(t, w.Finalize())

	require.NoError(t, RepairHeader(path))
	assert.True(t, IsHeaderValid(path))

	format, err := ReadFormat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(samples)*4), format.DataSize)
}
