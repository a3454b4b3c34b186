package wavfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestWAV(t *testing.T, sampleRate, channels int, samples []float32) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	w, err := NewWriter(path, sampleRate, channels)
	require.NoError(t, err)
	require.NoError(t, w.WriteSamples(samples))
	require.NoError(t, w.Finalize())
	return path
}

func TestReadFormat_RoundTripsWriterOutput(t *testing.T) {
	samples := make([]float32, 2000)
	for i := range samples {
		samples[i] = float32(i%100) / 100
	}
	path := writeTestWAV(t, 44100, 2, samples)

	format, err := ReadFormat(path)
	require.NoError(t, err)
	assert.Equal(t, 44100, format.SampleRate)
	assert.Equal(t, 2, format.Channels)
	assert.Equal(t, 32, format.BitsPerSample)
	assert.EqualValues(t, headerSize, format.DataOffset)
	assert.EqualValues(t, len(samples)*4, format.DataSize)
	assert.False(t, format.IsRF64)
}

func TestReadFormat_ReadsUpgradedRF64File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.wav")
	w, err := NewWriter(path, 48000, 1)
	require.NoError(t, err)

	w.dataBytesWritten = rf64UpgradeThreshold - 4
	require.NoError(t, w.WriteSample(0.5))
	require.True(t, w.IsRF64())
	require.NoError(t, w.Finalize())

	format, err := ReadFormat(path)
	require.NoError(t, err)
	assert.True(t, format.IsRF64)
	assert.EqualValues(t, w.dataBytesWritten, format.DataSize)
	assert.Equal(t, 48000, format.SampleRate)
	assert.Equal(t, 1, format.Channels)
}

func TestReadFormat_RejectsNonWAVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notwav.bin")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file at all"), 0o644))

	_, err := ReadFormat(path)
	require.Error(t, err)
}

func TestReadFormat_RejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))

	_, err := ReadFormat(path)
	require.Error(t, err)
}

func TestEstimateDuration(t *testing.T) {
	sampleRate := 1000
	samples := make([]float32, sampleRate*2) // 2 seconds mono
	path := writeTestWAV(t, sampleRate, 1, samples)

	dur, err := EstimateDuration(path)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, dur, 1e-6)
}

func TestIsHeaderValid(t *testing.T) {
	samples := []float32{0.1, 0.2, 0.3}
	path := writeTestWAV(t, 44100, 1, samples)
	assert.True(t, IsHeaderValid(path))

	unpatched := filepath.Join(t.TempDir(), "unpatched.wav")
	w, err := NewWriter(unpatched, 44100, 1)
	require.NoError(t, err)
	require.NoError(t, w.buf.Flush())
	assert.False(t, IsHeaderValid(unpatched))
	require.NoError(t, w.file.Close())
}

func TestIsHeaderValid_MissingFile(t *testing.T) {
	assert.False(t, IsHeaderValid(filepath.Join(t.TempDir(), "missing.wav")))
}
