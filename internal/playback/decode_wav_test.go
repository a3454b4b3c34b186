package playback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeIntPCMWAV encodes mono int16 PCM samples to a real WAV file,
// standing in for a clip imported from outside this engine (which only
// ever writes 32-bit float WAV itself).
func writeIntPCMWAV(t *testing.T, samples []int, sampleRate, bitDepth int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "imported.wav")
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, bitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Data:           samples,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: bitDepth,
	}
	require.NoError(t, enc.Write(buf))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
	return path
}

func TestOpenWAVDecoder_16Bit(t *testing.T) {
	path := writeIntPCMWAV(t, []int{0, 16384, -32768, 32767}, 44100, 16)

	f, err := os.Open(path)
	require.NoError(t, err)
	dec, err := openWAVDecoder(f)
	require.NoError(t, err)
	defer dec.Close()

	assert.Equal(t, 44100, dec.SampleRate())
	assert.Equal(t, 1, dec.Channels())

	var got []float32
	for {
		var err error
		got, err = dec.NextFrame(got)
		if err != nil {
			break
		}
	}
	require.Len(t, got, 4)
	assert.InDelta(t, 0.0, got[0], 0.001)
	assert.InDelta(t, 0.5, got[1], 0.01)
	assert.InDelta(t, -1.0, got[2], 0.01)
	assert.InDelta(t, 1.0, got[3], 0.01)
}

func TestOpenWAVDecoder_SeekSample(t *testing.T) {
	path := writeIntPCMWAV(t, []int{0, 1000, 2000, 3000, 4000}, 8000, 16)

	f, err := os.Open(path)
	require.NoError(t, err)
	dec, err := openWAVDecoder(f)
	require.NoError(t, err)
	defer dec.Close()

	require.NoError(t, dec.SeekSample(3))

	got, err := dec.NextFrame(nil)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.InDelta(t, 3000.0/32768, got[0], 0.001)
	assert.InDelta(t, 4000.0/32768, got[1], 0.001)
}

func TestOpenWAVDecoder_RejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a-wav.bin")
	require.NoError(t, os.WriteFile(path, []byte("definitely not riff"), 0o644))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = openWAVDecoder(f)
	assert.Error(t, err)
}
