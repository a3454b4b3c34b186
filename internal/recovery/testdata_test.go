package recovery

import (
	"encoding/binary"
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeRawWAV builds an 80-byte RIFF/WAVE header matching this engine's
// own writer layout (JUNK placeholder, fmt chunk, data chunk) followed
// by numSamples mono 32-bit float samples, writing riff/data size
// fields as either their correct values (valid=true) or zero
// (valid=false, simulating a crash before the header was ever patched).
func writeRawWAV(t *testing.T, path string, sampleRate, channels, numSamples int, valid bool) {
	t.Helper()

	dataBytes := numSamples * 4
	var hdr [80]byte
	copy(hdr[0:4], "RIFF")
	if valid {
		binary.LittleEndian.PutUint32(hdr[4:8], uint32(dataBytes+80-8))
	}
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "JUNK")
	binary.LittleEndian.PutUint32(hdr[16:20], 28)
	copy(hdr[48:52], "fmt ")
	binary.LittleEndian.PutUint32(hdr[52:56], 16)
	binary.LittleEndian.PutUint16(hdr[56:58], 3) // IEEE_FLOAT
	binary.LittleEndian.PutUint16(hdr[58:60], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[60:64], uint32(sampleRate))
	byteRate := uint32(sampleRate * channels * 4)
	binary.LittleEndian.PutUint32(hdr[64:68], byteRate)
	binary.LittleEndian.PutUint16(hdr[68:70], uint16(channels*4))
	binary.LittleEndian.PutUint16(hdr[70:72], 32)
	copy(hdr[72:76], "data")
	if valid {
		binary.LittleEndian.PutUint32(hdr[76:80], uint32(dataBytes))
	}

	data := make([]byte, dataBytes)
	for i := range numSamples {
		binary.LittleEndian.PutUint32(data[i*4:i*4+4], math.Float32bits(0.1))
	}

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.Write(hdr[:])
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
}
