package playback

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/go-audio/wav"

	"github.com/clipdr/studio-engine/internal/errors"
)

// wavDecodeBatch bounds how many interleaved samples each NextFrame call
// reads from the source file.
const wavDecodeBatch = 4096

// wavDecoder streams decoded PCM from an integer-PCM WAV file via
// go-audio/wav, converting 8/16/24/32-bit source samples to float32 in
// [-1, 1]. Native 32-bit float WAVs never reach this decoder: source.go
// mmaps those directly. This path exists for imported clips recorded by
// something other than this engine.
type wavDecoder struct {
	file         *os.File
	pcmStart     int64
	srcBitDepth  int
	srcFrameSize int64
	sampleRate   int
	channels     int
	scratch      []byte
}

func openWAVDecoder(f *os.File) (*wavDecoder, error) {
	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, errors.Newf("not a valid WAV file").Component("playback").Category(errors.CategoryFormat).Build()
	}
	if err := dec.FwdToPCM(); err != nil {
		return nil, errors.New(err).Component("playback").Category(errors.CategoryFormat).Build()
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.BitDepth)
	if channels == 0 || bitDepth == 0 {
		return nil, errors.Newf("WAV file missing channel or bit depth info").Component("playback").Category(errors.CategoryFormat).Build()
	}
	srcFrameSize := int64(channels) * int64(bitDepth) / 8

	pcmStart, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.New(err).Component("playback").Category(errors.CategoryFileIO).Build()
	}

	return &wavDecoder{
		file:         f,
		pcmStart:     pcmStart,
		srcBitDepth:  bitDepth,
		srcFrameSize: srcFrameSize,
		sampleRate:   int(dec.SampleRate),
		channels:     channels,
		scratch:      make([]byte, wavDecodeBatch*channels*bitDepth/8),
	}, nil
}

func (d *wavDecoder) SampleRate() int { return d.sampleRate }
func (d *wavDecoder) Channels() int   { return d.channels }

func (d *wavDecoder) NextFrame(dst []float32) ([]float32, error) {
	srcBytesPerSample := d.srcBitDepth / 8
	n, err := d.file.Read(d.scratch)
	if n == 0 {
		if err == nil {
			err = io.EOF
		}
		return dst, err
	}

	samples := n / srcBytesPerSample
	for i := 0; i < samples; i++ {
		off := i * srcBytesPerSample
		dst = append(dst, decodeWAVSample(d.scratch[off:], d.srcBitDepth))
	}

	if err == io.ErrUnexpectedEOF {
		err = nil
	}
	return dst, err
}

// decodeWAVSample converts one little-endian PCM sample of the given bit
// depth into float32 in [-1, 1]. 8-bit WAV samples are unsigned; every
// other depth is signed, matching the canonical WAV PCM layout.
func decodeWAVSample(b []byte, bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return (float32(b[0]) - 128) / 128
	case 16:
		return float32(int16(binary.LittleEndian.Uint16(b))) / 32768
	case 24:
		s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if s&0x800000 != 0 {
			s |= ^0xFFFFFF
		}
		return float32(s) / 8388608
	case 32:
		return float32(int32(binary.LittleEndian.Uint32(b))) / 2147483648
	default:
		return 0
	}
}

func (d *wavDecoder) SeekSample(sample int64) error {
	if sample < 0 {
		sample = 0
	}
	_, err := d.file.Seek(d.pcmStart+sample*d.srcFrameSize, io.SeekStart)
	if err != nil {
		return errors.New(err).Component("playback").Category(errors.CategoryFileIO).Build()
	}
	return nil
}

func (d *wavDecoder) Close() error {
	return d.file.Close()
}
