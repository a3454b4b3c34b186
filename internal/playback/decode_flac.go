package playback

import (
	"os"

	"github.com/clipdr/studio-engine/internal/errors"
	"github.com/tphakala/flac"
)

// flacDecoder streams decoded PCM from a FLAC file via tphakala/flac,
// converting its native integer sample depth to float32 in [-1, 1].
type flacDecoder struct {
	file       *os.File
	stream     *flac.Stream
	sampleRate int
	channels   int
	bitsPerSample int
	scale      float32
}

func openFLACDecoder(f *os.File) (*flacDecoder, error) {
	stream, err := flac.NewSeek(f)
	if err != nil {
		return nil, errors.New(err).Component("playback").Category(errors.CategoryFormat).Build()
	}
	info := stream.Info
	bps := int(info.BitsPerSample)
	return &flacDecoder{
		file:          f,
		stream:        stream,
		sampleRate:    int(info.SampleRate),
		channels:      int(info.NChannels),
		bitsPerSample: bps,
		scale:         1.0 / float32(int64(1)<<uint(bps-1)),
	}, nil
}

func (d *flacDecoder) SampleRate() int { return d.sampleRate }
func (d *flacDecoder) Channels() int   { return d.channels }

func (d *flacDecoder) NextFrame(dst []float32) ([]float32, error) {
	frame, err := d.stream.ParseNext()
	if err != nil {
		return dst, err
	}
	nSamples := int(frame.Subframes[0].NSamples)
	for i := 0; i < nSamples; i++ {
		for ch := 0; ch < d.channels; ch++ {
			dst = append(dst, float32(frame.Subframes[ch].Samples[i])*d.scale)
		}
	}
	return dst, nil
}

func (d *flacDecoder) SeekSample(sample int64) error {
	if sample < 0 {
		sample = 0
	}
	_, err := d.stream.Seek(uint64(sample))
	if err != nil {
		return errors.New(err).Component("playback").Category(errors.CategoryFormat).Build()
	}
	return nil
}

func (d *flacDecoder) Close() error {
	_ = d.stream.Close()
	return d.file.Close()
}
