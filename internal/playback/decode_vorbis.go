package playback

import (
	"os"

	"github.com/clipdr/studio-engine/internal/errors"
	"github.com/jfreymuth/oggvorbis"
)

// vorbisDecodeBatch bounds how many interleaved samples each NextFrame
// call reads from the underlying oggvorbis.Reader.
const vorbisDecodeBatch = 4096

// vorbisDecoder streams decoded PCM from an Ogg/Vorbis file via
// jfreymuth/oggvorbis, which already decodes to float32 in [-1, 1].
type vorbisDecoder struct {
	file       *os.File
	reader     *oggvorbis.Reader
	sampleRate int
	channels   int
	scratch    []float32
}

func openVorbisDecoder(f *os.File) (*vorbisDecoder, error) {
	reader, err := oggvorbis.NewReader(f)
	if err != nil {
		return nil, errors.New(err).Component("playback").Category(errors.CategoryFormat).Build()
	}
	return &vorbisDecoder{
		file:       f,
		reader:     reader,
		sampleRate: reader.SampleRate(),
		channels:   reader.Channels(),
		scratch:    make([]float32, vorbisDecodeBatch*reader.Channels()),
	}, nil
}

func (d *vorbisDecoder) SampleRate() int { return d.sampleRate }
func (d *vorbisDecoder) Channels() int   { return d.channels }

func (d *vorbisDecoder) NextFrame(dst []float32) ([]float32, error) {
	n, err := d.reader.Read(d.scratch)
	if n > 0 {
		dst = append(dst, d.scratch[:n]...)
	}
	return dst, err
}

func (d *vorbisDecoder) SeekSample(sample int64) error {
	if sample < 0 {
		sample = 0
	}
	d.reader.SetPosition(sample)
	return nil
}

func (d *vorbisDecoder) Close() error {
	return d.file.Close()
}
