package playback

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/clipdr/studio-engine/internal/errors"
)

// streamDecoder produces interleaved float32 PCM from a non-native
// source one decode unit (FLAC frame, Vorbis packet batch, WAV sample
// batch) at a time, used by the streaming-decode track source and the
// decode-cache builder.
type streamDecoder interface {
	SampleRate() int
	Channels() int
	// NextFrame appends newly decoded samples to dst and returns the
	// grown slice. Returns io.EOF once the source is exhausted, possibly
	// along with a final non-empty dst.
	NextFrame(dst []float32) ([]float32, error)
	// SeekSample repositions the decoder so the next NextFrame call
	// starts at source-frame index sample.
	SeekSample(sample int64) error
	Close() error
}

// openStreamDecoder picks a decoder by file extension.
func openStreamDecoder(path string) (streamDecoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapFileIOErr(err, path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".flac":
		dec, err := openFLACDecoder(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return dec, nil
	case ".ogg", ".oga":
		dec, err := openVorbisDecoder(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return dec, nil
	case ".wav":
		dec, err := openWAVDecoder(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return dec, nil
	default:
		_ = f.Close()
		return nil, errors.Newf("unsupported streaming audio format %q", filepath.Ext(path)).
			Component("playback").
			Category(errors.CategoryFormat).
			Build()
	}
}
