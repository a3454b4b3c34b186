package recording

import (
	"bufio"
	"encoding/binary"
	"math"
	"os"

	"github.com/clipdr/studio-engine/internal/errors"
	"github.com/clipdr/studio-engine/internal/wavfile"
)

// monoReadChunkFrames bounds how many stereo frames convertToMono reads
// per pass, keeping memory use constant regardless of file size.
const monoReadChunkFrames = 65536

// convertToMono streams a single-segment stereo recording down to mono
// in place, averaging each sample pair, so a session explicitly
// requesting mono output doesn't pay stereo disk/bandwidth cost when
// only one segment was ever produced.
func convertToMono(path string, sampleRate int) error {
	format, err := wavfile.ReadFormat(path)
	if err != nil {
		return err
	}
	if format.Channels != 2 {
		return nil
	}

	tmpPath := path + ".mono.tmp.wav"
	w, err := wavfile.NewWriter(tmpPath, sampleRate, 1)
	if err != nil {
		return err
	}

	src, err := os.Open(path)
	if err != nil {
		_ = w.Finalize()
		_ = os.Remove(tmpPath)
		return errors.New(err).Component("recording").Category(errors.CategoryFileIO).Build()
	}
	defer src.Close()

	if _, err := src.Seek(format.DataOffset, 0); err != nil {
		_ = w.Finalize()
		_ = os.Remove(tmpPath)
		return errors.New(err).Component("recording").Category(errors.CategoryFileIO).Build()
	}

	reader := bufio.NewReaderSize(src, monoReadChunkFrames*8)
	buf := make([]byte, 8) // one stereo frame: two f32 samples
	for {
		n, rerr := readFull(reader, buf)
		if n == 8 {
			left := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))
			right := math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8]))
			mono := (left + right) * 0.5
			if werr := w.WriteSample(mono); werr != nil {
				_ = w.Finalize()
				_ = os.Remove(tmpPath)
				return werr
			}
		} else if n == 4 {
			// Odd trailing sample: write it through unchanged.
			left := math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4]))
			if werr := w.WriteSample(left); werr != nil {
				_ = w.Finalize()
				_ = os.Remove(tmpPath)
				return werr
			}
		}
		if rerr != nil {
			break
		}
	}

	if err := w.Finalize(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return errors.New(err).Component("recording").Category(errors.CategoryFileIO).Build()
	}
	return nil
}

// readFull reads up to len(buf) bytes, returning what it got even on
// EOF mid-read (for the final odd sample case).
func readFull(r *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
