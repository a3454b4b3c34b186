package wavfile

import (
	"encoding/binary"
	"os"

	"github.com/clipdr/studio-engine/internal/errors"
)

// Format describes the PCM layout of a WAV/RF64 file as read from its
// fmt chunk, plus the byte range of its data chunk.
type Format struct {
	SampleRate  int
	Channels    int
	BitsPerSample int
	DataOffset  int64
	DataSize    int64
	IsRF64      bool
}

// maxHeaderScan bounds how much of the file chunk-walking reads looking
// for fmt/data, matching the original reader's 4096-byte cap.
const maxHeaderScan = 4096

// ReadFormat opens path and walks its RIFF/RF64 chunks to find the fmt
// and data chunks. It supports both the hybrid RF64 layout this package
// writes and a plain RIFF/WAVE file produced by anything else.
func ReadFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return Format{}, errors.New(err).
			Component("wavfile").
			Category(errors.CategoryFileIO).
			Context("operation", "open").
			Build()
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return Format{}, errors.New(err).
			Component("wavfile").
			Category(errors.CategoryFileIO).
			Context("operation", "stat").
			Build()
	}
	fileSize := fi.Size()
	if fileSize < 12 {
		return Format{}, errors.Newf("file too small to be a WAV file").
			Component("wavfile").
			Category(errors.CategoryFormat).
			Build()
	}

	scanLen := int64(maxHeaderScan)
	if fileSize < scanLen {
		scanLen = fileSize
	}
	header := make([]byte, scanLen)
	if _, err := f.ReadAt(header, 0); err != nil {
		return Format{}, errors.New(err).
			Component("wavfile").
			Category(errors.CategoryFileIO).
			Context("operation", "read_header").
			Build()
	}

	isRF64 := false
	switch string(header[0:4]) {
	case "RIFF":
	case "RF64":
		isRF64 = true
	default:
		return Format{}, errors.Newf("not a RIFF or RF64 file").
			Component("wavfile").
			Category(errors.CategoryFormat).
			Build()
	}
	if string(header[8:12]) != "WAVE" {
		return Format{}, errors.Newf("missing WAVE signature").
			Component("wavfile").
			Category(errors.CategoryFormat).
			Build()
	}

	var ds64DataSize uint64
	haveDs64 := false

	result := Format{IsRF64: isRF64}
	pos := 12
	for pos+8 <= len(header) {
		chunkID := string(header[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(header[pos+4 : pos+8]))

		switch chunkID {
		case "ds64":
			if pos+8+28 <= len(header) {
				ds64DataSize = binary.LittleEndian.Uint64(header[pos+16 : pos+24])
				haveDs64 = true
			}
		case "fmt ":
			if pos+8+16 <= len(header) {
				fmtBody := header[pos+8 : pos+8+16]
				result.Channels = int(binary.LittleEndian.Uint16(fmtBody[2:4]))
				result.SampleRate = int(binary.LittleEndian.Uint32(fmtBody[4:8]))
				result.BitsPerSample = int(binary.LittleEndian.Uint16(fmtBody[14:16]))
			}
		case "data":
			result.DataOffset = int64(pos + 8)
			if isRF64 && haveDs64 {
				result.DataSize = int64(ds64DataSize)
			} else {
				result.DataSize = int64(chunkSize)
			}
			if result.SampleRate == 0 {
				return Format{}, errors.Newf("data chunk found before fmt chunk").
					Component("wavfile").
					Category(errors.CategoryFormat).
					Build()
			}
			return result, nil
		}

		pos += 8 + chunkSize
		if chunkSize%2 != 0 {
			pos++ // RIFF word-alignment padding
		}
	}

	return Format{}, errors.Newf("could not locate data chunk").
		Component("wavfile").
		Category(errors.CategoryFormat).
		Build()
}

// EstimateDuration returns the playable duration of a WAV/RF64 file in
// seconds, using the fmt chunk's bits per sample (4 bytes per sample when
// the fmt chunk reports 0).
func EstimateDuration(path string) (float64, error) {
	format, err := ReadFormat(path)
	if err != nil {
		return 0, err
	}
	if format.SampleRate == 0 || format.Channels == 0 {
		return 0, errors.Newf("cannot estimate duration without sample rate and channel count").
			Component("wavfile").
			Category(errors.CategoryFormat).
			Build()
	}
	bytesPerSample := format.BitsPerSample / 8
	if bytesPerSample == 0 {
		bytesPerSample = 4
	}
	totalSamples := format.DataSize / int64(bytesPerSample)
	samplesPerChannel := totalSamples / int64(format.Channels)
	return float64(samplesPerChannel) / float64(format.SampleRate), nil
}

// IsHeaderValid reports whether a file written by Writer has a
// recoverable header: RF64 files are always valid since their sizes
// live in the ds64 chunk, while a plain RIFF file with a zero data size
// means the process died before ever patching the header.
func IsHeaderValid(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var header [headerSize]byte
	if _, err := f.ReadAt(header[:], 0); err != nil {
		return false
	}

	magic := string(header[0:4])
	if magic != "RIFF" && magic != "RF64" {
		return false
	}
	if magic == "RF64" {
		return true
	}
	dataSize := binary.LittleEndian.Uint32(header[76:80])
	return dataSize != 0
}
