package wavfile

import (
	"encoding/binary"
	"math"
	"os"

	"github.com/clipdr/studio-engine/internal/errors"
)

// RepairHeader patches a WAV file's RIFF and data chunk size fields
// from its actual on-disk size. It is the crash-recovery counterpart
// to Writer's periodic in-process patching: when a recording process
// dies before ever writing a final header, the file is left with the
// zero (or stale) sizes NewWriter wrote at creation, and this is what
// reconstructs them from nothing but the bytes already on disk.
// RF64 files are never patched: their sizes live in the ds64 chunk,
// which this function does not touch.
func RepairHeader(path string) error {
	format, err := ReadFormat(path)
	if err != nil {
		return err
	}
	if format.IsRF64 {
		return nil
	}

	fi, err := os.Stat(path)
	if err != nil {
		return errors.New(err).
			Component("wavfile").
			Category(errors.CategoryFileIO).
			Context("operation", "stat").
			Build()
	}
	fileSize := fi.Size()

	actualDataSize := fileSize - format.DataOffset
	actualRiffSize := fileSize - 8
	if actualDataSize < 0 {
		actualDataSize = 0
	}

	expectedRiff := capUint32(actualRiffSize)
	expectedData := capUint32(actualDataSize)

	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		return errors.New(err).
			Component("wavfile").
			Category(errors.CategoryFileIO).
			Context("operation", "open_for_patch").
			Build()
	}
	defer f.Close()

	var riffBuf [4]byte
	binary.LittleEndian.PutUint32(riffBuf[:], expectedRiff)
	if _, err := f.WriteAt(riffBuf[:], 4); err != nil {
		return errors.New(err).
			Component("wavfile").
			Category(errors.CategoryFileIO).
			Context("operation", "patch_riff_size").
			Build()
	}

	var dataBuf [4]byte
	binary.LittleEndian.PutUint32(dataBuf[:], expectedData)
	if _, err := f.WriteAt(dataBuf[:], format.DataOffset-4); err != nil {
		return errors.New(err).
			Component("wavfile").
			Category(errors.CategoryFileIO).
			Context("operation", "patch_data_size").
			Build()
	}

	return nil
}

func capUint32(v int64) uint32 {
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	if v < 0 {
		return 0
	}
	return uint32(v)
}
