// Package wavfile writes 32-bit float PCM as a hybrid RIFF/WAVE ↔ RF64
// file: a standard WAV that transparently upgrades to RF64 in place if
// the data grows past the 4GiB the classic format can address, so long
// recordings never corrupt a header built for a smaller file.
package wavfile

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"
	"os"
	"time"

	"github.com/clipdr/studio-engine/internal/errors"
)

// headerSize is the fixed 80-byte header every file starts with: RIFF
// magic, a 28-byte JUNK placeholder (upgraded to ds64 if needed), the
// fmt chunk, and the data chunk header.
const headerSize = 80

// rf64UpgradeThreshold is the data-byte count at which the writer
// upgrades from RIFF/WAVE to RF64, chosen with headroom below the
// 4GiB (0xFFFFFFFF) limit a plain uint32 data-size field can hold.
const rf64UpgradeThreshold = 0xFFFF_F000

// DefaultHeaderPatchInterval matches the original capture pipeline's
// periodic header patch cadence, keeping an in-progress recording
// recoverable if the process dies mid-write.
const DefaultHeaderPatchInterval = 2 * time.Second

// Writer streams 32-bit float PCM to a WAV/RF64 hybrid file. It is not
// safe for concurrent use; callers serialize writes through one
// goroutine (the recording writer).
type Writer struct {
	file     *os.File
	buf      *bufio.Writer
	channels int
	sampleRate int

	dataBytesWritten uint64
	sampleCount      uint64
	isRF64           bool

	patchInterval  time.Duration
	lastPatch      time.Time
	nowFunc        func() time.Time
}

// NewWriter creates path and writes the initial 80-byte header. sampleRate
// and channels describe the PCM that will be written via WriteSample.
func NewWriter(path string, sampleRate, channels int) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.New(err).
			Component("wavfile").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Context("operation", "create").
			Build()
	}

	w := &Writer{
		file:          f,
		buf:           bufio.NewWriterSize(f, 64*1024),
		channels:      channels,
		sampleRate:    sampleRate,
		patchInterval: DefaultHeaderPatchInterval,
		lastPatch:     time.Now(),
		nowFunc:       time.Now,
	}

	if err := w.writeInitialHeader(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) writeInitialHeader() error {
	byteRate := uint32(w.sampleRate * w.channels * 4)
	blockAlign := uint16(w.channels * 4)

	var hdr [headerSize]byte
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], 0) // placeholder riff_size
	copy(hdr[8:12], "WAVE")

	copy(hdr[12:16], "JUNK")
	binary.LittleEndian.PutUint32(hdr[16:20], 28) // JUNK payload size
	// hdr[20:48] stays zero — reserved for the ds64 fields on upgrade

	copy(hdr[48:52], "fmt ")
	binary.LittleEndian.PutUint32(hdr[52:56], 16)
	binary.LittleEndian.PutUint16(hdr[56:58], 3) // IEEE_FLOAT
	binary.LittleEndian.PutUint16(hdr[58:60], uint16(w.channels))
	binary.LittleEndian.PutUint32(hdr[60:64], uint32(w.sampleRate))
	binary.LittleEndian.PutUint32(hdr[64:68], byteRate)
	binary.LittleEndian.PutUint16(hdr[68:70], blockAlign)
	binary.LittleEndian.PutUint16(hdr[70:72], 32) // bits per sample

	copy(hdr[72:76], "data")
	binary.LittleEndian.PutUint32(hdr[76:80], 0) // placeholder data_size

	_, err := w.buf.Write(hdr[:])
	if err != nil {
		return errors.New(err).
			Component("wavfile").
			Category(errors.CategoryFileIO).
			Context("operation", "write_header").
			Build()
	}
	return nil
}

// WriteSample appends one float32 PCM sample, upgrading to RF64 and
// patching the header as needed.
func (w *Writer) WriteSample(s float32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(s))
	if _, err := w.buf.Write(buf[:]); err != nil {
		return errors.New(err).
			Component("wavfile").
			Category(errors.CategoryFileIO).
			Context("operation", "write_sample").
			Build()
	}
	w.dataBytesWritten += 4
	w.sampleCount++

	if !w.isRF64 && w.dataBytesWritten >= rf64UpgradeThreshold {
		if err := w.upgradeToRF64(); err != nil {
			return err
		}
	}
	if w.nowFunc().Sub(w.lastPatch) >= w.patchInterval {
		if err := w.PatchHeader(); err != nil {
			return err
		}
	}
	return nil
}

// WriteSamples is a convenience wrapper around WriteSample for a batch
// of interleaved samples.
func (w *Writer) WriteSamples(samples []float32) error {
	for _, s := range samples {
		if err := w.WriteSample(s); err != nil {
			return err
		}
	}
	return nil
}

// BytesWritten returns the number of PCM data bytes written so far.
// The recording writer keeps its own per-segment byte count for the
// segment-roll cap and does not call this.
func (w *Writer) BytesWritten() uint64 { return w.dataBytesWritten }

// IsRF64 reports whether the file has upgraded past the classic WAV
// 4GiB limit.
func (w *Writer) IsRF64() bool { return w.isRF64 }

// upgradeToRF64 seeks back and converts the RIFF/JUNK header in place
// to an RF64/ds64 header, preserving the current write position
// (and the buffered-but-unflushed tail) exactly as the original
// Rust implementation does.
func (w *Writer) upgradeToRF64() error {
	if err := w.buf.Flush(); err != nil {
		return w.ioErr(err, "flush_before_upgrade")
	}
	current, err := w.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return w.ioErr(err, "seek_current")
	}

	riffSize := w.dataBytesWritten + (headerSize - 8)
	dataSize := w.dataBytesWritten
	frameCount := w.sampleCount / uint64(w.channels)

	if _, err := w.file.WriteAt([]byte("RF64"), 0); err != nil {
		return w.ioErr(err, "write_rf64_magic")
	}
	var u32buf [4]byte
	binary.LittleEndian.PutUint32(u32buf[:], 0xFFFFFFFF)
	if _, err := w.file.WriteAt(u32buf[:], 4); err != nil {
		return w.ioErr(err, "write_riff_size_sentinel")
	}

	if _, err := w.file.WriteAt([]byte("ds64"), 12); err != nil {
		return w.ioErr(err, "write_ds64_magic")
	}
	binary.LittleEndian.PutUint32(u32buf[:], 28)
	if _, err := w.file.WriteAt(u32buf[:], 16); err != nil {
		return w.ioErr(err, "write_ds64_payload_size")
	}

	var ds64 [28]byte
	binary.LittleEndian.PutUint64(ds64[0:8], riffSize)
	binary.LittleEndian.PutUint64(ds64[8:16], dataSize)
	binary.LittleEndian.PutUint64(ds64[16:24], frameCount)
	binary.LittleEndian.PutUint32(ds64[24:28], 0) // table length
	if _, err := w.file.WriteAt(ds64[:], 20); err != nil {
		return w.ioErr(err, "write_ds64_fields")
	}

	binary.LittleEndian.PutUint32(u32buf[:], 0xFFFFFFFF)
	if _, err := w.file.WriteAt(u32buf[:], 76); err != nil {
		return w.ioErr(err, "write_data_size_sentinel")
	}

	if _, err := w.file.Seek(current, io.SeekStart); err != nil {
		return w.ioErr(err, "seek_restore")
	}

	w.isRF64 = true
	return nil
}

// PatchHeader writes the current riff/data sizes into the header so a
// recording interrupted mid-stream still has a readable size field.
// Safe to call at any point after the header has been written.
func (w *Writer) PatchHeader() error {
	if err := w.buf.Flush(); err != nil {
		return w.ioErr(err, "flush_before_patch")
	}
	current, err := w.file.Seek(0, io.SeekCurrent)
	if err != nil {
		return w.ioErr(err, "seek_current")
	}

	if w.isRF64 {
		riffSize := w.dataBytesWritten + (headerSize - 8)
		dataSize := w.dataBytesWritten
		frameCount := w.sampleCount / uint64(w.channels)

		var ds64 [24]byte
		binary.LittleEndian.PutUint64(ds64[0:8], riffSize)
		binary.LittleEndian.PutUint64(ds64[8:16], dataSize)
		binary.LittleEndian.PutUint64(ds64[16:24], frameCount)
		if _, err := w.file.WriteAt(ds64[:], 20); err != nil {
			return w.ioErr(err, "patch_ds64_fields")
		}
	} else {
		riffSize := w.dataBytesWritten + (headerSize - 8)
		if riffSize > 0xFFFFFFFF {
			riffSize = 0xFFFFFFFF
		}
		dataSize := w.dataBytesWritten
		if dataSize > 0xFFFFFFFF {
			dataSize = 0xFFFFFFFF
		}

		var u32buf [4]byte
		binary.LittleEndian.PutUint32(u32buf[:], uint32(riffSize))
		if _, err := w.file.WriteAt(u32buf[:], 4); err != nil {
			return w.ioErr(err, "patch_riff_size")
		}
		binary.LittleEndian.PutUint32(u32buf[:], uint32(dataSize))
		if _, err := w.file.WriteAt(u32buf[:], 76); err != nil {
			return w.ioErr(err, "patch_data_size")
		}
	}

	if _, err := w.file.Seek(current, io.SeekStart); err != nil {
		return w.ioErr(err, "seek_restore")
	}
	w.lastPatch = w.nowFunc()
	return nil
}

// Finalize patches the header one last time with final sizes, flushes
// and syncs the file to disk, and closes it.
func (w *Writer) Finalize() error {
	if err := w.PatchHeader(); err != nil {
		return err
	}
	if err := w.buf.Flush(); err != nil {
		return w.ioErr(err, "final_flush")
	}
	if err := w.file.Sync(); err != nil {
		return w.ioErr(err, "sync")
	}
	return w.file.Close()
}

func (w *Writer) ioErr(err error, op string) error {
	return errors.New(err).
		Component("wavfile").
		Category(errors.CategoryFileIO).
		Context("operation", op).
		Build()
}
