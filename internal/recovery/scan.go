package recovery

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipdr/studio-engine/internal/errors"
	"github.com/clipdr/studio-engine/internal/logging"
	"github.com/clipdr/studio-engine/internal/wavfile"
)

var recoveryLogger = logging.ForService("recovery")

// assumedBytesPerSecond backs the fallback duration estimate for files
// whose header is too broken for wavfile.EstimateDuration to trust:
// 48kHz stereo 32-bit float, the engine's own worst-case capture format.
const assumedBytesPerSecond = 48000 * 2 * 4

// minPlausibleSize is the smallest file worth inspecting: one full
// header with no sample data.
const minPlausibleSize = 80

// ScanOrphanedRecordings walks dir (non-recursive) for `recording_*.wav`
// files with a broken header. A directory that doesn't exist yields an
// empty result rather than an error, matching the original crash-
// recovery scan's tolerance for a not-yet-created project directory.
func ScanOrphanedRecordings(dir string) ([]OrphanedRecording, error) {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return nil, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.New(err).
			Component("recovery").
			Category(errors.CategoryFileIO).
			Context("dir", dir).
			Build()
	}

	var orphans []OrphanedRecording

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.ToLower(filepath.Ext(name)) != ".wav" {
			continue
		}
		if !strings.HasPrefix(name, "recording_") {
			continue
		}

		path := filepath.Join(dir, name)
		fi, err := entry.Info()
		if err != nil || fi.Size() < minPlausibleSize {
			continue
		}
		if !looksLikeWAV(path) {
			continue
		}

		headerOK := wavfile.IsHeaderValid(path)
		if headerOK {
			continue // only broken headers are orphans worth surfacing
		}

		duration := float64(fi.Size()-headerSizeEstimate) / assumedBytesPerSecond
		if duration < 0 {
			duration = 0
		}

		orphans = append(orphans, OrphanedRecording{
			Path:                     path,
			SizeBytes:                fi.Size(),
			HeaderOK:                 false,
			EstimatedDurationSeconds: duration,
		})
	}

	recoveryLogger.Info("scanned directory for orphaned recordings", "dir", dir, "found", len(orphans))
	return orphans, nil
}

// headerSizeEstimate is subtracted from file size before the fallback
// duration estimate, matching the fixed 80-byte header every file in
// this engine starts with.
const headerSizeEstimate = 80

// looksLikeWAV cheaply rejects non-WAV files by checking just the
// 12-byte RIFF/WAVE magic, so the scan loop allocates nothing per
// candidate file before falling back to wavfile's full chunk-walk for
// files that pass.
func looksLikeWAV(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	var magic [12]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false
	}

	riff := string(magic[0:4])
	wave := string(magic[8:12])
	return (riff == "RIFF" || riff == "RF64") && wave == "WAVE"
}
