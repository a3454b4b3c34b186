package recovery

import (
	"os"

	"github.com/clipdr/studio-engine/internal/errors"
	"github.com/clipdr/studio-engine/internal/wavfile"
)

// RecoverRecording repairs path's WAV header in place from its actual
// on-disk size and returns the file's state afterward. RF64 files
// already carry their true sizes in the ds64 chunk and are returned
// unmodified.
func RecoverRecording(path string) (OrphanedRecording, error) {
	if err := wavfile.RepairHeader(path); err != nil {
		return OrphanedRecording{}, err
	}

	fi, err := os.Stat(path)
	if err != nil {
		return OrphanedRecording{}, errors.New(err).
			Component("recovery").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	duration, err := wavfile.EstimateDuration(path)
	if err != nil {
		return OrphanedRecording{}, err
	}

	recoveryLogger.Info("recovered orphaned recording", "path", path, "duration_seconds", duration)
	return OrphanedRecording{
		Path:                     path,
		SizeBytes:                fi.Size(),
		HeaderOK:                 true,
		EstimatedDurationSeconds: duration,
	}, nil
}

// DeleteOrphanedRecording removes an orphaned file outright, for the
// case where the caller decides a broken recording isn't worth
// repairing.
func DeleteOrphanedRecording(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return errors.Newf("orphaned recording not found").
				Component("recovery").
				Category(errors.CategoryFileIO).
				Context("path", path).
				Build()
		}
		return errors.New(err).
			Component("recovery").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	if err := os.Remove(path); err != nil {
		return errors.New(err).
			Component("recovery").
			Category(errors.CategoryFileIO).
			Context("path", path).
			Build()
	}

	recoveryLogger.Info("deleted orphaned recording", "path", path)
	return nil
}
