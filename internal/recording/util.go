package recording

import "os"

// removeQuietly deletes a file, logging but not returning failures,
// used for rollback paths where the caller already has a more
// important error to report.
func removeQuietly(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		managerLogger.Warn("failed to remove file", "path", path, "error", err)
	}
}
