package recording

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SegmentMaxDataBytes is the PCM-byte cap per segment in split-tracks
// mode, chosen with headroom below the 32-bit addressable limit.
const SegmentMaxDataBytes = 3_900_000_000

// segmentPath derives the on-disk name for a given segment index.
// Segment 1 uses base unchanged; 2+ get a zero-padded suffix.
func segmentPath(base string, index int) string {
	if index <= 1 {
		return base
	}
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return fmt.Sprintf("%s_%03d%s", stem, index, ext)
}
