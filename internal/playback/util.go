package playback

import "github.com/clipdr/studio-engine/internal/errors"

func wrapFileIOErr(err error, path string) error {
	return errors.New(err).
		Component("playback").
		Category(errors.CategoryFileIO).
		Context("path_hint", categorizePathDepth(path)).
		Build()
}

// categorizePathDepth avoids putting a raw filesystem path into error
// context while still giving a rough size signal for debugging.
func categorizePathDepth(path string) int {
	depth := 0
	for _, r := range path {
		if r == '/' {
			depth++
		}
	}
	return depth
}
