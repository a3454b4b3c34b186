package playback

import (
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"
)

// cacheFilePath computes the decode-cache path for path: a 16-hex-digit
// hash over (path, size, mtime) under cacheDir, so a changed source file
// invalidates its own cache entry without needing an explicit eviction
// pass.
func cacheFilePath(cacheDir, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", wrapFileIOErr(err, path)
	}

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	return filepath.Join(cacheDir, fmt.Sprintf("%016x.wav", h.Sum64())), nil
}

// cacheIsFresh reports whether a decode-cache file exists and isn't
// older than its source (the hash in its name already pins it to one
// exact (size, mtime) of the source, so in practice this is mostly a
// existence check, but a cache entry predating a source overwrite that
// happened to keep the same size+mtime is not possible to distinguish
// from the hash alone, hence the belt-and-suspenders mtime check here).
func cacheIsFresh(cachePath, srcPath string) bool {
	cacheInfo, err := os.Stat(cachePath)
	if err != nil {
		return false
	}
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return false
	}
	return !cacheInfo.ModTime().Before(srcInfo.ModTime())
}
