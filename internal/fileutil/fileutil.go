package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// RemoveIfExists deletes path, treating an absent file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Size returns the size of a regular file, or 0 and false when the path is
// missing or not a regular file.
func Size(path string) (int64, bool) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return 0, false
	}
	return info.Size(), true
}

// NonEmpty reports whether path is a regular file with at least one byte.
func NonEmpty(path string) bool {
	size, ok := Size(path)
	return ok && size > 0
}

// Absolute resolves path against the working directory and cleans it.
func Absolute(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", path, err)
	}
	return abs, nil
}

// PathKey returns a short stable digest of a path, usable as a file name.
func PathKey(path string) string {
	sum := sha256.Sum256([]byte(filepath.Clean(path)))
	return hex.EncodeToString(sum[:8])
}

// SiblingPath returns dir/base(path) with its extension replaced by
// suffix+ext, e.g. SiblingPath("/v/a.mkv", "_with_subs", ".mp4") is
// "/v/a_with_subs.mp4".
func SiblingPath(path, suffix, ext string) string {
	base := filepath.Base(path)
	stem := base[:len(base)-len(filepath.Ext(base))]
	return filepath.Join(filepath.Dir(path), stem+suffix+ext)
}
