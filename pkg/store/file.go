package store

import (
	"os"

	"gitlab.com/tozd/go/errors"
)

// readStoreFile reads a file-backed store, mapping a missing file to
// ErrNotPresent.
func readStoreFile(path string) ([]byte, os.FileMode, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, errors.Errorf("%w: %s", ErrNotPresent, path)
		}
		return nil, 0, errors.Errorf("checking store file: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, errors.Errorf("reading store file: %w", err)
	}
	return data, info.Mode().Perm(), nil
}

// writeFileAtomic writes content to a temp file in the same directory and
// renames it over the target. The target is either fully replaced or left
// untouched; there is no half-written state.
func writeFileAtomic(path string, content []byte, mode os.FileMode) error {
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, content, mode); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath) // Clean up temp file
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}
