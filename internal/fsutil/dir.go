package fsutil

import (
	"errors"
	"fmt"
	"os"

	whErrors "github.com/CoderDKai/workhorse/internal/errors"
)

// CheckDir verifies that dir exists and is a directory.
func CheckDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("working directory: %w", whErrors.ErrEmptyValue)
	}
	info, err := os.Stat(dir)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("'%s': %w", dir, whErrors.ErrDirectoryNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to inspect '%s': %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("'%s': %w", dir, whErrors.ErrNotADirectory)
	}
	return nil
}
