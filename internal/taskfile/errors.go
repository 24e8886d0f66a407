package taskfile

import (
	"errors"
	"fmt"
	"io/fs"
)

// Error kinds reported by Store operations. Callers match them with errors.Is.
var (
	ErrNotFound        = errors.New("task file not found")
	ErrPermission      = errors.New("permission denied")
	ErrEncoding        = errors.New("task file is not valid UTF-8")
	ErrIndexOutOfRange = errors.New("task index out of range")
	ErrWrite           = errors.New("task file could not be written")
	ErrNotLoaded       = errors.New("no task file loaded")
)

// readError maps an error from reading path onto the store's error kinds
func readError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to read %s: %w: %w", path, ErrNotFound, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("failed to read %s: %w: %w", path, ErrPermission, err)
	default:
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
}
