// Package lock serializes execution runs that share a backup directory.
package lock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// FileName is the lock file created in the backup directory
const FileName = ".lock"

// ErrLocked is returned when another run holds the lock
var ErrLocked = errors.New("another execution run is in progress")

// Acquire takes an exclusive, non-blocking advisory lock on path. The
// returned function releases it.
func Acquire(path string) (unlock func() error, err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, fmt.Errorf("%s: %w", path, ErrLocked)
		}
		return nil, fmt.Errorf("acquiring file lock: %w", err)
	}

	return func() error {
		defer f.Close()
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}

// InDir acquires the run lock of a backup directory
func InDir(dir string) (func() error, error) {
	return Acquire(filepath.Join(dir, FileName))
}
