// Package runlock serializes pull runs across processes with a file lock,
// so a CI retry starting while the previous run still holds the catalog
// cannot interleave downloads.
package runlock

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrHeld reports that another process holds the lock.
var ErrHeld = errors.New("another run already holds the lock")

// Acquire takes the lock at path without blocking and returns a release
// function. ErrHeld is returned when a concurrent run owns it.
func Acquire(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrHeld)
	}
	return func() { _ = lock.Unlock() }, nil
}
