package runlock

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
)

func TestAcquireAndRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "locks", "p0d.lock")

	release, err := Acquire(path)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	release()

	// Releasing makes the lock available again.
	release2, err := Acquire(path)
	if err != nil {
		t.Fatalf("second Acquire: %v", err)
	}
	release2()
}

func TestAcquireFailsWhenHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p0d.lock")

	holder := flock.New(path)
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("setup lock: ok=%v err=%v", ok, err)
	}
	defer holder.Unlock()

	if _, err := Acquire(path); !errors.Is(err, ErrHeld) {
		t.Fatalf("err = %v, want ErrHeld", err)
	}
}
