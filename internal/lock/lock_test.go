package lock

import (
	"errors"
	"testing"
)

func TestAcquireIsExclusive(t *testing.T) {
	dir := t.TempDir()

	unlock, err := InDir(dir)
	if err != nil {
		t.Fatalf("first acquire failed: %v", err)
	}

	if _, err := InDir(dir); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked while held, got %v", err)
	}

	if err := unlock(); err != nil {
		t.Fatalf("unlock failed: %v", err)
	}

	unlock, err = InDir(dir)
	if err != nil {
		t.Fatalf("acquire after release failed: %v", err)
	}
	unlock()
}

func TestAcquireCreatesDirectory(t *testing.T) {
	unlock, err := InDir(t.TempDir() + "/nested/backups")
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	unlock()
}
