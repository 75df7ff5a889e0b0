package runlock

import (
	"path/filepath"
	"testing"
)

func TestAcquire_Exclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lknd.lock")

	first, err := Acquire(path)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := Acquire(path); err == nil {
		t.Fatal("second acquire should fail while the lock is held")
	}

	if err := first.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}

	second, err := Acquire(path)
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if err := second.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestAcquire_BadPath(t *testing.T) {
	if _, err := Acquire(filepath.Join(t.TempDir(), "missing", "dir", "lknd.lock")); err == nil {
		t.Fatal("expected error for an uncreatable lock file")
	}
}
