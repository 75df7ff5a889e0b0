// Package runlock keeps two processes from running cycles against the
// same data directory at once.
package runlock

import (
	"fmt"

	"github.com/gofrs/flock"
)

// Lock is a held exclusive file lock.
type Lock struct {
	fl *flock.Flock
}

// Acquire takes the lock at path without blocking. A second process gets
// a clear already-running error instead of waiting on the first.
func Acquire(path string) (*Lock, error) {
	fl := flock.New(path)
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", path, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s is held; another lknd process is already running", path)
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock so another process can start.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
