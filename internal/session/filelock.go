package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// fileLock provides cross-process file locking for the benchmark cache,
// adapted from the teacher's embed-model download lock: multiple
// `bench pool`/`bench evaluate` workers (spec's WORKERS env var) run
// concurrently against the same shared cache file, and only one may hold
// the write lock at a time.
type fileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// newFileLock creates a lock guarding the cache file at path. The lock
// file itself lives alongside it, at path+".lock".
func newFileLock(path string) *fileLock {
	return &fileLock{
		path:  path + ".lock",
		flock: flock.New(path + ".lock"),
	}
}

// Lock acquires an exclusive lock, blocking until it is available.
func (l *fileLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache lock directory: %w", err)
	}
	if err := l.flock.Lock(); err != nil {
		return fmt.Errorf("failed to acquire cache lock: %w", err)
	}
	l.locked = true
	return nil
}

// Unlock releases the lock. Safe to call multiple times or when unlocked.
func (l *fileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release cache lock: %w", err)
	}
	l.locked = false
	return nil
}
