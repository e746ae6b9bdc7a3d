// Package lock provides file-based locking so concurrent cabin
// invocations do not race on the same workspace.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// Lock represents a file-based lock.
type Lock struct {
	path string
	file *os.File
}

// New creates a lock for the given operation in the workspace locks
// directory.
func New(locksDir, operation string) *Lock {
	return &Lock{
		path: filepath.Join(locksDir, operation+".lock"),
	}
}

// Acquire attempts to acquire the lock. Returns an error if the lock
// is already held by another process.
func (l *Lock) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}

	// Non-blocking exclusive flock.
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		l.file = nil
		if err == syscall.EWOULDBLOCK {
			operation := filepath.Base(l.path[:len(l.path)-len(".lock")])
			return fmt.Errorf("another %s operation is already running", operation)
		}
		return fmt.Errorf("acquire lock: %w", err)
	}

	// Write PID to lock file for debugging.
	f.Truncate(0)
	f.Seek(0, 0)
	fmt.Fprintf(f, "%d\n", os.Getpid())

	l.file = f
	return nil
}

// Release releases the lock.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}

	if err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN); err != nil {
		l.file.Close()
		return fmt.Errorf("release lock: %w", err)
	}

	l.file.Close()
	os.Remove(l.path)
	l.file = nil

	return nil
}

// WithLock executes fn while holding the lock, releasing it when fn
// returns.
func WithLock(locksDir, operation string, fn func() error) error {
	l := New(locksDir, operation)
	if err := l.Acquire(); err != nil {
		return err
	}
	defer l.Release()
	return fn()
}
