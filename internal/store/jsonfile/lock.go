package jsonfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// ErrLocked is returned by Lock when another process already owns the store.
var ErrLocked = errors.New("message store is owned by another listener")

// lockPath returns the path to the lock file.
func (s *Store) lockPath() string {
	return s.path + ".lock"
}

// Lock takes an exclusive, non-blocking advisory lock on the store and returns
// a function that releases it. The listener holds the lock for its lifetime so
// that a second listener on the same document fails fast with ErrLocked.
func (s *Store) Lock() (release func() error, err error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}

	f, err := os.OpenFile(s.lockPath(), os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return nil, ErrLocked
		}
		return nil, fmt.Errorf("acquire file lock: %w", err)
	}

	return func() error {
		defer f.Close() //nolint:errcheck
		return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
	}, nil
}
