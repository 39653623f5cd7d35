package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// ErrRunInProgress is returned when another run holds the lock.
var ErrRunInProgress = errors.New("another backup run is in progress")

// RunLock is an advisory lock file guarding the backup directory against overlapping runs.
// A lock older than staleAfter is assumed to belong to a crashed run and is replaced.
type RunLock struct {
	path       string
	staleAfter time.Duration
	now        func() time.Time
}

// NewRunLock creates a lock at path. A zero staleAfter never expires the lock.
func NewRunLock(path string, staleAfter time.Duration) *RunLock {
	return &RunLock{path: path, staleAfter: staleAfter, now: time.Now}
}

// Acquire takes the lock and returns the function that releases it.
func (l *RunLock) Acquire() (func() error, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0750); err != nil {
		return nil, fmt.Errorf("error creating lock directory: %w", err)
	}

	err := l.create()
	if errors.Is(err, os.ErrExist) && l.stale() {
		if rErr := os.Remove(l.path); rErr != nil && !errors.Is(rErr, os.ErrNotExist) {
			return nil, fmt.Errorf("error removing stale lock %s: %w", l.path, rErr)
		}
		err = l.create()
	}
	if errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("%w: lock %s is held", ErrRunInProgress, l.path)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating lock %s: %w", l.path, err)
	}

	return func() error {
		if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}, nil
}

func (l *RunLock) create() error {
	f, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return err
	}
	_, wErr := f.WriteString(strconv.Itoa(os.Getpid()) + "\n")
	return errors.Join(wErr, f.Close())
}

func (l *RunLock) stale() bool {
	if l.staleAfter <= 0 {
		return false
	}
	info, err := os.Stat(l.path)
	if err != nil {
		return errors.Is(err, os.ErrNotExist)
	}
	return l.now().Sub(info.ModTime()) > l.staleAfter
}
