//go:build !windows

package leaderlock

import (
	"context"
	"fmt"
	"os"
	"sync"
	"syscall"

	"github.com/area-engine/core/logging"
)

// FileLock is a filesystem-level exclusive lock on a well-known path, the fallback spec §5
// names alongside the advisory-DB lock. Translated from the fcntl.flock(LOCK_EX|LOCK_NB)
// pattern in original_source/server/scheduler/core.py's init_scheduler, which guards against
// multiple gunicorn workers all starting the scheduler.
type FileLock struct {
	path string
	log  *logging.ContextLogger

	mu   sync.Mutex
	file *os.File
}

// NewFileLock returns a lock over the given path. The file is created if missing and never
// removed — flock is advisory and keyed on the inode, not file contents.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path, log: logging.Named("leaderlock.file")}
}

func (l *FileLock) Name() string { return l.path }

// TryAcquire makes one non-blocking flock(LOCK_EX|LOCK_NB) attempt. The OS releases the lock
// automatically if the process dies, satisfying spec §5's crash-survival requirement.
func (l *FileLock) TryAcquire(_ context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return true, nil
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return false, fmt.Errorf("leaderlock: open %s: %w", l.path, err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		if err == syscall.EWOULDBLOCK {
			return false, nil
		}
		return false, fmt.Errorf("leaderlock: flock %s: %w", l.path, err)
	}

	l.file = f
	l.log.WithField("lock", l.path).Info("leader lock acquired")
	return true, nil
}

func (l *FileLock) Release(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	l.file.Close()
	l.file = nil
	l.log.WithField("lock", l.path).Info("leader lock released")
	return err
}

var _ Lock = (*FileLock)(nil)
