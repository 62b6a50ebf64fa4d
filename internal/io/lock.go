package ioutils

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
)

// LockSuffix is appended to the destination root to name its lock file.
const LockSuffix = ".lock"

// ErrLocked is returned by LockDir when another process holds the lock.
var ErrLocked = errors.New("destination directory is locked by another process")

// LockPath returns the lock file guarding dir. It sits next to dir, so the
// destination tree itself only ever holds downloads.
func LockPath(dir string) string {
	return filepath.Clean(dir) + LockSuffix
}

// LockDir takes an exclusive advisory lock on dir for the duration of a run.
// Only the parent of dir is created. The lock is retried every retry
// interval until ctx is done; an expired deadline is reported as ErrLocked.
//
// The returned function releases the lock.
//
// Example:
//
//	unlock, err := LockDir(ctx, "dl", time.Second)
//	if err != nil {
//	    return err
//	}
//	defer unlock()
func LockDir(ctx context.Context, dir string, retry time.Duration) (func() error, error) {
	lockPath := LockPath(dir)
	if err := EnsureDir(filepath.Dir(lockPath)); err != nil {
		return nil, errors.Wrapf(err, "create directory %s", filepath.Dir(lockPath))
	}

	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLockContext(ctx, retry)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrap(ErrLocked, dir)
		}
		return nil, errors.Wrapf(err, "lock %s", dir)
	}
	if !locked {
		return nil, errors.Wrap(ErrLocked, dir)
	}
	return fileLock.Unlock, nil
}
