// Package filelock provides the advisory per-project lock used to detect a
// concurrent pacm operation against the same project directory (§5's
// PACM_CONCURRENT_OPERATION supplement), wrapping nightlyone/lockfile.
package filelock

import (
	"errors"
	"path/filepath"

	"github.com/nightlyone/lockfile"

	"github.com/pacmjs/pacm/internal/pacmerr"
)

// Lock is a held advisory lock over a project directory. Release it with
// Unlock when the operation finishes.
type Lock struct {
	inner lockfile.Lockfile
}

// Acquire takes the advisory lock for projectDir. If another pacm process
// already holds it, this returns a ConcurrencyError tagged
// PACM_CONCURRENT_OPERATION.
func Acquire(projectDir string) (*Lock, error) {
	path, err := filepath.Abs(filepath.Join(projectDir, ".pacm.lock"))
	if err != nil {
		return nil, &pacmerr.FilesystemError{Op: "resolve lockfile path", Err: err}
	}

	lf, err := lockfile.New(path)
	if err != nil {
		return nil, &pacmerr.FilesystemError{Op: "create lockfile handle", Err: err}
	}

	if err := lf.TryLock(); err != nil {
		if errors.Is(err, lockfile.ErrBusy) {
			return nil, &pacmerr.ConcurrencyError{Err: err}
		}
		return nil, &pacmerr.FilesystemError{Op: "acquire lockfile", Err: err}
	}

	return &Lock{inner: lf}, nil
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	if err := l.inner.Unlock(); err != nil {
		return &pacmerr.FilesystemError{Op: "release lockfile", Err: err}
	}
	return nil
}
