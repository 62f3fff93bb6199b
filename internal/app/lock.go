package app

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

// buildLock is a pid lockfile guarding the project against concurrent forge
// invocations. Two engines sharing one output tree would race each other's
// artifacts, so a second invocation is rejected instead of queued.
type buildLock struct {
	path string
}

// acquireBuildLock takes the project lock, claiming it from a dead owner if
// the previous process crashed without cleanup. A live owner surfaces as
// ErrBuildBusy.
func acquireBuildLock(dir string) (*buildLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, zerr.Wrap(err, "failed to create lock directory")
	}
	path := filepath.Join(dir, "build.lock")

	for range 2 {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(path)
				return nil, zerr.With(zerr.New("failed to write lock file"), "path", path)
			}
			return &buildLock{path: path}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, zerr.Wrap(err, "failed to create lock file")
		}

		if !lockOwnerAlive(path) {
			// Stale lock from a crashed run; remove it and retry once.
			_ = os.Remove(path)
			continue
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrBuildBusy, "build lock held"), "lock", path)
	}

	return nil, zerr.With(zerr.Wrap(domain.ErrBuildBusy, "build lock held"), "lock", path)
}

// lockOwnerAlive reports whether the pid recorded in the lock file still
// names a running process. An unreadable or garbled lock file counts as dead.
func lockOwnerAlive(path string) bool {
	data, err := os.ReadFile(path) //nolint:gosec // lock path derives from the project root
	if err != nil {
		return false
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}

// release removes the lock file.
func (l *buildLock) release() {
	_ = os.Remove(l.path)
}
