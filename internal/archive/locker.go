package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/specialistvlad/nativeapk/internal/apkerr"
	"github.com/specialistvlad/nativeapk/internal/ctxlog"
)

// LockHeldEnv is set for helper processes started while the parent already
// holds the archive lock, so they do not try to take it again.
const LockHeldEnv = "NATIVEAPK_ARCHIVE_LOCKED"

// Locker serialises mutations per archive path. Inside a process a mutex per
// absolute path is used; across processes an advisory file lock on
// `<archive>.lock` is taken where the platform supports it.
type Locker struct {
	mu    sync.Mutex
	paths map[string]*sync.Mutex
	// SkipFileLock disables the cross-process lock.
	SkipFileLock bool
}

// NewLocker creates an empty Locker.
func NewLocker() *Locker {
	return &Locker{paths: make(map[string]*sync.Mutex)}
}

func (l *Locker) mutexFor(path string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.paths == nil {
		l.paths = make(map[string]*sync.Mutex)
	}
	m, ok := l.paths[path]
	if !ok {
		m = &sync.Mutex{}
		l.paths[path] = m
	}
	return m
}

// Lock acquires the lock for archive and returns the function releasing it.
func (l *Locker) Lock(ctx context.Context, archive string) (func(), error) {
	abs, err := filepath.Abs(archive)
	if err != nil {
		return nil, apkerr.IO("lock archive", archive, err)
	}

	m := l.mutexFor(abs)
	m.Lock()

	if l.SkipFileLock || os.Getenv(LockHeldEnv) != "" {
		return m.Unlock, nil
	}

	lockPath := abs + ".lock"
	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		m.Unlock()
		return nil, apkerr.IO("lock archive", lockPath, err)
	}
	if err := flock(f); err != nil {
		f.Close()
		m.Unlock()
		return nil, apkerr.IO("lock archive", lockPath, fmt.Errorf("flock: %w", err))
	}
	ctxlog.FromContext(ctx).Debug("Archive locked.", "archive", abs)

	return func() {
		_ = funlock(f)
		_ = f.Close()
		m.Unlock()
	}, nil
}
