// Package watcher feeds filesystem change events into the file hash cache so
// that a long-lived process never serves a stale content hash.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

// skipDirectories are directory names that are never watched.
var skipDirectories = map[string]bool{
	".git":         true,
	".jj":          true,
	".forge":       true,
	"node_modules": true,
}

var _ ports.ChangeWatcher = (*Watcher)(nil)

// Watcher wires fsnotify events to FileHashCache invalidation. A watcher
// queue overflow drops the whole cache, since individual notifications were
// lost.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	hashes    ports.FileHashCache
	logger    ports.Logger
	ignores   []string
	changes   chan struct{}
}

// NewWatcher creates a watcher that invalidates entries in hashes. ignores
// lists directory names excluded from watching, in addition to the built-in
// VCS and state directories.
func NewWatcher(hashes ports.FileHashCache, logger ports.Logger, ignores []string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to create file watcher")
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		hashes:    hashes,
		logger:    logger,
		ignores:   ignores,
		changes:   make(chan struct{}, 1),
	}, nil
}

// skipDir reports whether a directory with the given base name is excluded
// from watching.
func (w *Watcher) skipDir(name string) bool {
	if skipDirectories[name] {
		return true
	}
	for _, ignore := range w.ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}

// Changes returns the coalesced change signal.
func (w *Watcher) Changes() <-chan struct{} { return w.changes }

// Start watches root recursively and processes events until ctx is done.
func (w *Watcher) Start(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipDir(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to watch directory tree"), "root", root)
	}

	go w.processEvents(ctx)
	return nil
}

// Stop releases the underlying watcher.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				// Notifications were dropped; every memoized hash is suspect.
				w.hashes.InvalidateAll()
				select {
				case w.changes <- struct{}{}:
				default:
				}
				continue
			}
			w.logger.Error(zerr.Wrap(err, "file watcher error"))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	w.hashes.Invalidate(event.Name)

	select {
	case w.changes <- struct{}{}:
	default:
	}

	// Invalidate enclosing directories too: a directory's hash covers the
	// files beneath it.
	for dir := filepath.Dir(event.Name); ; dir = filepath.Dir(dir) {
		w.hashes.Invalidate(dir)
		if parent := filepath.Dir(dir); parent == dir {
			break
		}
	}

	// A freshly created directory needs its own watch.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !w.skipDir(filepath.Base(event.Name)) {
			_ = w.fsWatcher.Add(event.Name)
		}
	}
}
