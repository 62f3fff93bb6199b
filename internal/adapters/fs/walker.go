// Package fs provides the filesystem adapters: the directory walker and the
// memoizing file hash cache.
package fs

import (
	"io/fs"
	"path/filepath"

	"go.trai.ch/zerr"
)

// Walker yields the files under a directory tree.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles returns all files under root in lexical order, skipping VCS
// directories and any name matching an ignore pattern. Lexical order matters:
// directory hashes are built from this list and must be stable. An unreadable
// directory fails the walk; a partial list would hash to a wrong but stable
// key.
func (w *Walker) WalkFiles(root string, ignores []string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if skipAction := w.shouldSkip(d, ignores); skipAction != nil {
			return skipAction
		}

		if d.IsDir() {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "directory walk failed"), "root", root)
	}
	return files, nil
}

// shouldSkip returns filepath.SkipDir for directories to prune and nil to
// continue. Ignore patterns match directory names.
func (w *Walker) shouldSkip(d fs.DirEntry, ignores []string) error {
	name := d.Name()

	if d.IsDir() && (name == ".git" || name == ".jj") {
		return filepath.SkipDir
	}

	for _, ignore := range ignores {
		matched, _ := filepath.Match(ignore, name)
		if matched && d.IsDir() {
			return filepath.SkipDir
		}
	}

	return nil
}
