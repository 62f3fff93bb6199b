package steps

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

var _ domain.Step = (*ZipStep)(nil)

// ZipStep packs the source paths into a zip archive at Out. Entries are
// written in sorted order with zeroed timestamps so the same inputs always
// produce byte-identical archives.
type ZipStep struct {
	Srcs []string
	Out  string
}

func (s *ZipStep) Description() string {
	return "zip " + s.Out + " " + strings.Join(s.Srcs, " ")
}

func (s *ZipStep) Run(_ context.Context, ec domain.ExecContext) (int, error) {
	entries, err := s.collectEntries(ec.Root)
	if err != nil {
		return 1, err
	}

	abs := filepath.Join(ec.Root, s.Out)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to create parent directory"), "path", s.Out)
	}
	f, err := os.Create(abs) //nolint:gosec // build output
	if err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to create archive"), "path", s.Out)
	}
	defer f.Close() //nolint:errcheck // Close error reported below

	zw := zip.NewWriter(f)
	for _, entry := range entries {
		if err := s.writeEntry(zw, ec.Root, entry); err != nil {
			return 1, err
		}
	}
	if err := zw.Close(); err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to finish archive"), "path", s.Out)
	}
	if err := f.Close(); err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to finish archive"), "path", s.Out)
	}
	return 0, nil
}

// collectEntries expands directory sources into their files and returns all
// entry names sorted.
func (s *ZipStep) collectEntries(root string) ([]string, error) {
	var entries []string
	for _, src := range s.Srcs {
		abs := filepath.Join(root, src)
		info, err := os.Stat(abs)
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "archive source missing"), "path", src)
		}
		if !info.IsDir() {
			entries = append(entries, src)
			continue
		}
		err = filepath.Walk(abs, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if fi.IsDir() {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			entries = append(entries, filepath.ToSlash(rel))
			return nil
		})
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to list archive source"), "path", src)
		}
	}
	sort.Strings(entries)
	return entries, nil
}

func (s *ZipStep) writeEntry(zw *zip.Writer, root, entry string) error {
	f, err := os.Open(filepath.Join(root, filepath.FromSlash(entry))) //nolint:gosec // entry derives from the rule's srcs
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open archive source"), "path", entry)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	// A bare FileHeader keeps the modification time zeroed.
	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   filepath.ToSlash(entry),
		Method: zip.Deflate,
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create archive entry"), "path", entry)
	}
	if _, err := io.Copy(w, f); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write archive entry"), "path", entry)
	}
	return nil
}
