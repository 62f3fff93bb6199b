package steps

import (
	"context"
	"os"
	"path/filepath"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

var (
	_ domain.Step = (*MakeCleanDirStep)(nil)
	_ domain.Step = (*RemoveStep)(nil)
	_ domain.Step = (*WriteFileStep)(nil)
	_ domain.Step = (*SymlinkStep)(nil)
	_ domain.Step = (*CopyStep)(nil)
)

// MakeCleanDirStep removes Path if present and recreates it empty, so that a
// rerun after a partial build starts from a clean slate.
type MakeCleanDirStep struct {
	Path string
}

func (s *MakeCleanDirStep) Description() string {
	return "rm -rf " + s.Path + " && mkdir -p " + s.Path
}

func (s *MakeCleanDirStep) Run(_ context.Context, ec domain.ExecContext) (int, error) {
	abs := filepath.Join(ec.Root, s.Path)
	if err := os.RemoveAll(abs); err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to clean directory"), "path", s.Path)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to create directory"), "path", s.Path)
	}
	return 0, nil
}

// RemoveStep deletes a path, recursively for directories. Removing an absent
// path succeeds.
type RemoveStep struct {
	Path string
}

func (s *RemoveStep) Description() string {
	return "rm -rf " + s.Path
}

func (s *RemoveStep) Run(_ context.Context, ec domain.ExecContext) (int, error) {
	if err := os.RemoveAll(filepath.Join(ec.Root, s.Path)); err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to remove path"), "path", s.Path)
	}
	return 0, nil
}

// WriteFileStep writes Contents to Path, truncating any previous file and
// creating parent directories as needed.
type WriteFileStep struct {
	Path     string
	Contents []byte
}

func (s *WriteFileStep) Description() string {
	return "write " + s.Path
}

func (s *WriteFileStep) Run(_ context.Context, ec domain.ExecContext) (int, error) {
	abs := filepath.Join(ec.Root, s.Path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to create parent directory"), "path", s.Path)
	}
	if err := os.WriteFile(abs, s.Contents, 0o644); err != nil { //nolint:gosec // build output
		return 1, zerr.With(zerr.Wrap(err, "failed to write file"), "path", s.Path)
	}
	return 0, nil
}

// SymlinkStep links Target at Link, replacing any previous link.
type SymlinkStep struct {
	Target string
	Link   string
}

func (s *SymlinkStep) Description() string {
	return "ln -sf " + s.Target + " " + s.Link
}

func (s *SymlinkStep) Run(_ context.Context, ec domain.ExecContext) (int, error) {
	link := filepath.Join(ec.Root, s.Link)
	if err := os.MkdirAll(filepath.Dir(link), 0o755); err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to create parent directory"), "path", s.Link)
	}
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		return 1, zerr.With(zerr.Wrap(err, "failed to replace link"), "path", s.Link)
	}
	if err := os.Symlink(filepath.Join(ec.Root, s.Target), link); err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to create link"), "path", s.Link)
	}
	return 0, nil
}

// CopyStep copies a single file From to To, truncating any previous file.
type CopyStep struct {
	From string
	To   string
}

func (s *CopyStep) Description() string {
	return "cp " + s.From + " " + s.To
}

func (s *CopyStep) Run(_ context.Context, ec domain.ExecContext) (int, error) {
	from := filepath.Join(ec.Root, s.From)
	to := filepath.Join(ec.Root, s.To)

	data, err := os.ReadFile(from) //nolint:gosec // rule declared input
	if err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to read source"), "path", s.From)
	}
	info, err := os.Stat(from)
	if err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to stat source"), "path", s.From)
	}
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to create parent directory"), "path", s.To)
	}
	if err := os.WriteFile(to, data, info.Mode().Perm()); err != nil {
		return 1, zerr.With(zerr.Wrap(err, "failed to write destination"), "path", s.To)
	}
	return 0, nil
}
