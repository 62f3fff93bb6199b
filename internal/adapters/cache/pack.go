// Package cache implements the artifact cache backends: a local directory
// cache, a remote HTTP cache, and the tiered composition the engine talks to.
// Artifacts are zip archives carrying the packed output path plus a metadata
// entry that lets a fetch reject blobs that do not belong to the requesting
// rule.
package cache

import (
	"archive/zip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	metadataEntry  = "METADATA.json"
	outputEntry    = "out"
	outputEntryDir = "out/"
)

// pack writes outputPath (a file or a directory tree) and its metadata as a
// zip archive to w.
func pack(w io.Writer, meta domain.ArtifactMetadata, root, outputPath string) error {
	zw := zip.NewWriter(w)

	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return zerr.Wrap(err, "failed to marshal artifact metadata")
	}
	mw, err := zw.Create(metadataEntry)
	if err != nil {
		return zerr.Wrap(err, "failed to create metadata entry")
	}
	if _, err := mw.Write(metaBytes); err != nil {
		return zerr.Wrap(err, "failed to write metadata entry")
	}

	abs := filepath.Join(root, outputPath)
	info, err := os.Stat(abs)
	if err != nil {
		return zerr.With(zerr.Wrap(err, "output missing after build"), "path", outputPath)
	}

	if !info.IsDir() {
		if err := packFile(zw, outputEntry, abs); err != nil {
			return err
		}
		return zw.Close()
	}

	err = filepath.Walk(abs, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		return packFile(zw, outputEntryDir+filepath.ToSlash(rel), path)
	})
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to pack output"), "path", outputPath)
	}

	return zw.Close()
}

func packFile(zw *zip.Writer, name, path string) error {
	f, err := os.Open(path) //nolint:gosec // Path derives from the rule's output
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open output file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	w, err := zw.Create(name)
	if err != nil {
		return zerr.Wrap(err, "failed to create archive entry")
	}
	if _, err := io.Copy(w, f); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write archive entry"), "path", path)
	}
	return nil
}

// unpack extracts an artifact archive into outputPath. Extraction goes to a
// staging location first and only replaces outputPath once every entry is on
// disk, so a failed unpack never leaves a partial result that looks complete.
func unpack(r io.ReaderAt, size int64, root, outputPath string) (domain.ArtifactMetadata, error) {
	var meta domain.ArtifactMetadata

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return meta, zerr.Wrap(err, "corrupt artifact archive")
	}

	metaFound := false
	for _, f := range zr.File {
		if f.Name == metadataEntry {
			if err := readMetadata(f, &meta); err != nil {
				return meta, err
			}
			metaFound = true
			break
		}
	}
	if !metaFound {
		return meta, zerr.New("artifact archive missing metadata")
	}

	abs := filepath.Join(root, outputPath)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return meta, zerr.Wrap(err, "failed to create output parent")
	}
	staging, err := os.MkdirTemp(filepath.Dir(abs), ".forge-fetch-*")
	if err != nil {
		return meta, zerr.Wrap(err, "failed to create staging directory")
	}
	defer os.RemoveAll(staging) //nolint:errcheck // Staging leftovers are harmless

	stagedOut, err := extractEntries(zr, staging)
	if err != nil {
		return meta, err
	}
	if stagedOut == "" {
		return meta, zerr.New("artifact archive has no output entries")
	}

	if err := os.RemoveAll(abs); err != nil {
		return meta, zerr.With(zerr.Wrap(err, "failed to clear output path"), "path", outputPath)
	}
	if err := os.Rename(stagedOut, abs); err != nil {
		return meta, zerr.With(zerr.Wrap(err, "failed to move fetched output"), "path", outputPath)
	}

	return meta, nil
}

func readMetadata(f *zip.File, meta *domain.ArtifactMetadata) error {
	rc, err := f.Open()
	if err != nil {
		return zerr.Wrap(err, "failed to read artifact metadata")
	}
	defer rc.Close() //nolint:errcheck // Best effort close in defer

	if err := json.NewDecoder(rc).Decode(meta); err != nil {
		return zerr.Wrap(err, "failed to decode artifact metadata")
	}
	return nil
}

// extractEntries writes the archive's output entries under staging and
// returns the staged output root.
func extractEntries(zr *zip.Reader, staging string) (string, error) {
	stagedFile := filepath.Join(staging, outputEntry)
	found := false

	for _, f := range zr.File {
		switch {
		case f.Name == metadataEntry:
			continue
		case f.Name == outputEntry:
			if err := extractFile(f, stagedFile); err != nil {
				return "", err
			}
			found = true
		case strings.HasPrefix(f.Name, outputEntryDir):
			rel := strings.TrimPrefix(f.Name, outputEntryDir)
			if rel == "" || strings.Contains(rel, "..") {
				return "", zerr.With(zerr.New("unsafe archive entry"), "entry", f.Name)
			}
			if err := extractFile(f, filepath.Join(stagedFile, filepath.FromSlash(rel))); err != nil {
				return "", err
			}
			found = true
		default:
			return "", zerr.With(zerr.New("unexpected archive entry"), "entry", f.Name)
		}
	}

	if !found {
		return "", nil
	}
	return stagedFile, nil
}

func extractFile(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to open archive entry"), "entry", f.Name)
	}
	defer rc.Close() //nolint:errcheck // Best effort close in defer

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return zerr.Wrap(err, "failed to create staging parent")
	}
	out, err := os.Create(dest) //nolint:gosec // Entry names are validated above
	if err != nil {
		return zerr.Wrap(err, "failed to create staged file")
	}
	defer out.Close() //nolint:errcheck // Close error reported by the copy below

	if _, err := io.Copy(out, rc); err != nil { //nolint:gosec // Size bounded by archive
		return zerr.With(zerr.Wrap(err, "failed to extract archive entry"), "entry", f.Name)
	}
	return out.Close()
}
