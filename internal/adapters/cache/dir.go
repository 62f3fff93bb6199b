package cache

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.ArtifactCache = (*DirCache)(nil)

// DirCache is the local filesystem backend. Each artifact lives in one file
// named by the hex-encoded rule key.
type DirCache struct {
	dir    string
	root   string
	logger ports.Logger
}

// NewDirCache creates a DirCache rooted at dir; artifacts unpack relative to
// root.
func NewDirCache(dir, root string, logger ports.Logger) (*DirCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create cache directory"), "path", dir)
	}
	return &DirCache{dir: filepath.Clean(dir), root: root, logger: logger}, nil
}

func (c *DirCache) artifactPath(key domain.RuleKey) string {
	return filepath.Join(c.dir, key.String())
}

// Fetch looks the key up on disk and unpacks on a hit. A corrupt or
// mismatched artifact is evicted and reported as a miss.
func (c *DirCache) Fetch(ctx context.Context, key domain.RuleKey, outputPath string) domain.CacheResult {
	path := c.artifactPath(key)

	f, err := os.Open(path) //nolint:gosec // Path is cache dir + hex key
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.CacheResult{Kind: domain.CacheMiss}
		}
		return domain.CacheResult{Kind: domain.CacheError, Err: zerr.With(zerr.Wrap(err, "failed to open cached artifact"), "key", key.String())}
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	info, err := f.Stat()
	if err != nil {
		return domain.CacheResult{Kind: domain.CacheError, Err: zerr.Wrap(err, "failed to stat cached artifact")}
	}

	meta, err := unpack(f, info.Size(), c.root, outputPath)
	if err != nil {
		// A bad blob will never unpack; evict it so the slot can be
		// repopulated after the rebuild.
		c.logger.Warn("evicting corrupt cache entry " + key.String())
		_ = os.Remove(path)
		return domain.CacheResult{Kind: domain.CacheMiss, Err: err}
	}

	return domain.CacheResult{Kind: domain.CacheHit, Metadata: meta}
}

// Store packs outputPath into a temp file and renames it into place, so a
// concurrent fetch never observes a half-written artifact.
func (c *DirCache) Store(_ context.Context, key domain.RuleKey, meta domain.ArtifactMetadata, outputPath string) error {
	tmp, err := os.CreateTemp(c.dir, ".store-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create cache temp file")
	}
	tmpName := tmp.Name()

	if err := pack(tmp, meta, c.root, outputPath); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return zerr.Wrap(err, "failed to finish cache temp file")
	}

	if err := os.Rename(tmpName, c.artifactPath(key)); err != nil {
		_ = os.Remove(tmpName)
		return zerr.With(zerr.Wrap(err, "failed to publish cache entry"), "key", key.String())
	}
	return nil
}

// Close implements ports.ArtifactCache; the dir cache has nothing to flush.
func (c *DirCache) Close(context.Context) error { return nil }
