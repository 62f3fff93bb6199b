package fs

import (
	"io"
	"os"
	"sync"
	"unique"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/forge/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.FileHashCache = (*HashCache)(nil)

// shardCount is a power of two so the shard pick is a cheap mask.
const shardCount = 32

// HashCache memoizes content hashes by path. Rule key computation hits it
// from every engine worker at once, so the map is striped into shards with
// per-shard locks instead of one global mutex.
type HashCache struct {
	walker  *Walker
	ignores []string
	shards  [shardCount]hashShard
}

type hashShard struct {
	mu      sync.RWMutex
	entries map[unique.Handle[string]]uint64
}

// NewHashCache creates an empty cache. ignores lists directory names that
// never contribute to a directory hash.
func NewHashCache(walker *Walker, ignores []string) *HashCache {
	c := &HashCache{walker: walker, ignores: ignores}
	for i := range c.shards {
		c.shards[i].entries = make(map[unique.Handle[string]]uint64)
	}
	return c
}

func (c *HashCache) shard(h unique.Handle[string]) *hashShard {
	return &c.shards[xxhash.Sum64String(h.Value())&(shardCount-1)]
}

// Get returns the memoized content hash for path, computing it on a miss.
// An invalidated path is recomputed on its next Get; a stale hash is never
// served.
func (c *HashCache) Get(path string) (uint64, error) {
	handle := unique.Make(path)
	shard := c.shard(handle)

	shard.mu.RLock()
	h, ok := shard.entries[handle]
	shard.mu.RUnlock()
	if ok {
		return h, nil
	}

	h, err := c.computeHash(path)
	if err != nil {
		return 0, err
	}

	// A concurrent Get may have raced us here; both computed the same
	// content so last-write-wins is benign.
	shard.mu.Lock()
	shard.entries[handle] = h
	shard.mu.Unlock()

	return h, nil
}

// Invalidate drops the memoized hash for path.
func (c *HashCache) Invalidate(path string) {
	handle := unique.Make(path)
	shard := c.shard(handle)

	shard.mu.Lock()
	delete(shard.entries, handle)
	shard.mu.Unlock()
}

// InvalidateAll drops every memoized hash. Used when the change watcher
// overflows and individual change notifications were lost.
func (c *HashCache) InvalidateAll() {
	for i := range c.shards {
		shard := &c.shards[i]
		shard.mu.Lock()
		shard.entries = make(map[unique.Handle[string]]uint64)
		shard.mu.Unlock()
	}
}

// computeHash hashes a file's content, or a directory's files in lexical
// order with each path mixed in alongside its content.
func (c *HashCache) computeHash(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to stat path"), "path", path)
	}

	if !info.IsDir() {
		return c.hashFile(path)
	}

	files, err := c.walker.WalkFiles(path, c.ignores)
	if err != nil {
		return 0, err
	}

	digest := xxhash.New()
	for _, filePath := range files {
		h, err := c.hashFile(filePath)
		if err != nil {
			return 0, err
		}
		_, _ = digest.WriteString(filePath)
		_, _ = digest.Write([]byte{0})
		var buf [8]byte
		for i := range buf {
			buf[i] = byte(h >> (8 * i))
		}
		_, _ = digest.Write(buf[:])
	}
	return digest.Sum64(), nil
}

func (c *HashCache) hashFile(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to open file"), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, "failed to hash file content"), "path", path)
	}

	return digest.Sum64(), nil
}
