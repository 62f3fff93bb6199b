package ports

// FileHashCache memoizes content hashes of filesystem paths so that rule key
// computation does not re-read unchanged files. Implementations are read from
// many engine workers concurrently and must never return a hash for a path
// that was invalidated but not yet recomputed.
//
//go:generate go run go.uber.org/mock/mockgen -source=file_hash_cache.go -destination=mocks/mock_file_hash_cache.go -package=mocks
type FileHashCache interface {
	// Get returns the content hash for path, computing and memoizing it on a
	// cache miss. Directories hash to a digest over their files in sorted
	// order.
	Get(path string) (uint64, error)

	// Invalidate drops the memoized hash for path; the next Get recomputes.
	Invalidate(path string)

	// InvalidateAll drops every memoized hash, e.g. after a watcher event
	// queue overflow.
	InvalidateAll()
}
