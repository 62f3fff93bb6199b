package ports

import (
	"context"

	"go.trai.ch/forge/internal/core/domain"
)

// ArtifactCache maps rule keys to packed build outputs. Backends compose:
// the engine talks to one cache which may fan out to a local directory cache
// and a remote cache in priority order. Cache failures are never fatal to a
// build; a failed fetch degrades to a miss and a failed store is dropped.
//
//go:generate go run go.uber.org/mock/mockgen -source=artifact_cache.go -destination=mocks/mock_artifact_cache.go -package=mocks
type ArtifactCache interface {
	// Fetch looks up key and, on a hit, unpacks the artifact into outputPath
	// atomically. outputPath is relative to the build root the cache was
	// created with. A partially unpacked artifact must never be left looking
	// complete; unpack failures surface as a miss.
	Fetch(ctx context.Context, key domain.RuleKey, outputPath string) domain.CacheResult

	// Store packs outputPath, relative to the build root, and records it
	// under key. Implementations may store asynchronously and best-effort.
	Store(ctx context.Context, key domain.RuleKey, meta domain.ArtifactMetadata, outputPath string) error

	// Close flushes pending asynchronous stores, bounded by ctx's deadline.
	Close(ctx context.Context) error
}
