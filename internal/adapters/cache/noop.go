package cache

import (
	"context"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

var _ ports.ArtifactCache = NoopCache{}

// NoopCache misses every fetch and drops every store.
type NoopCache struct{}

// Fetch always misses.
func (NoopCache) Fetch(context.Context, domain.RuleKey, string) domain.CacheResult {
	return domain.CacheResult{Kind: domain.CacheMiss}
}

// Store drops the artifact.
func (NoopCache) Store(context.Context, domain.RuleKey, domain.ArtifactMetadata, string) error {
	return nil
}

// Close has nothing to flush.
func (NoopCache) Close(context.Context) error { return nil }
