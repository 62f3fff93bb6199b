package cache

import (
	"context"
	"errors"

	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports"
)

var _ ports.ArtifactCache = (*MultiCache)(nil)

// MultiCache consults backends in priority order, nearest first. A backend
// error never blocks the next backend; with every backend down the build
// still proceeds, just without cache hits.
type MultiCache struct {
	backends []ports.ArtifactCache
	logger   ports.Logger
}

// NewMultiCache composes backends; earlier entries are consulted first.
func NewMultiCache(logger ports.Logger, backends ...ports.ArtifactCache) *MultiCache {
	return &MultiCache{backends: backends, logger: logger}
}

// Fetch tries each backend in order. A hit from a later backend is stored
// back into the earlier ones so the next build hits the nearer tier.
func (c *MultiCache) Fetch(ctx context.Context, key domain.RuleKey, outputPath string) domain.CacheResult {
	for i, backend := range c.backends {
		res := backend.Fetch(ctx, key, outputPath)
		switch res.Kind {
		case domain.CacheHit:
			for _, nearer := range c.backends[:i] {
				if err := nearer.Store(ctx, key, res.Metadata, outputPath); err != nil {
					c.logger.Warn("cache backfill failed for " + key.String() + ": " + err.Error())
				}
			}
			return res
		case domain.CacheError:
			c.logger.Warn("cache backend error for " + key.String() + ": " + res.Err.Error())
		case domain.CacheMiss:
			if res.Err != nil {
				c.logger.Warn("cache entry rejected for " + key.String() + ": " + res.Err.Error())
			}
		}
	}
	return domain.CacheResult{Kind: domain.CacheMiss}
}

// Store fans out to every backend. Failures are logged and dropped.
func (c *MultiCache) Store(ctx context.Context, key domain.RuleKey, meta domain.ArtifactMetadata, outputPath string) error {
	for _, backend := range c.backends {
		if err := backend.Store(ctx, key, meta, outputPath); err != nil {
			c.logger.Warn("cache store failed for " + key.String() + ": " + err.Error())
		}
	}
	return nil
}

// Close closes every backend and joins their errors.
func (c *MultiCache) Close(ctx context.Context) error {
	var errs error
	for _, backend := range c.backends {
		errs = errors.Join(errs, backend.Close(ctx))
	}
	return errs
}
