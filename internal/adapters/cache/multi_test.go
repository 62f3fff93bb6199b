package cache_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"go.trai.ch/forge/internal/adapters/cache"
	"go.trai.ch/forge/internal/core/domain"
	"go.trai.ch/forge/internal/core/ports/mocks"
	"go.trai.ch/zerr"
)

func TestMultiCache_Fetch_NearestTierWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	key := domain.RuleKey{1}
	meta := domain.ArtifactMetadata{Target: "//lib:a", Success: true}

	near := mocks.NewMockArtifactCache(ctrl)
	near.EXPECT().Fetch(gomock.Any(), key, "out/lib.a").
		Return(domain.CacheResult{Kind: domain.CacheHit, Metadata: meta})

	// The far tier must not be consulted at all.
	far := mocks.NewMockArtifactCache(ctrl)

	multi := cache.NewMultiCache(permissiveLogger(t), near, far)
	res := multi.Fetch(context.Background(), key, "out/lib.a")
	if res.Kind != domain.CacheHit {
		t.Fatalf("expected hit, got %v", res.Kind)
	}
	if res.Metadata != meta {
		t.Fatalf("unexpected metadata: %+v", res.Metadata)
	}
}

func TestMultiCache_Fetch_BackfillsNearerTier(t *testing.T) {
	ctrl := gomock.NewController(t)
	key := domain.RuleKey{2}
	meta := domain.ArtifactMetadata{Target: "//lib:b", Success: true}

	near := mocks.NewMockArtifactCache(ctrl)
	near.EXPECT().Fetch(gomock.Any(), key, "out/lib.a").
		Return(domain.CacheResult{Kind: domain.CacheMiss})
	near.EXPECT().Store(gomock.Any(), key, meta, "out/lib.a").Return(nil)

	far := mocks.NewMockArtifactCache(ctrl)
	far.EXPECT().Fetch(gomock.Any(), key, "out/lib.a").
		Return(domain.CacheResult{Kind: domain.CacheHit, Metadata: meta})

	multi := cache.NewMultiCache(permissiveLogger(t), near, far)
	res := multi.Fetch(context.Background(), key, "out/lib.a")
	if res.Kind != domain.CacheHit {
		t.Fatalf("expected hit, got %v", res.Kind)
	}
}

func TestMultiCache_Fetch_BackendErrorDegradesToNextTier(t *testing.T) {
	ctrl := gomock.NewController(t)
	key := domain.RuleKey{3}
	meta := domain.ArtifactMetadata{Target: "//lib:c", Success: true}

	near := mocks.NewMockArtifactCache(ctrl)
	near.EXPECT().Fetch(gomock.Any(), key, "out/lib.a").
		Return(domain.CacheResult{Kind: domain.CacheError, Err: zerr.New("connection refused")})
	near.EXPECT().Store(gomock.Any(), key, meta, "out/lib.a").Return(nil)

	far := mocks.NewMockArtifactCache(ctrl)
	far.EXPECT().Fetch(gomock.Any(), key, "out/lib.a").
		Return(domain.CacheResult{Kind: domain.CacheHit, Metadata: meta})

	multi := cache.NewMultiCache(permissiveLogger(t), near, far)
	res := multi.Fetch(context.Background(), key, "out/lib.a")
	if res.Kind != domain.CacheHit {
		t.Fatalf("expected hit, got %v", res.Kind)
	}
}

func TestMultiCache_Fetch_AllMiss(t *testing.T) {
	ctrl := gomock.NewController(t)
	key := domain.RuleKey{4}

	near := mocks.NewMockArtifactCache(ctrl)
	near.EXPECT().Fetch(gomock.Any(), key, "out").
		Return(domain.CacheResult{Kind: domain.CacheMiss})
	far := mocks.NewMockArtifactCache(ctrl)
	far.EXPECT().Fetch(gomock.Any(), key, "out").
		Return(domain.CacheResult{Kind: domain.CacheError, Err: zerr.New("boom")})

	multi := cache.NewMultiCache(permissiveLogger(t), near, far)
	res := multi.Fetch(context.Background(), key, "out")
	if res.Kind != domain.CacheMiss {
		t.Fatalf("expected miss, got %v", res.Kind)
	}
}

func TestMultiCache_Store_FansOutPastFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	key := domain.RuleKey{5}
	meta := domain.ArtifactMetadata{Target: "//lib:e", Success: true}

	near := mocks.NewMockArtifactCache(ctrl)
	near.EXPECT().Store(gomock.Any(), key, meta, "out").Return(zerr.New("disk full"))
	far := mocks.NewMockArtifactCache(ctrl)
	far.EXPECT().Store(gomock.Any(), key, meta, "out").Return(nil)

	multi := cache.NewMultiCache(permissiveLogger(t), near, far)
	if err := multi.Store(context.Background(), key, meta, "out"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMultiCache_Close_JoinsBackendErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	closeErr := zerr.New("flush failed")

	near := mocks.NewMockArtifactCache(ctrl)
	near.EXPECT().Close(gomock.Any()).Return(nil)
	far := mocks.NewMockArtifactCache(ctrl)
	far.EXPECT().Close(gomock.Any()).Return(closeErr)

	multi := cache.NewMultiCache(permissiveLogger(t), near, far)
	if err := multi.Close(context.Background()); !errors.Is(err, closeErr) {
		t.Fatalf("expected flush error, got %v", err)
	}
}
