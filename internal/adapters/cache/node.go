package cache

import (
	"context"
	"os"
	"path/filepath"

	"github.com/grindlemire/graft"
	"go.trai.ch/forge/internal/adapters/logger"   //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/forge/internal/adapters/settings" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/forge/internal/core/ports"
)

// NodeID is the unique identifier for the artifact cache Graft node.
const NodeID graft.ID = "adapter.artifact_cache"

func init() {
	graft.Register(graft.Node[ports.ArtifactCache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, settings.NodeID},
		Run: func(ctx context.Context) (ports.ArtifactCache, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			cfg, err := graft.Dep[settings.Settings](ctx)
			if err != nil {
				return nil, err
			}

			cwd, err := os.Getwd()
			if err != nil {
				return nil, err
			}

			cacheDir := cfg.CacheDir
			if !filepath.IsAbs(cacheDir) {
				cacheDir = filepath.Join(cwd, cacheDir)
			}

			// Tier order is consult order: local dir first, remote last.
			dir, err := NewDirCache(cacheDir, cwd, log)
			if err != nil {
				return nil, err
			}
			backends := []ports.ArtifactCache{dir}

			if cfg.RemoteCacheURL != "" {
				remote, err := NewHTTPCache(cfg.RemoteCacheURL, cwd, log)
				if err != nil {
					return nil, err
				}
				backends = append(backends, remote)
			}

			return NewMultiCache(log, backends...), nil
		},
	})
}
