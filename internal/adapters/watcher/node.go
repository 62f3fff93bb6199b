package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/forge/internal/adapters/fs"       //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/forge/internal/adapters/logger"   //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/forge/internal/adapters/settings" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/forge/internal/core/ports"
)

// NodeID is the unique identifier for the watcher Graft node.
const NodeID graft.ID = "adapter.watcher"

func init() {
	graft.Register(graft.Node[ports.ChangeWatcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.HashCacheNodeID, logger.NodeID, settings.NodeID},
		Run: func(ctx context.Context) (ports.ChangeWatcher, error) {
			hashes, err := graft.Dep[ports.FileHashCache](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			cfg, err := graft.Dep[settings.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return NewWatcher(hashes, log, cfg.Ignore)
		},
	})
}
