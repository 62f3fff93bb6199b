package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/forge/internal/adapters/fs" //nolint:depguard // Wired in adapter wiring
	"go.trai.ch/forge/internal/core/ports"
)

// NodeID is the unique identifier for the graph loader Graft node.
const NodeID graft.ID = "adapter.graph_loader"

func init() {
	graft.Register(graft.Node[ports.GraphLoader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.HashCacheNodeID},
		Run: func(ctx context.Context) (ports.GraphLoader, error) {
			hashes, err := graft.Dep[ports.FileHashCache](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(hashes), nil
		},
	})
}
