package rulekey

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/forge/internal/adapters/fs" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/forge/internal/build"
	"go.trai.ch/forge/internal/core/ports"
)

// NodeID is the unique identifier for the rule key factory Graft node.
const NodeID graft.ID = "engine.rule_key_factory"

func init() {
	graft.Register(graft.Node[*Factory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.HashCacheNodeID},
		Run: func(ctx context.Context) (*Factory, error) {
			hashes, err := graft.Dep[ports.FileHashCache](ctx)
			if err != nil {
				return nil, err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return nil, err
			}
			return NewFactory(build.Version, cwd, hashes), nil
		},
	})
}
