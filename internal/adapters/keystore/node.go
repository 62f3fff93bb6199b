package keystore

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/forge/internal/core/ports"
)

// NodeID is the unique identifier for the rule key store Graft node.
const NodeID graft.ID = "adapter.rule_key_store"

func init() {
	graft.Register(graft.Node[ports.RuleKeyStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.RuleKeyStore, error) {
			return NewStore(DefaultPath)
		},
	})
}
