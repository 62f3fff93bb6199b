package settings

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
)

// NodeID is the unique identifier for the settings Graft node.
const NodeID graft.ID = "adapter.settings"

func init() {
	graft.Register(graft.Node[Settings]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (Settings, error) {
			cwd, err := os.Getwd()
			if err != nil {
				return Settings{}, err
			}
			return Load(cwd, Filename)
		},
	})
}
