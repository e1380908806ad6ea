package usage

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/packsmith/internal/adapters/config"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
)

// NodeID is the unique identifier for the usage store Graft node.
const NodeID graft.ID = "adapter.usage"

func init() {
	graft.Register(graft.Node[ports.UsageStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.UsageStore, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			if cfg.Accounting.Database == "" {
				return NewMemoryStore(), nil
			}
			return OpenSQLiteStore(cfg.Accounting.Database)
		},
	})
}
