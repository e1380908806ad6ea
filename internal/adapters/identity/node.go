package identity

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/packsmith/internal/adapters/config"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
)

// NodeID is the unique identifier for the identity resolver Graft node.
const NodeID graft.ID = "adapter.identity"

func init() {
	graft.Register(graft.Node[ports.IdentityResolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.IdentityResolver, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewResolver(cfg.Identity.Secret), nil
		},
	})
}
