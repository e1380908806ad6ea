package resultcache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/packsmith/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/adapters/store"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
)

// NodeID is the unique identifier for the result cache Graft node.
const NodeID graft.ID = "engine.resultcache"

func init() {
	graft.Register(graft.Node[*Cache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			store.NodeID,
			config.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Cache, error) {
			results, err := graft.Dep[ports.ResultStore](ctx)
			if err != nil {
				return nil, err
			}

			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(results, log, cfg.Cache.TTL), nil
		},
	})
}
