package fetcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/packsmith/internal/adapters/artifacts" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
)

// NodeID is the unique identifier for the fetcher Graft node.
const NodeID graft.ID = "engine.fetcher"

func init() {
	graft.Register(graft.Node[*Fetcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			artifacts.NodeID,
			config.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Fetcher, error) {
			source, err := graft.Dep[ports.ArtifactSource](ctx)
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

			return NewFetcher(source, log, cfg.Fetch.Concurrency), nil
		},
	})
}
