package httpapi

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/packsmith/internal/adapters/config"
	"go.trai.ch/packsmith/internal/adapters/logger"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
)

// NodeID is the unique identifier for the HTTP server Graft node.
const NodeID graft.ID = "adapter.httpapi"

// BuildServiceNodeID names the node providing ports.BuildService. It is registered
// by the build pipeline.
const BuildServiceNodeID graft.ID = "engine.build_service"

func init() {
	graft.Register(graft.Node[*Server]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{BuildServiceNodeID, config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Server, error) {
			builds, err := graft.Dep[ports.BuildService](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewServer(cfg.Server.Addr, NewHandler(builds, log), log), nil
		},
	})
}
