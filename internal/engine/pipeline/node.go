package pipeline

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/packsmith/internal/adapters/catalog"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/adapters/httpapi"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/adapters/identity"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/packsmith/internal/engine/accounting"
	"go.trai.ch/packsmith/internal/engine/fetcher"
	"go.trai.ch/packsmith/internal/engine/orchestrator"
	"go.trai.ch/packsmith/internal/engine/resolver"
	"go.trai.ch/packsmith/internal/engine/resultcache"
)

// NodeID is the unique identifier for the pipeline Graft node.
const NodeID graft.ID = "engine.pipeline"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			catalog.NodeID,
			config.NodeID,
			identity.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
			resolver.NodeID,
			fetcher.NodeID,
			orchestrator.NodeID,
			resultcache.NodeID,
			accounting.NodeID,
		},
		Run: func(ctx context.Context) (*Builder, error) {
			var deps Deps
			var err error

			if deps.Catalog, err = graft.Dep[ports.Catalog](ctx); err != nil {
				return nil, err
			}
			if deps.Identity, err = graft.Dep[ports.IdentityResolver](ctx); err != nil {
				return nil, err
			}
			if deps.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
				return nil, err
			}
			if deps.Tracer, err = graft.Dep[ports.Tracer](ctx); err != nil {
				return nil, err
			}
			if deps.Resolver, err = graft.Dep[*resolver.Resolver](ctx); err != nil {
				return nil, err
			}
			if deps.Fetcher, err = graft.Dep[*fetcher.Fetcher](ctx); err != nil {
				return nil, err
			}
			if deps.Orchestrator, err = graft.Dep[*orchestrator.Orchestrator](ctx); err != nil {
				return nil, err
			}
			if deps.Cache, err = graft.Dep[*resultcache.Cache](ctx); err != nil {
				return nil, err
			}
			if deps.Accountant, err = graft.Dep[*accounting.Accountant](ctx); err != nil {
				return nil, err
			}

			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			return NewBuilder(deps, Options{
				TempRoot:           cfg.Workspace.Root,
				LatestPlatform:     cfg.Platform.Latest,
				SupportedPlatforms: cfg.Platform.Supported,
			}), nil
		},
	})

	graft.Register(graft.Node[ports.BuildService]{
		ID:        httpapi.BuildServiceNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (ports.BuildService, error) {
			b, err := graft.Dep[*Builder](ctx)
			if err != nil {
				return nil, err
			}
			return b, nil
		},
	})
}
