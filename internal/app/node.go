package app

import (
	"context"
	"io"

	"github.com/grindlemire/graft"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/packsmith/internal/adapters/catalog"   //nolint:depguard // Wired in app layer
	"go.trai.ch/packsmith/internal/adapters/config"    //nolint:depguard // Wired in app layer
	"go.trai.ch/packsmith/internal/adapters/httpapi"   //nolint:depguard // Wired in app layer
	"go.trai.ch/packsmith/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"go.trai.ch/packsmith/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"go.trai.ch/packsmith/internal/adapters/usage"     //nolint:depguard // Wired in app layer
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
	"go.trai.ch/packsmith/internal/engine/accounting"
	"go.trai.ch/packsmith/internal/engine/pipeline"
	"go.trai.ch/packsmith/internal/engine/resultcache"
	"go.trai.ch/packsmith/internal/engine/sweeper"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			pipeline.NodeID,
			sweeper.NodeID,
			resultcache.NodeID,
			accounting.NodeID,
			catalog.NodeID,
			httpapi.NodeID,
			telemetry.ProviderNodeID,
			usage.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
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
			return &Components{App: app, Logger: log, Config: cfg}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	var deps Deps

	builder, err := graft.Dep[*pipeline.Builder](ctx)
	if err != nil {
		return nil, err
	}
	deps.Builds = builder

	sw, err := graft.Dep[*sweeper.Sweeper](ctx)
	if err != nil {
		return nil, err
	}
	deps.Sweeper = sw

	cache, err := graft.Dep[*resultcache.Cache](ctx)
	if err != nil {
		return nil, err
	}
	deps.Cache = cache

	accountant, err := graft.Dep[*accounting.Accountant](ctx)
	if err != nil {
		return nil, err
	}
	deps.Usage = accountant

	if deps.Catalog, err = graft.Dep[ports.Catalog](ctx); err != nil {
		return nil, err
	}

	server, err := graft.Dep[*httpapi.Server](ctx)
	if err != nil {
		return nil, err
	}
	deps.Server = server

	provider, err := graft.Dep[*sdktrace.TracerProvider](ctx)
	if err != nil {
		return nil, err
	}
	deps.Shutdowners = append(deps.Shutdowners, provider)

	store, err := graft.Dep[ports.UsageStore](ctx)
	if err != nil {
		return nil, err
	}
	if closer, ok := store.(io.Closer); ok {
		deps.Closers = append(deps.Closers, closer)
	}

	if deps.Logger, err = graft.Dep[ports.Logger](ctx); err != nil {
		return nil, err
	}

	return New(deps), nil
}
