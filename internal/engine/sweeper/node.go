package sweeper

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/packsmith/internal/adapters/config" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
)

// NodeID is the unique identifier for the sweeper Graft node.
const NodeID graft.ID = "engine.sweeper"

func init() {
	graft.Register(graft.Node[*Sweeper]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Sweeper, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			s := New(log, cfg.Workspace.SweepInterval, Target{
				Dir:    cfg.Workspace.Root,
				MaxAge: cfg.Workspace.MaxAge,
			})
			if cfg.Artifacts.CacheDir != "" {
				s.AddTarget(Target{Dir: cfg.Artifacts.CacheDir, MaxAge: cfg.Artifacts.MaxAge})
			}
			return s, nil
		},
	})
}
