package accounting

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/packsmith/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/adapters/usage"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/packsmith/internal/core/ports"
)

// NodeID is the unique identifier for the accounting Graft node.
const NodeID graft.ID = "engine.accounting"

func init() {
	graft.Register(graft.Node[*Accountant]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			usage.NodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Accountant, error) {
			store, err := graft.Dep[ports.UsageStore](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewAccountant(store, log), nil
		},
	})
}
