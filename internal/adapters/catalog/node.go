package catalog

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/packsmith/internal/adapters/config"
	"go.trai.ch/packsmith/internal/adapters/logger"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
)

// NodeID is the unique identifier for the catalog Graft node.
const NodeID graft.ID = "adapter.catalog"

func init() {
	graft.Register(graft.Node[ports.Catalog]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Catalog, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			switch {
			case cfg.Catalog.File != "":
				return NewFileCatalog(cfg.Catalog.File, log)
			case cfg.Catalog.URL != "":
				return NewHTTPCatalog(cfg.Catalog.URL, cfg.Catalog.Timeout, cfg.Catalog.TTL), nil
			default:
				log.Warn("no catalog configured, every package is unknown")
				return NewStaticCatalog(nil, log), nil
			}
		},
	})
}
