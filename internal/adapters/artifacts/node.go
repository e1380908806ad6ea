package artifacts

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/packsmith/internal/adapters/config"
	"go.trai.ch/packsmith/internal/core/domain"
	"go.trai.ch/packsmith/internal/core/ports"
)

// NodeID is the unique identifier for the artifact source Graft node.
const NodeID graft.ID = "adapter.artifacts"

func init() {
	graft.Register(graft.Node[ports.ArtifactSource]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.ArtifactSource, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}

			downloader := NewDownloader(cfg.Fetch.Timeout)
			if cfg.Artifacts.CacheDir == "" {
				return downloader, nil
			}
			return NewCachedSource(downloader, cfg.Artifacts.CacheDir)
		},
	})
}
