package ports

import "go.trai.ch/packsmith/internal/core/domain"

// ConfigLoader defines the interface for loading the runtime configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration at path. An empty path selects the default file,
	// and a missing default file yields domain.DefaultConfig.
	Load(path string) (*domain.Config, error)
}
