// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/packsmith/internal/adapters/artifacts"
	_ "go.trai.ch/packsmith/internal/adapters/catalog"
	_ "go.trai.ch/packsmith/internal/adapters/config"
	_ "go.trai.ch/packsmith/internal/adapters/detector"
	_ "go.trai.ch/packsmith/internal/adapters/httpapi"
	_ "go.trai.ch/packsmith/internal/adapters/identity"
	_ "go.trai.ch/packsmith/internal/adapters/logger"
	_ "go.trai.ch/packsmith/internal/adapters/merge"
	_ "go.trai.ch/packsmith/internal/adapters/store"
	_ "go.trai.ch/packsmith/internal/adapters/telemetry"
	_ "go.trai.ch/packsmith/internal/adapters/usage"
	// Register app and engine nodes.
	_ "go.trai.ch/packsmith/internal/app"
	_ "go.trai.ch/packsmith/internal/engine/accounting"
	_ "go.trai.ch/packsmith/internal/engine/fetcher"
	_ "go.trai.ch/packsmith/internal/engine/orchestrator"
	_ "go.trai.ch/packsmith/internal/engine/pipeline"
	_ "go.trai.ch/packsmith/internal/engine/resolver"
	_ "go.trai.ch/packsmith/internal/engine/resultcache"
	_ "go.trai.ch/packsmith/internal/engine/sweeper"
)
