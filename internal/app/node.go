package app

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/yasmramos/forge/internal/adapters/config"
	"github.com/yasmramos/forge/internal/adapters/logger"
	"github.com/yasmramos/forge/internal/adapters/telemetry"
	"github.com/yasmramos/forge/internal/adapters/watermark"
	"github.com/yasmramos/forge/internal/analyzer"
	"github.com/yasmramos/forge/internal/cache"
	"github.com/yasmramos/forge/internal/core/ports"
	"github.com/yasmramos/forge/internal/engine/scheduler"
	"github.com/yasmramos/forge/internal/resolver"
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
			config.NodeID,
			analyzer.NodeID,
			resolver.NodeID,
			scheduler.NodeID,
			cache.NodeID,
			watermark.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Components, error) {
			application, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return &Components{App: application, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}
	an, err := graft.Dep[*analyzer.Analyzer](ctx)
	if err != nil {
		return nil, err
	}
	res, err := graft.Dep[*resolver.Resolver](ctx)
	if err != nil {
		return nil, err
	}
	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}
	artifactCache, err := graft.Dep[ports.ArtifactCache](ctx)
	if err != nil {
		return nil, err
	}
	store, err := graft.Dep[ports.WatermarkStore](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, an, res, sched, artifactCache, store, log, tracer), nil
}
