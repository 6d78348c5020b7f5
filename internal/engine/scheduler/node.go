package scheduler

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/yasmramos/forge/internal/adapters/javac"
	"github.com/yasmramos/forge/internal/adapters/logger"
	"github.com/yasmramos/forge/internal/adapters/telemetry"
	"github.com/yasmramos/forge/internal/cache"
	"github.com/yasmramos/forge/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			javac.NodeID,
			cache.NodeID,
			logger.NodeID,
			telemetry.TracerNodeID,
		},
		Run: func(ctx context.Context) (*Scheduler, error) {
			compiler, err := graft.Dep[ports.Compiler](ctx)
			if err != nil {
				return nil, err
			}
			artifactCache, err := graft.Dep[ports.ArtifactCache](ctx)
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
			return New(compiler, artifactCache, log, tracer), nil
		},
	})
}
