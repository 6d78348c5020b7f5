package cache

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/yasmramos/forge/internal/adapters/logger"
	"github.com/yasmramos/forge/internal/core/domain"
	"github.com/yasmramos/forge/internal/core/ports"
)

// NodeID is the unique identifier for the artifact cache Graft node.
const NodeID graft.ID = "engine.cache"

func init() {
	graft.Register(graft.Node[ports.ArtifactCache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.ArtifactCache, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(domain.DefaultCachePath(), log)
		},
	})
}
