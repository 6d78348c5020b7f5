package analyzer

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/yasmramos/forge/internal/adapters/fs"
	"github.com/yasmramos/forge/internal/adapters/logger"
	"github.com/yasmramos/forge/internal/core/ports"
)

// NodeID is the unique identifier for the analyzer Graft node.
const NodeID graft.ID = "engine.analyzer"

func init() {
	graft.Register(graft.Node[*Analyzer]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.WalkerNodeID, fs.HasherNodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Analyzer, error) {
			walker, err := graft.Dep[*fs.Walker](ctx)
			if err != nil {
				return nil, err
			}
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(walker, hasher, log), nil
		},
	})
}
