package fetch

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/yasmramos/forge/internal/core/ports"
)

const NodeID graft.ID = "adapter.fetcher"

func init() {
	graft.Register(graft.Node[ports.Fetcher]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.Fetcher, error) {
			return New(), nil
		},
	})
}
