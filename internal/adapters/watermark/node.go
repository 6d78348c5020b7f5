package watermark

import (
	"context"

	"github.com/grindlemire/graft"

	"github.com/yasmramos/forge/internal/core/domain"
	"github.com/yasmramos/forge/internal/core/ports"
)

// NodeID is the unique identifier for the watermark store Graft node.
const NodeID graft.ID = "adapter.watermark_store"

func init() {
	graft.Register(graft.Node[ports.WatermarkStore]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.WatermarkStore, error) {
			return Open(domain.DefaultWatermarkDBPath())
		},
	})
}
