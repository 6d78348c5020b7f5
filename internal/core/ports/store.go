package ports

import "github.com/yasmramos/forge/internal/core/domain"

// WatermarkStore persists the build watermark across process restarts.
// Read at the start of a change analysis, written after a successful build.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type WatermarkStore interface {
	// Load returns the watermark for the project root, or nil when none was
	// ever recorded.
	Load(projectRoot string) (*domain.Watermark, error)

	// Save durably records the watermark for the project root.
	Save(projectRoot string, wm *domain.Watermark) error
}
