package ports

import (
	"time"

	"github.com/yasmramos/forge/internal/core/domain"
)

// ArtifactCache maps fingerprints to previously produced compilation
// artifacts. Implementations must be safe for concurrent readers and writers.
//
//go:generate mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type ArtifactCache interface {
	// Get returns the entry for the fingerprint, or nil on a miss. A memory
	// miss falls back to disk before declaring a true miss.
	Get(fp domain.Fingerprint) (*domain.CacheEntry, error)

	// Put stores the entry. The entry is visible to Get before Put returns.
	Put(fp domain.Fingerprint, entry *domain.CacheEntry) error

	// Invalidate removes a single entry.
	Invalidate(fp domain.Fingerprint) error

	// IsValid reports whether the entry exists and its recorded source
	// modification time exactly equals sourceModTime. Any mismatch is a miss.
	IsValid(fp domain.Fingerprint, sourceModTime time.Time) bool

	// Clear removes all entries, in memory and on disk. The cache remains
	// usable (empty) even if parts of the disk cleanup fail.
	Clear() error
}
