// Package cache implements the content-addressable artifact cache: an
// in-memory index backed by one JSON document per fingerprint on disk.
package cache

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/zerr"

	"github.com/yasmramos/forge/internal/core/domain"
	"github.com/yasmramos/forge/internal/core/ports"
)

var _ ports.ArtifactCache = (*Cache)(nil)

// Cache is safe for concurrent readers and writers. Disk is the source of
// truth across restarts; memory is a write-through index over it.
type Cache struct {
	dir    string
	logger ports.Logger

	mu      sync.RWMutex
	entries map[domain.Fingerprint]*domain.CacheEntry
}

// New creates a Cache rooted at dir, creating the directory if needed.
func New(dir string, logger ports.Logger) (*Cache, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create cache directory"), "dir", dir)
	}
	return &Cache{
		dir:     dir,
		logger:  logger,
		entries: make(map[domain.Fingerprint]*domain.CacheEntry),
	}, nil
}

// Get returns the entry for fp, or nil on a miss. A memory miss falls back
// to disk; a disk hit populates the memory index before returning.
func (c *Cache) Get(fp domain.Fingerprint) (*domain.CacheEntry, error) {
	c.mu.RLock()
	entry, ok := c.entries[fp]
	c.mu.RUnlock()
	if ok {
		return entry, nil
	}

	entry, err := c.readDisk(fp)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, nil
	}

	c.mu.Lock()
	c.entries[fp] = entry
	c.mu.Unlock()

	return entry, nil
}

// Put stores the entry. It is visible to Get before Put returns; the disk
// write happens first so a crash never leaves memory ahead of disk for the
// next process.
func (c *Cache) Put(fp domain.Fingerprint, entry *domain.CacheEntry) error {
	if err := c.writeDisk(fp, entry); err != nil {
		// Keep the entry available for this process; the next one just
		// misses and recompiles.
		c.logger.Warn("cache disk write failed for " + fp.String())
	}

	c.mu.Lock()
	c.entries[fp] = entry
	c.mu.Unlock()

	return nil
}

// Invalidate removes a single entry from memory and disk.
func (c *Cache) Invalidate(fp domain.Fingerprint) error {
	c.mu.Lock()
	delete(c.entries, fp)
	c.mu.Unlock()

	if err := os.Remove(c.entryPath(fp)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return zerr.Wrap(err, "failed to remove cache entry")
	}
	return nil
}

// IsValid reports whether fp has an entry whose recorded source modification
// time exactly equals sourceModTime. Any mismatch is a miss.
func (c *Cache) IsValid(fp domain.Fingerprint, sourceModTime time.Time) bool {
	entry, err := c.Get(fp)
	if err != nil || entry == nil {
		return false
	}
	return entry.SourceModTime.Equal(sourceModTime)
}

// Clear removes all entries. Partial disk deletion failures are logged, not
// fatal; the cache stays usable and effectively empty.
func (c *Cache) Clear() error {
	c.mu.Lock()
	c.entries = make(map[domain.Fingerprint]*domain.CacheEntry)
	c.mu.Unlock()

	if err := os.RemoveAll(c.dir); err != nil {
		c.logger.Warn("failed to remove cache directory: " + err.Error())
	}
	if err := os.MkdirAll(c.dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, "failed to recreate cache directory")
	}
	return nil
}

func (c *Cache) entryPath(fp domain.Fingerprint) string {
	return filepath.Join(c.dir, fp.String()+".json")
}

func (c *Cache) readDisk(fp domain.Fingerprint) (*domain.CacheEntry, error) {
	data, err := os.ReadFile(c.entryPath(fp)) //nolint:gosec // Fingerprints are hex strings
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.Wrap(err, "failed to read cache entry")
	}

	entry := &domain.CacheEntry{}
	if err := json.Unmarshal(data, entry); err != nil {
		// A corrupted entry is a miss, not a failure.
		c.logger.Warn("discarding corrupted cache entry " + fp.String())
		return nil, nil
	}
	return entry, nil
}

// writeDisk persists one entry atomically via temp file + rename.
func (c *Cache) writeDisk(fp domain.Fingerprint, entry *domain.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return zerr.Wrap(err, "failed to marshal cache entry")
	}

	tmp, err := os.CreateTemp(c.dir, fp.String()+".tmp-*")
	if err != nil {
		return zerr.Wrap(err, "failed to create temp cache entry")
	}

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to write cache entry")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to close temp cache entry")
	}

	if err := os.Rename(tmp.Name(), c.entryPath(fp)); err != nil {
		_ = os.Remove(tmp.Name())
		return zerr.Wrap(err, "failed to place cache entry")
	}
	return nil
}
