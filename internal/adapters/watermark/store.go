// Package watermark persists build watermarks in a BoltDB file.
package watermark

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
	"go.trai.ch/zerr"

	"github.com/yasmramos/forge/internal/core/domain"
	"github.com/yasmramos/forge/internal/core/ports"
)

const bucketName = "watermarks"

var _ ports.WatermarkStore = (*Store)(nil)

// Store implements ports.WatermarkStore over bbolt. One bucket, one JSON
// document per project root.
type Store struct {
	db *bbolt.DB
}

// Open opens (or creates) the watermark database at path.
func Open(path string) (*Store, error) {
	path = filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return nil, zerr.Wrap(err, "failed to create directory for watermark database")
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open watermark database"), "path", path)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketName))
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, zerr.Wrap(err, "failed to create watermark bucket")
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the watermark recorded for the project root, or nil when the
// project was never built.
func (s *Store) Load(projectRoot string) (*domain.Watermark, error) {
	var wm *domain.Watermark
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketName)).Get([]byte(projectRoot))
		if data == nil {
			return nil
		}
		wm = &domain.Watermark{}
		return json.Unmarshal(data, wm)
	})
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load watermark")
	}
	return wm, nil
}

// Save durably records the watermark for the project root.
func (s *Store) Save(projectRoot string, wm *domain.Watermark) error {
	data, err := json.Marshal(wm)
	if err != nil {
		return zerr.Wrap(err, "failed to marshal watermark")
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketName)).Put([]byte(projectRoot), data)
	})
	if err != nil {
		return zerr.Wrap(err, "failed to save watermark")
	}
	return nil
}
