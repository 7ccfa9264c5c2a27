package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/hyperjump/kotae/internal/models"
)

// ImageStore persists the image-record index as a top-level JSON array. Appends
// go through a load-modify-save sequence guarded by a file lock, so concurrent
// image arrivals (or a second process) cannot silently drop records.
type ImageStore struct {
	path string
	lock *flock.Flock
}

// NewImageStore creates an image index store backed by the JSON file at path.
func NewImageStore(path string) *ImageStore {
	return &ImageStore{
		path: path,
		lock: flock.New(path + ".lock"),
	}
}

// Path returns the backing file path.
func (s *ImageStore) Path() string {
	return s.path
}

// Load reads all records from disk. A missing or corrupt file yields an empty
// list and no error.
func (s *ImageStore) Load() ([]models.ImageRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []models.ImageRecord{}, nil
		}
		return nil, fmt.Errorf("read image index: %w", err)
	}
	var recs []models.ImageRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return []models.ImageRecord{}, nil
	}
	return recs, nil
}

// Append adds rec to the durable index. The whole load-append-save sequence
// holds an exclusive file lock.
func (s *ImageStore) Append(rec models.ImageRecord) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock image index: %w", err)
	}
	defer s.lock.Unlock()

	recs, err := s.Load()
	if err != nil {
		return err
	}
	recs = append(recs, rec)
	data, err := json.Marshal(recs)
	if err != nil {
		return fmt.Errorf("marshal image index: %w", err)
	}
	return writeFileAtomic(s.path, data)
}
