// Package store persists the text and image indexes as plain JSON files.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/kotae/internal/models"
)

// TextStore persists the text-chunk index. The whole file is overwritten on
// every rebuild; a missing or unparsable file loads as an empty index so the
// engine can fall back to a lazy rebuild.
type TextStore struct {
	path string
}

// NewTextStore creates a text index store backed by the JSON file at path.
func NewTextStore(path string) *TextStore {
	return &TextStore{path: path}
}

// Path returns the backing file path.
func (s *TextStore) Path() string {
	return s.path
}

// Load reads the index from disk. A missing or corrupt file yields an empty
// index and no error.
func (s *TextStore) Load() (*models.TextIndex, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &models.TextIndex{}, nil
		}
		return nil, fmt.Errorf("read text index: %w", err)
	}
	var idx models.TextIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		// Treat unparsable state as absent; the caller rebuilds.
		return &models.TextIndex{}, nil
	}
	return &idx, nil
}

// Save writes the full index to disk, replacing any previous contents.
func (s *TextStore) Save(idx *models.TextIndex) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("marshal text index: %w", err)
	}
	return writeFileAtomic(s.path, data)
}

// writeFileAtomic writes data to path via a temp file and rename so readers
// never observe a half-written index.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
