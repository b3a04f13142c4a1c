package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rfenwick/relayd/internal/models"
	"go.uber.org/zap"
)

// FileStore keeps the collection in a single JSON document on disk.
type FileStore struct {
	path   string
	logger *zap.Logger
}

func NewFileStore(path string, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load reads the whole document. A missing file is a normal first run and
// yields an empty collection. An unreadable or unparsable file also yields an
// empty collection, but is logged loudly: continuing past it means the old
// contents will be overwritten on the next save.
func (f *FileStore) Load() (*models.Store, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return &models.Store{}, nil
	}
	if err != nil {
		f.logger.Warn("store file unreadable, continuing with empty collection",
			zap.String("path", f.path),
			zap.Error(err))
		return &models.Store{}, nil
	}

	var st models.Store
	if err := json.Unmarshal(data, &st); err != nil {
		f.logger.Warn("store file corrupt, continuing with empty collection",
			zap.String("path", f.path),
			zap.Error(err))
		return &models.Store{}, nil
	}
	return &st, nil
}

// Save writes the whole document, replacing prior contents. The write goes
// through a temp file in the same directory and an atomic rename so a crash
// leaves either the old document or the new one, never a partial write.
func (f *FileStore) Save(st *models.Store) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".store-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}
