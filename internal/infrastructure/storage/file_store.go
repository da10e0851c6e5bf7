package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/grocerlist/usdaimport/internal/domain"
)

// FileStore persists the catalogue snapshot as a single JSON array
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the JSON file at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the snapshot location
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the snapshot. It returns domain.ErrSnapshotNotFound when no
// snapshot has been written yet.
func (s *FileStore) Load(ctx context.Context) ([]domain.GroceryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("snapshot: read %q: %w", s.path, err)
	}

	var items []domain.GroceryItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("snapshot: decode %q: %w", s.path, err)
	}
	return items, nil
}

// Save overwrites the snapshot with items. The document is written to a
// temporary file next to the target and renamed into place, so a failed
// write leaves the previous snapshot intact.
func (s *FileStore) Save(ctx context.Context, items []domain.GroceryItem) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	if items == nil {
		items = []domain.GroceryItem{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("snapshot: create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("snapshot: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("snapshot: write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("snapshot: sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: close temp file: %w", err)
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("snapshot: chmod temp file: %w", err)
	}
	if err = os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("snapshot: replace %q: %w", s.path, err)
	}
	return nil
}
