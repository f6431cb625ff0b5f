package imagestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"parklot-service/internal/domain/parking"
)

// Store persists captured images. Save must complete before the event
// row is written so image refs never dangle.
type Store interface {
	Save(category parking.Category, image []byte) (ref string, err error)
}

// FileStore writes images under a root directory, partitioned by capture
// category. The returned ref is relative to the root.
type FileStore struct {
	root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) Save(category parking.Category, image []byte) (string, error) {
	dir := filepath.Join(s.root, string(category))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: create image directory: %v", parking.ErrStorage, err)
	}

	name := uuid.NewString() + ".jpg"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, image, 0o644); err != nil {
		return "", fmt.Errorf("%w: write image: %v", parking.ErrStorage, err)
	}

	return filepath.ToSlash(filepath.Join(string(category), name)), nil
}
