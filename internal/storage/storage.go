package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNotExist is returned by Load when no document has been stored under the
// requested name yet.
var ErrNotExist = errors.New("document does not exist")

// Backend persists whole collections as opaque JSON documents keyed by name.
type Backend interface {
	Load(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
	Close() error
}

// Open returns the backend named by driver ("file" or "sqlite") rooted at
// dataDir.
func Open(driver, dataDir string) (Backend, error) {
	switch driver {
	case "", "file":
		return NewFileStorage(dataDir)
	case "sqlite":
		return NewSQLiteStorage(dataDir)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

// FileStorage keeps each collection in <basePath>/<name>.json.
type FileStorage struct {
	basePath string
}

func NewFileStorage(basePath string) (*FileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStorage{basePath: basePath}, nil
}

func (fs *FileStorage) Load(_ context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(fs.GetFilePath(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotExist
		}
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

// Save replaces the whole document. The data is written to a temporary file
// in the same directory and renamed over the old one, so a failed write
// leaves the previous document intact.
func (fs *FileStorage) Save(_ context.Context, name string, data []byte) error {
	tmp, err := os.CreateTemp(fs.basePath, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, fs.GetFilePath(name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}
	return nil
}

func (fs *FileStorage) Close() error {
	return nil
}

func (fs *FileStorage) GetFilePath(name string) string {
	return filepath.Join(fs.basePath, name+".json")
}
