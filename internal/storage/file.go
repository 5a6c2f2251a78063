package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// FileStore keeps the value in <dir>/<key>.json. Writes go to a temporary
// file that is renamed over the target, so a crash never leaves half a
// collection behind.
type FileStore struct {
	mu   sync.Mutex
	dir  string
	path string
}

func NewFileStore(dir, key string) (*FileStore, error) {
	if key == "" {
		return nil, fmt.Errorf("file store: empty key")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{
		dir:  dir,
		path: filepath.Join(dir, key+".json"),
	}, nil
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(ctx context.Context) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, storeError("file load", err)
	}
	return data, true, nil
}

func (s *FileStore) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(s.dir, ".tasks-*.tmp")
	if err != nil {
		return storeError("file save", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storeError("file save", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return storeError("file save", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return storeError("file save", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return storeError("file save", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
