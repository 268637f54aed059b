package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/btlive/pkg/errors"
)

// FileStorage stores each key as a JSON file in a directory.
type FileStorage struct {
	dir string
}

// NewFileStorage creates dir if needed.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create %s", dir)
	}
	return &FileStorage{dir: dir}, nil
}

// fileEntry wraps a stored value with metadata.
type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Get reads key. A corrupt entry is removed and reported as missing.
func (s *FileStorage) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := s.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "read %s", key)
	}

	var entry fileEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return entry.Data, true, nil
}

// Set writes key atomically through a temporary file.
func (s *FileStorage) Set(ctx context.Context, key string, value []byte) error {
	data, err := json.Marshal(fileEntry{Key: key, Data: value, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "encode %s", key)
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	return nil
}

// Delete removes key.
func (s *FileStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete %s", key)
	}
	return nil
}

// Close does nothing.
func (s *FileStorage) Close() error { return nil }

// path spreads keys over subdirectories named by the first two hash chars.
func (s *FileStorage) path(key string) string {
	h := Hash([]byte(key))
	return filepath.Join(s.dir, h[:2], h[2:]+".json")
}

var _ Storage = (*FileStorage)(nil)
