package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/noah-isme/course-admin-store/pkg/storage"
)

// FileStore keeps each key as a file under a directory.
type FileStore struct {
	storage  *storage.LocalStorage
	maxBytes int64
}

// NewFileStore creates a file backed store rooted at dir. maxBytes <= 0
// disables the size quota.
func NewFileStore(dir string, maxBytes int64) (*FileStore, error) {
	ls, err := storage.NewLocalStorage(dir)
	if err != nil {
		return nil, err
	}
	return &FileStore{storage: ls, maxBytes: maxBytes}, nil
}

// Read returns the blob stored under key.
func (s *FileStore) Read(_ context.Context, key string) ([]byte, error) {
	data, err := s.storage.Read(key)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Write replaces the blob stored under key.
func (s *FileStore) Write(_ context.Context, key string, data []byte) error {
	if err := checkQuota(s.maxBytes, data); err != nil {
		return err
	}
	if err := s.storage.Save(key, data); err != nil {
		if errors.Is(err, syscall.ENOSPC) || errors.Is(err, syscall.EDQUOT) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return err
	}
	return nil
}

// Delete removes the blob stored under key.
func (s *FileStore) Delete(_ context.Context, key string) error {
	return s.storage.Delete(key)
}

// Path returns the file that holds key.
func (s *FileStore) Path(key string) string {
	return s.storage.Path(key)
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}
