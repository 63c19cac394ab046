// Package blob provides the durable key/value stores that hold serialized
// store snapshots.
package blob

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no blob exists under the key.
	ErrNotFound = errors.New("blob not found")
	// ErrQuotaExceeded is returned when the backend refuses a write for
	// capacity reasons.
	ErrQuotaExceeded = errors.New("blob storage quota exceeded")
)

// Store is a durable single-key blob store.
type Store interface {
	Read(ctx context.Context, key string) ([]byte, error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

func checkQuota(maxBytes int64, data []byte) error {
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return ErrQuotaExceeded
	}
	return nil
}
