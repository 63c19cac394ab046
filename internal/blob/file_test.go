package blob

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = s.Read(ctx, "snapshot.json")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Write(ctx, "snapshot.json", []byte(`{"version":1}`)))
	data, err := s.Read(ctx, "snapshot.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":1}`, string(data))

	require.NoError(t, s.Delete(ctx, "snapshot.json"))
	_, err = s.Read(ctx, "snapshot.json")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreQuota(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir(), 4)
	require.NoError(t, err)

	require.NoError(t, s.Write(ctx, "k", []byte("abcd")))
	err = s.Write(ctx, "k", []byte("abcde"))
	require.ErrorIs(t, err, ErrQuotaExceeded)

	data, err := s.Read(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(data), "rejected write must not touch the previous blob")
}
