package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/logo-discovery/internal/config"
	"github.com/JakeFAU/logo-discovery/internal/storage/local"
	"github.com/JakeFAU/logo-discovery/internal/storage/memory"
)

func TestObjectPath(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "logos/ACME/abc123.svg", ObjectPath("logos", "acme", "abc123", ".svg"))
	assert.Equal(t, "logos/BRK_B/ff.png", ObjectPath("/logos/", " brk/b ", "ff", ".png"))
	assert.Equal(t, "X/aa.jpg", ObjectPath("", "x", "aa", ".jpg"))
	assert.Equal(t, "p/_unknown/aa.bin", ObjectPath("p", "", "aa", ".bin"))
	assert.Equal(t, "p/_/aa.bin", ObjectPath("p", "..", "aa", ".bin"))
}

func TestNewBlobStoreBackends(t *testing.T) {
	t.Parallel()

	store, closer, err := NewBlobStore(context.Background(), config.StorageConfig{Backend: config.StorageMemory})
	require.NoError(t, err)
	assert.IsType(t, &memory.BlobStore{}, store)
	assert.NoError(t, closer())

	store, closer, err = NewBlobStore(context.Background(), config.StorageConfig{
		Backend: config.StorageLocal,
		Local:   config.LocalStorageConfig{BaseDir: t.TempDir()},
	})
	require.NoError(t, err)
	assert.IsType(t, &local.BlobStore{}, store)
	assert.NoError(t, closer())

	_, _, err = NewBlobStore(context.Background(), config.StorageConfig{Backend: "s3"})
	assert.Error(t, err)
}
