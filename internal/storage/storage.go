// Package storage defines where discovered logo bytes and their records are
// persisted and selects a blob backend from configuration.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	gcsclient "cloud.google.com/go/storage"

	"github.com/JakeFAU/logo-discovery/internal/config"
	"github.com/JakeFAU/logo-discovery/internal/storage/gcs"
	"github.com/JakeFAU/logo-discovery/internal/storage/local"
	"github.com/JakeFAU/logo-discovery/internal/storage/memory"
)

// BlobStore persists an object and returns its URI.
type BlobStore interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
}

// ObjectPath builds "<prefix>/<symbol>/<hash><ext>". The symbol is
// upper-cased and stripped of path separators.
func ObjectPath(prefix, symbol, hash, ext string) string {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	sym = strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(sym)
	if sym == "" {
		sym = "_unknown"
	}
	return path.Join(strings.Trim(prefix, "/"), sym, hash+ext)
}

// NewBlobStore builds the configured backend. The returned closer releases
// any client the backend owns.
func NewBlobStore(ctx context.Context, cfg config.StorageConfig) (BlobStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case config.StorageMemory, "":
		return memory.NewBlobStore(), noop, nil
	case config.StorageLocal:
		store, err := local.New(local.Config{BaseDir: cfg.Local.BaseDir})
		if err != nil {
			return nil, nil, fmt.Errorf("local blob store: %w", err)
		}
		return store, noop, nil
	case config.StorageGCS:
		client, err := gcsclient.NewClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("create gcs client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: cfg.Bucket})
		if err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("gcs blob store: %w", err)
		}
		return store, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
