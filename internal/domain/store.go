package domain

import (
	"context"
	"errors"
)

// ErrNotFound is returned by BlobStore.Get when no blob exists under the key.
var ErrNotFound = errors.New("store: key not found")

// BlobStore is the flat namespaced key-value persistence substrate.
// Values are opaque JSON-serialized blobs; implementations live in
// internal/storage. The interface lives in domain so consumers depend on
// the abstraction, not the sqlite adapter.
type BlobStore interface {
	// Get returns the blob stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set writes the blob under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
