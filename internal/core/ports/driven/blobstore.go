package driven

import "context"

// BlobStore persists opaque blobs under string keys.
// Records live under the emails/ namespace, results under results/.
type BlobStore interface {
	// List returns all keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Get retrieves a blob by key.
	// Returns domain.ErrNotFound when the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put stores a blob at the given key, overwriting any prior value.
	Put(ctx context.Context, key string, data []byte) error
}
