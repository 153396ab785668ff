package ports

import (
	"context"
	"io"
)

// FileStore persists attachment bytes. The default implementation writes to
// local disk; the interface keeps the storage mechanism swappable.
type FileStore interface {
	// Save writes the content and returns the storage path for later reads
	Save(ctx context.Context, key string, content io.Reader) (string, error)

	// Open returns a reader for previously saved content
	Open(ctx context.Context, storagePath string) (io.ReadCloser, error)

	// Remove deletes previously saved content
	Remove(ctx context.Context, storagePath string) error
}
