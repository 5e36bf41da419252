package repositories

import (
	"context"
	"io"
)

// BlobStore holds file content addressed by its SHA-256 hex digest.
type BlobStore interface {
	// Put stores content and returns its key. Storing identical bytes twice is a no-op.
	Put(ctx context.Context, content []byte, contentType string) (string, error)

	// Open streams the content stored under key. Returns domain.ErrNotFound when absent.
	Open(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content under key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
