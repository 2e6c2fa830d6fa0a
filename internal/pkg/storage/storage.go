package storage

import (
	"context"
	"io"
	"time"
)

// Storage defines the interface for image file backends. The resolver
// reads parent bytes through Get and writes derived variants through Put;
// the variant worker uses Exists and ListOlderThan for integrity sweeps.
type Storage interface {
	// Put stores a file under the given key and returns an error on failure.
	Put(ctx context.Context, key string, reader io.Reader, contentType string) error

	// Get retrieves a file by its key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes a file by its key. Returns nil if the file doesn't exist.
	Delete(ctx context.Context, key string) error

	// Exists reports whether a file is present under the given key.
	Exists(ctx context.Context, key string) (bool, error)

	// GetURL returns the public URL for a file given its key.
	GetURL(key string) string

	// ListOlderThan returns the keys of files older than maxAge. Backends
	// with native lifecycle rules may return nil.
	ListOlderThan(ctx context.Context, maxAge time.Duration) ([]string, error)
}
