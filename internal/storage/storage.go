package storage

import (
	"context"
	"errors"
	"io"
)

var ErrObjectNotFound = errors.New("object not found")

// BlobStore keeps uploaded files and backups. Delete is idempotent: removing
// a path that does not exist is not an error.
type BlobStore interface {
	Store(ctx context.Context, path string, r io.Reader, size int64, contentType string) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
