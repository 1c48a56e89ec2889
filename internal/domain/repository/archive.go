package repository

import (
	"context"
	"io"
)

// SearchArchive stores raw search-provider responses for later analysis.
// Archiving is strictly best-effort: resolution never fails because an
// archive write failed.
type SearchArchive interface {
	// Store writes one object under key (e.g., "searches/12_00/<id>.json").
	Store(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error

	// Fetch retrieves an archived object.
	// Caller is responsible for closing the returned ReadCloser.
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)

	// Exists checks whether an object has been archived under key.
	Exists(ctx context.Context, key string) (bool, error)
}
