// Package storage persists uploaded product images and returns the public
// URL each image is served from.
package storage

import (
	"context"
	"io"
)

// Store writes an uploaded file under a key and returns its public URL.
type Store interface {
	Save(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}
