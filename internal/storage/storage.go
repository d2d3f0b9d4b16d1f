// Package storage handles ticket attachments. The interface mirrors the
// hosted bucket the frontend used to talk to; the disk implementation keeps
// the same per-user path layout so objects stay portable.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrInvalidPath = errors.New("invalid object path")

type Object struct {
	Path      string `json:"path"`
	PublicURL string `json:"publicUrl"`
}

type BlobStore interface {
	// Upload stores the stream under {userID}/{folder}/ and returns the
	// object path plus its public URL.
	Upload(ctx context.Context, userID, folder, filename, contentType string, r io.Reader) (Object, error)
	Delete(ctx context.Context, path string) error
}
