// Package photostore stores files attached to backend records.
package photostore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("photo not found")

// PhotoStore keeps files grouped by owner, one owner per record
// ("gardens/<id>"). Keys returned by Save are the stored file names and are
// unique within the owner.
type PhotoStore interface {
	Save(ctx context.Context, owner, filename, mimeType string, r io.Reader) (key string, err error)
	Get(ctx context.Context, owner, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, owner, key string) error
	DeleteAll(ctx context.Context, owner string) error
}
