package repository

import (
	"context"
	"io"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
)

// ImageStorage is the uploads area. Save returns the reference to persist
// on a blog: a path under the public uploads prefix or an absolute URL.
type ImageStorage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (string, error)
	List(ctx context.Context, prefix string) ([]entity.StoredImage, error)
	// Delete returns ErrNotFound when the file does not exist.
	Delete(ctx context.Context, name string) error
	Driver() string
}
