package storage

import (
	"context"
	"errors"
	"io"
	"path"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/iterator"

	"github.com/oksasatya/go-ddd-blog/internal/domain/entity"
	"github.com/oksasatya/go-ddd-blog/internal/domain/repository"
	"github.com/oksasatya/go-ddd-blog/pkg/helpers"
)

// GCSStore keeps images as public objects under Folder in a bucket.
// Saved references are absolute object URLs.
type GCSStore struct {
	Client *gcs.Client
	Bucket string
	Folder string
}

func NewGCSStore(client *gcs.Client, bucket, folder string) *GCSStore {
	return &GCSStore{Client: client, Bucket: bucket, Folder: folder}
}

func (s *GCSStore) Driver() string { return "gcs" }

func (s *GCSStore) object(name string) string {
	if s.Folder == "" {
		return name
	}
	return path.Join(s.Folder, name)
}

func (s *GCSStore) Save(ctx context.Context, name, contentType string, r io.Reader) (string, error) {
	return helpers.UploadObject(ctx, s.Client, s.Bucket, s.object(name), contentType, r)
}

func (s *GCSStore) List(ctx context.Context, prefix string) ([]entity.StoredImage, error) {
	it := s.Client.Bucket(s.Bucket).Objects(ctx, &gcs.Query{Prefix: s.object(prefix)})
	var out []entity.StoredImage
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		out = append(out, entity.StoredImage{
			Name:      path.Base(attrs.Name),
			URL:       helpers.PublicURL(s.Bucket, attrs.Name),
			Size:      attrs.Size,
			CreatedAt: attrs.Created,
		})
	}
	return out, nil
}

func (s *GCSStore) Delete(ctx context.Context, name string) error {
	err := s.Client.Bucket(s.Bucket).Object(s.object(name)).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return repository.ErrNotFound
	}
	return err
}

var _ repository.ImageStorage = (*GCSStore)(nil)
